package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/models"
)

const recurringColumns = `id, user_id, account_id, to_account_id, category_id, type,
	amount, currency, description, frequency, interval_value, start_date, end_date,
	next_occurrence_date, last_generated_date, is_active, created_at, updated_at`

// CreateRecurring persists a new recurring template
func (r *Repository) CreateRecurring(ctx context.Context, rt *models.RecurringTransaction) error {
	query := `
		INSERT INTO recurring_transactions (id, user_id, account_id, to_account_id, category_id, type,
			amount, currency, description, frequency, interval_value, start_date, end_date,
			next_occurrence_date, last_generated_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.q().QueryRowContext(ctx, query,
		rt.ID, rt.UserID, rt.AccountID, rt.ToAccountID, rt.CategoryID, rt.Type,
		rt.Amount, rt.Currency, rt.Description, rt.Frequency, rt.IntervalValue,
		rt.StartDate, rt.EndDate, rt.NextOccurrenceDate, rt.LastGeneratedDate, rt.IsActive).
		Scan(&rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create recurring transaction: %w", err)
	}
	return nil
}

// RecurringByID retrieves a recurring template by id
func (r *Repository) RecurringByID(ctx context.Context, id uuid.UUID) (*models.RecurringTransaction, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions WHERE id = $1`
	rt := &models.RecurringTransaction{}
	var description sql.NullString
	err := r.q().QueryRowContext(ctx, query, id).Scan(
		&rt.ID, &rt.UserID, &rt.AccountID, &rt.ToAccountID, &rt.CategoryID, &rt.Type,
		&rt.Amount, &rt.Currency, &description, &rt.Frequency, &rt.IntervalValue,
		&rt.StartDate, &rt.EndDate, &rt.NextOccurrenceDate, &rt.LastGeneratedDate,
		&rt.IsActive, &rt.CreatedAt, &rt.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("recurring transaction not found with id: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find recurring transaction: %w", err)
	}
	rt.Description = description.String
	return rt, nil
}

// RecurringByUser lists the user's recurring templates
func (r *Repository) RecurringByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.RecurringTransaction, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions WHERE user_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY created_at`
	return r.queryRecurring(ctx, query, userID)
}

// DueRecurring lists active templates across all users whose next occurrence
// is on or before asOf.
func (r *Repository) DueRecurring(ctx context.Context, asOf time.Time) ([]models.RecurringTransaction, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions
		WHERE is_active = TRUE AND next_occurrence_date <= $1
		ORDER BY next_occurrence_date`
	return r.queryRecurring(ctx, query, asOf)
}

func (r *Repository) queryRecurring(ctx context.Context, query string, args ...any) ([]models.RecurringTransaction, error) {
	rows, err := r.q().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring transactions: %w", err)
	}
	defer rows.Close()

	var templates []models.RecurringTransaction
	for rows.Next() {
		rt := models.RecurringTransaction{}
		var description sql.NullString
		if err := rows.Scan(
			&rt.ID, &rt.UserID, &rt.AccountID, &rt.ToAccountID, &rt.CategoryID, &rt.Type,
			&rt.Amount, &rt.Currency, &description, &rt.Frequency, &rt.IntervalValue,
			&rt.StartDate, &rt.EndDate, &rt.NextOccurrenceDate, &rt.LastGeneratedDate,
			&rt.IsActive, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recurring transaction: %w", err)
		}
		rt.Description = description.String
		templates = append(templates, rt)
	}
	return templates, rows.Err()
}

// UpdateRecurring persists changes to a recurring template
func (r *Repository) UpdateRecurring(ctx context.Context, rt *models.RecurringTransaction) error {
	query := `
		UPDATE recurring_transactions
		SET amount = $2, description = $3, frequency = $4, interval_value = $5,
		    end_date = $6, next_occurrence_date = $7, last_generated_date = $8,
		    is_active = $9, category_id = $10, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	res, err := r.q().ExecContext(ctx, query,
		rt.ID, rt.Amount, rt.Description, rt.Frequency, rt.IntervalValue,
		rt.EndDate, rt.NextOccurrenceDate, rt.LastGeneratedDate, rt.IsActive, rt.CategoryID)
	if err != nil {
		return fmt.Errorf("failed to update recurring transaction: %w", err)
	}
	return requireRow(res, "recurring transaction %s", rt.ID)
}

// DeleteRecurring removes a recurring template permanently
func (r *Repository) DeleteRecurring(ctx context.Context, id uuid.UUID) error {
	res, err := r.q().ExecContext(ctx, `DELETE FROM recurring_transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recurring transaction: %w", err)
	}
	return requireRow(res, "recurring transaction %s", id)
}
