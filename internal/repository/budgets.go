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

const budgetColumns = `id, user_id, category_id, currency, name, amount, period,
	start_date, end_date, alert_threshold, is_active, created_at, updated_at`

// CreateBudget persists a new budget
func (r *Repository) CreateBudget(ctx context.Context, b *models.Budget) error {
	query := `
		INSERT INTO budgets (id, user_id, category_id, currency, name, amount, period,
			start_date, end_date, alert_threshold, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.q().QueryRowContext(ctx, query,
		b.ID, b.UserID, b.CategoryID, b.Currency, b.Name, b.Amount, b.Period,
		b.StartDate, b.EndDate, b.AlertThreshold, b.IsActive).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

// BudgetByID retrieves one of the user's budgets
func (r *Repository) BudgetByID(ctx context.Context, userID, id uuid.UUID) (*models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE id = $1 AND user_id = $2`
	b := &models.Budget{}
	err := r.q().QueryRowContext(ctx, query, id, userID).Scan(
		&b.ID, &b.UserID, &b.CategoryID, &b.Currency, &b.Name, &b.Amount, &b.Period,
		&b.StartDate, &b.EndDate, &b.AlertThreshold, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("budget not found with id: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find budget: %w", err)
	}
	return b, nil
}

// BudgetsByUser lists the user's budgets
func (r *Repository) BudgetsByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY start_date DESC`
	return r.queryBudgets(ctx, query, userID)
}

// ActiveBudgetsForDate lists active budgets across all users whose window
// covers asOf. Used by the alert scan.
func (r *Repository) ActiveBudgetsForDate(ctx context.Context, asOf time.Time) ([]models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets
		WHERE is_active = TRUE AND start_date <= $1 AND end_date >= $1
		ORDER BY user_id, start_date`
	return r.queryBudgets(ctx, query, asOf)
}

func (r *Repository) queryBudgets(ctx context.Context, query string, args ...any) ([]models.Budget, error) {
	rows, err := r.q().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		b := models.Budget{}
		if err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Currency, &b.Name, &b.Amount,
			&b.Period, &b.StartDate, &b.EndDate, &b.AlertThreshold, &b.IsActive,
			&b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// UpdateBudget persists budget changes
func (r *Repository) UpdateBudget(ctx context.Context, b *models.Budget) error {
	query := `
		UPDATE budgets
		SET category_id = $2, name = $3, amount = $4, period = $5, start_date = $6,
		    end_date = $7, alert_threshold = $8, is_active = $9, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	res, err := r.q().ExecContext(ctx, query,
		b.ID, b.CategoryID, b.Name, b.Amount, b.Period, b.StartDate,
		b.EndDate, b.AlertThreshold, b.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	return requireRow(res, "budget %s", b.ID)
}

// DeleteBudget removes a budget permanently
func (r *Repository) DeleteBudget(ctx context.Context, id uuid.UUID) error {
	res, err := r.q().ExecContext(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return requireRow(res, "budget %s", id)
}
