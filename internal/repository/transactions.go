package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/models"
	"github.com/financewallet/wallet/internal/service"
)

const transactionColumns = `id, user_id, account_id, to_account_id, category_id, type,
	amount, currency, exchange_rate, converted_amount, transaction_date,
	description, note, payee, status, is_recurring, recurring_transaction_id,
	created_at, updated_at`

// InsertTransaction persists a new transaction record
func (r *Repository) InsertTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, account_id, to_account_id, category_id, type,
			amount, currency, exchange_rate, converted_amount, transaction_date,
			description, note, payee, status, is_recurring, recurring_transaction_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.q().QueryRowContext(ctx, query,
		t.ID, t.UserID, t.AccountID, t.ToAccountID, t.CategoryID, t.Type,
		t.Amount, t.Currency, t.ExchangeRate, t.ConvertedAmount, t.TransactionDate,
		t.Description, t.Note, t.Payee, t.Status, t.IsRecurring, t.RecurringID).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// TransactionByID retrieves a transaction by id
func (r *Repository) TransactionByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	t := &models.Transaction{}
	var description, note, payee sql.NullString
	err := r.q().QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.UserID, &t.AccountID, &t.ToAccountID, &t.CategoryID, &t.Type,
		&t.Amount, &t.Currency, &t.ExchangeRate, &t.ConvertedAmount, &t.TransactionDate,
		&description, &note, &payee, &t.Status, &t.IsRecurring, &t.RecurringID,
		&t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("transaction not found with id: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	t.Description = description.String
	t.Note = note.String
	t.Payee = payee.String
	return t, nil
}

// TransactionsByUser lists the user's transactions filtered and paged, newest
// first. A non-positive Limit reads every matching row; the aggregation paths
// depend on that.
func (r *Repository) TransactionsByUser(ctx context.Context, userID uuid.UUID, f service.TransactionFilter) ([]models.Transaction, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`)
	args := []any{userID}

	add := func(clause string, v any) {
		args = append(args, v)
		sb.WriteString(fmt.Sprintf(clause, len(args)))
	}
	if f.AccountID != nil {
		add(` AND (account_id = $%[1]d OR to_account_id = $%[1]d)`, *f.AccountID)
	}
	if f.CategoryID != nil {
		add(` AND category_id = $%d`, *f.CategoryID)
	}
	if f.Type != "" {
		add(` AND type = $%d`, f.Type)
	}
	if f.StartDate != nil {
		add(` AND transaction_date >= $%d`, *f.StartDate)
	}
	if f.EndDate != nil {
		add(` AND transaction_date <= $%d`, *f.EndDate)
	}

	sb.WriteString(` ORDER BY transaction_date DESC, created_at DESC`)
	if f.Limit > 0 {
		add(` LIMIT $%d`, f.Limit)
	}
	if f.Offset > 0 {
		add(` OFFSET $%d`, f.Offset)
	}

	rows, err := r.q().QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t := models.Transaction{}
		var description, note, payee sql.NullString
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.AccountID, &t.ToAccountID, &t.CategoryID, &t.Type,
			&t.Amount, &t.Currency, &t.ExchangeRate, &t.ConvertedAmount, &t.TransactionDate,
			&description, &note, &payee, &t.Status, &t.IsRecurring, &t.RecurringID,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Description = description.String
		t.Note = note.String
		t.Payee = payee.String
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// UpdateTransaction persists changes to an existing transaction
func (r *Repository) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		UPDATE transactions
		SET account_id = $2, category_id = $3, amount = $4, currency = $5,
		    transaction_date = $6, description = $7, note = $8, payee = $9,
		    status = $10, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	res, err := r.q().ExecContext(ctx, query,
		t.ID, t.AccountID, t.CategoryID, t.Amount, t.Currency,
		t.TransactionDate, t.Description, t.Note, t.Payee, t.Status)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return requireRow(res, "transaction %s", t.ID)
}

// DeleteTransaction removes a transaction row permanently
func (r *Repository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res, err := r.q().ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireRow(res, "transaction %s", id)
}
