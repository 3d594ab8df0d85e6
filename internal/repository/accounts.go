package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/models"
)

const accountColumns = `id, user_id, account_type, currency, name, description,
	initial_balance, current_balance, is_included_in_total, is_active, created_at, updated_at`

// CreateAccount creates a new account in the database
func (r *Repository) CreateAccount(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO accounts (id, user_id, account_type, currency, name, description,
			initial_balance, current_balance, is_included_in_total, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.q().QueryRowContext(ctx, query,
		a.ID, a.UserID, a.AccountType, a.Currency, a.Name, a.Description,
		a.InitialBalance, a.CurrentBalance, a.IsIncludedInTotal, a.IsActive).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// AccountByID retrieves one of the user's accounts
func (r *Repository) AccountByID(ctx context.Context, userID, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND user_id = $2`
	return scanAccount(r.q().QueryRowContext(ctx, query, id, userID), id)
}

// AccountForUpdate retrieves one of the user's accounts with the row locked
// for the duration of the enclosing transaction.
func (r *Repository) AccountForUpdate(ctx context.Context, userID, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND user_id = $2 FOR UPDATE`
	return scanAccount(r.q().QueryRowContext(ctx, query, id, userID), id)
}

func scanAccount(row *sql.Row, id uuid.UUID) (*models.Account, error) {
	a := &models.Account{}
	var description sql.NullString
	err := row.Scan(&a.ID, &a.UserID, &a.AccountType, &a.Currency, &a.Name, &description,
		&a.InitialBalance, &a.CurrentBalance, &a.IsIncludedInTotal, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("account not found with id: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	a.Description = description.String
	return a, nil
}

// AccountsByUser lists the user's accounts
func (r *Repository) AccountsByUser(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`
	if !includeInactive {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY created_at`

	rows, err := r.q().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a := models.Account{}
		var description sql.NullString
		if err := rows.Scan(&a.ID, &a.UserID, &a.AccountType, &a.Currency, &a.Name, &description,
			&a.InitialBalance, &a.CurrentBalance, &a.IsIncludedInTotal, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.Description = description.String
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateAccount persists account metadata changes
func (r *Repository) UpdateAccount(ctx context.Context, a *models.Account) error {
	query := `
		UPDATE accounts
		SET account_type = $2, name = $3, description = $4,
		    is_included_in_total = $5, is_active = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	res, err := r.q().ExecContext(ctx, query, a.ID, a.AccountType, a.Name, a.Description, a.IsIncludedInTotal, a.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return requireRow(res, "account %s", a.ID)
}

// SetAccountBalance writes the authoritative running balance. Callers hold
// the account row lock via AccountForUpdate.
func (r *Repository) SetAccountBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	res, err := r.q().ExecContext(ctx,
		`UPDATE accounts SET current_balance = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`, id, balance)
	if err != nil {
		return fmt.Errorf("failed to set account balance: %w", err)
	}
	return requireRow(res, "account %s", id)
}

// requireRow converts a zero-row update into NotFound.
func requireRow(res sql.Result, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return apperr.NotFound(format, args...)
	}
	return nil
}
