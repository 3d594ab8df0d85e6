package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/models"
)

// Currencies lists all active currencies
func (r *Repository) Currencies(ctx context.Context) ([]models.Currency, error) {
	query := `SELECT code, name, symbol, decimal_places, is_active FROM currencies
		WHERE is_active = TRUE ORDER BY code`
	rows, err := r.q().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	defer rows.Close()

	var currencies []models.Currency
	for rows.Next() {
		c := models.Currency{}
		if err := rows.Scan(&c.Code, &c.Name, &c.Symbol, &c.DecimalPlaces, &c.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, c)
	}
	return currencies, rows.Err()
}

// CurrencyByCode retrieves a currency by its ISO code
func (r *Repository) CurrencyByCode(ctx context.Context, code string) (*models.Currency, error) {
	query := `SELECT code, name, symbol, decimal_places, is_active FROM currencies WHERE code = $1`
	c := &models.Currency{}
	err := r.q().QueryRowContext(ctx, query, code).
		Scan(&c.Code, &c.Name, &c.Symbol, &c.DecimalPlaces, &c.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("currency not found: %s", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find currency: %w", err)
	}
	return c, nil
}

// UpsertExchangeRate inserts a rate, replacing any existing rate for the same
// pair and effective date.
func (r *Repository) UpsertExchangeRate(ctx context.Context, rate *models.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (id, from_currency, to_currency, rate, effective_date, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		ON CONFLICT (from_currency, to_currency, effective_date)
		DO UPDATE SET rate = EXCLUDED.rate
		RETURNING id, created_at`
	err := r.q().QueryRowContext(ctx, query,
		rate.ID, rate.FromCurrency, rate.ToCurrency, rate.Rate, rate.EffectiveDate).
		Scan(&rate.ID, &rate.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert exchange rate: %w", err)
	}
	return nil
}

// LatestRate returns the most recent rate for a pair effective on or before
// asOf.
func (r *Repository) LatestRate(ctx context.Context, from, to string, asOf time.Time) (*models.ExchangeRate, error) {
	query := `
		SELECT id, from_currency, to_currency, rate, effective_date, created_at
		FROM exchange_rates
		WHERE from_currency = $1 AND to_currency = $2 AND effective_date <= $3
		ORDER BY effective_date DESC
		LIMIT 1`
	rate := &models.ExchangeRate{}
	err := r.q().QueryRowContext(ctx, query, from, to, asOf).Scan(
		&rate.ID, &rate.FromCurrency, &rate.ToCurrency, &rate.Rate, &rate.EffectiveDate, &rate.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("no exchange rate for %s/%s", from, to)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find exchange rate: %w", err)
	}
	return rate, nil
}
