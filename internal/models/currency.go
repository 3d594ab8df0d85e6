package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is a static reference row (ISO 4217)
type Currency struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	DecimalPlaces int    `json:"decimal_places"`
	IsActive      bool   `json:"is_active"`
}

// ExchangeRate is a directed, date-scoped conversion factor. Multiple rates
// may exist per pair, one per effective date; the latest applicable rate is
// the most recent one with EffectiveDate <= the as-of date.
type ExchangeRate struct {
	ID            uuid.UUID       `json:"id"`
	FromCurrency  string          `json:"from_currency"`
	ToCurrency    string          `json:"to_currency"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveDate time.Time       `json:"effective_date"`
	CreatedAt     time.Time       `json:"created_at"`
}
