package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money movements
type TransactionType string

const (
	TransactionIncome   TransactionType = "INCOME"
	TransactionExpense  TransactionType = "EXPENSE"
	TransactionTransfer TransactionType = "TRANSFER"
)

// TransactionStatus is recorded on every transaction. It does not gate
// balance application: the balance effect is applied unconditionally at
// creation regardless of status.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

// Transaction is a single recorded money movement. Transfers carry a
// destination account and, when the currencies differ, the exchange rate and
// converted amount applied to the destination leg.
type Transaction struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"user_id"`
	AccountID       uuid.UUID         `json:"account_id"`
	ToAccountID     *uuid.UUID        `json:"to_account_id,omitempty"`
	CategoryID      *uuid.UUID        `json:"category_id,omitempty"`
	Type            TransactionType   `json:"type"`
	Amount          decimal.Decimal   `json:"amount"`
	Currency        string            `json:"currency"`
	ExchangeRate    *decimal.Decimal  `json:"exchange_rate,omitempty"`
	ConvertedAmount *decimal.Decimal  `json:"converted_amount,omitempty"`
	TransactionDate time.Time         `json:"transaction_date"`
	Description     string            `json:"description,omitempty"`
	Note            string            `json:"note,omitempty"`
	Payee           string            `json:"payee,omitempty"`
	Status          TransactionStatus `json:"status"`
	IsRecurring     bool              `json:"is_recurring"`
	RecurringID     *uuid.UUID        `json:"recurring_transaction_id,omitempty"`
	Tags            []Tag             `json:"tags,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Tag is a user-scoped label attached to transactions. Names are unique per
// user; associations live in a join table and are replaced as a set.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
