package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType classifies an account
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCash       AccountType = "cash"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeOther      AccountType = "other"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCash,
		AccountTypeCreditCard, AccountTypeInvestment, AccountTypeOther:
		return true
	}
	return false
}

// Account is a holding of money in one currency with a running balance.
// CurrentBalance is authoritative and mutated only by the transaction engine;
// InitialBalance is an immutable snapshot taken at creation.
type Account struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"user_id"`
	AccountType       AccountType     `json:"account_type"`
	Currency          string          `json:"currency"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	InitialBalance    decimal.Decimal `json:"initial_balance"`
	CurrentBalance    decimal.Decimal `json:"current_balance"`
	IsIncludedInTotal bool            `json:"is_included_in_total"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
