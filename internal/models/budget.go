package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetPeriod is the window a budget covers
type BudgetPeriod string

const (
	BudgetWeekly  BudgetPeriod = "WEEKLY"
	BudgetMonthly BudgetPeriod = "MONTHLY"
	BudgetYearly  BudgetPeriod = "YEARLY"
	BudgetCustom  BudgetPeriod = "CUSTOM"
)

// Valid reports whether p is a known budget period.
func (p BudgetPeriod) Valid() bool {
	switch p {
	case BudgetWeekly, BudgetMonthly, BudgetYearly, BudgetCustom:
		return true
	}
	return false
}

// Budget caps spending for a category (or all expenses when CategoryID is
// nil) over a date window. AlertThreshold is the percentage of Amount at
// which the owner is notified.
type Budget struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	CategoryID     *uuid.UUID      `json:"category_id,omitempty"`
	Currency       string          `json:"currency"`
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	Period         BudgetPeriod    `json:"period"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	AlertThreshold int             `json:"alert_threshold"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// BudgetProgress is the computed state of a budget
type BudgetProgress struct {
	Budget         Budget          `json:"budget"`
	Spent          decimal.Decimal `json:"spent"`
	Remaining      decimal.Decimal `json:"remaining"`
	PercentageUsed decimal.Decimal `json:"percentage_used"`
}
