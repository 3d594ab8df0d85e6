package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountBalanceInfo is an account balance normalized to the default currency
type AccountBalanceInfo struct {
	AccountID                uuid.UUID       `json:"account_id"`
	AccountName              string          `json:"account_name"`
	Balance                  decimal.Decimal `json:"balance"`
	Currency                 string          `json:"currency"`
	BalanceInDefaultCurrency decimal.Decimal `json:"balance_in_default_currency"`
}

// CategoryBreakdown sums transactions per category over a window
type CategoryBreakdown struct {
	CategoryID              *uuid.UUID      `json:"category_id,omitempty"`
	CategoryName            string          `json:"category_name"`
	Amount                  decimal.Decimal `json:"amount"`
	AmountInDefaultCurrency decimal.Decimal `json:"amount_in_default_currency"`
}

// Dashboard is the aggregated view for the current month
type Dashboard struct {
	TotalBalance      decimal.Decimal      `json:"total_balance"`
	DefaultCurrency   string               `json:"default_currency"`
	AccountBalances   []AccountBalanceInfo `json:"account_balances"`
	MonthIncome       decimal.Decimal      `json:"month_income"`
	MonthExpenses     decimal.Decimal      `json:"month_expenses"`
	Savings           decimal.Decimal      `json:"savings"`
	IncomeChange      decimal.Decimal      `json:"income_change"`
	ExpenseChange     decimal.Decimal      `json:"expense_change"`
	CategoryBreakdown []CategoryBreakdown  `json:"category_breakdown"`
	ActiveBudgets     int                  `json:"active_budgets_count"`
	CurrentMonth      string               `json:"current_month"`
}

// DailyTrend is income and expense totals for one day
type DailyTrend struct {
	Date     time.Time       `json:"date"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// Statistics covers an arbitrary date range
type Statistics struct {
	StartDate          time.Time           `json:"start_date"`
	EndDate            time.Time           `json:"end_date"`
	TotalIncome        decimal.Decimal     `json:"total_income"`
	TotalExpenses      decimal.Decimal     `json:"total_expenses"`
	NetIncome          decimal.Decimal     `json:"net_income"`
	AvgDailyIncome     decimal.Decimal     `json:"avg_daily_income"`
	AvgDailyExpense    decimal.Decimal     `json:"avg_daily_expense"`
	ExpensesByCategory []CategoryBreakdown `json:"expenses_by_category"`
	IncomeByCategory   []CategoryBreakdown `json:"income_by_category"`
	DailyTrends        []DailyTrend        `json:"daily_trends"`
	DefaultCurrency    string              `json:"default_currency"`
}

// CurrencyBalance groups included account balances by currency
type CurrencyBalance struct {
	Currency     string          `json:"currency"`
	Balance      decimal.Decimal `json:"balance"`
	AccountCount int             `json:"account_count"`
}

// AccountSummary is the portfolio-level account view
type AccountSummary struct {
	TotalAccounts     int               `json:"total_accounts"`
	TotalBalance      decimal.Decimal   `json:"total_balance"`
	DefaultCurrency   string            `json:"default_currency"`
	BalanceByCurrency []CurrencyBalance `json:"balance_by_currency"`
	Accounts          []Account         `json:"accounts"`
}
