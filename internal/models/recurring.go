package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecurringFrequency is the base period of a recurring template
type RecurringFrequency string

const (
	FrequencyDaily   RecurringFrequency = "DAILY"
	FrequencyWeekly  RecurringFrequency = "WEEKLY"
	FrequencyMonthly RecurringFrequency = "MONTHLY"
	FrequencyYearly  RecurringFrequency = "YEARLY"
)

// Valid reports whether f is a known frequency.
func (f RecurringFrequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringTransaction is a template that the scheduler materializes into
// concrete transactions. NextOccurrenceDate is advanced exclusively by the
// scheduler; once it would pass EndDate the template is deactivated.
type RecurringTransaction struct {
	ID                 uuid.UUID          `json:"id"`
	UserID             uuid.UUID          `json:"user_id"`
	AccountID          uuid.UUID          `json:"account_id"`
	ToAccountID        *uuid.UUID         `json:"to_account_id,omitempty"`
	CategoryID         *uuid.UUID         `json:"category_id,omitempty"`
	Type               TransactionType    `json:"type"`
	Amount             decimal.Decimal    `json:"amount"`
	Currency           string             `json:"currency"`
	Description        string             `json:"description,omitempty"`
	Frequency          RecurringFrequency `json:"frequency"`
	IntervalValue      int                `json:"interval_value"`
	StartDate          time.Time          `json:"start_date"`
	EndDate            *time.Time         `json:"end_date,omitempty"`
	NextOccurrenceDate time.Time          `json:"next_occurrence_date"`
	LastGeneratedDate  *time.Time         `json:"last_generated_date,omitempty"`
	IsActive           bool               `json:"is_active"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}
