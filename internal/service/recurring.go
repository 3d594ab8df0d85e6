package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/models"
)

// RecurringService manages recurring transaction templates and materializes
// due templates into concrete transactions once per scheduler run.
type RecurringService struct {
	store Store
	log   *logrus.Logger
}

// NewRecurringService initializes a new recurring transaction service
func NewRecurringService(store Store, log *logrus.Logger) *RecurringService {
	return &RecurringService{store: store, log: log}
}

// CreateRecurringInput holds parameters for a new template.
type CreateRecurringInput struct {
	AccountID     uuid.UUID
	ToAccountID   *uuid.UUID
	CategoryID    *uuid.UUID
	Type          models.TransactionType
	Amount        decimal.Decimal
	Description   string
	Frequency     models.RecurringFrequency
	IntervalValue int
	StartDate     time.Time
	EndDate       *time.Time
}

// UpdateRecurringInput carries optional field updates; nil means unchanged.
type UpdateRecurringInput struct {
	Amount      *decimal.Decimal
	Description *string
	IsActive    *bool
	EndDate     *time.Time
}

// Create validates and stores a template. The first occurrence is scheduled
// on the start date.
func (s *RecurringService) Create(ctx context.Context, userID uuid.UUID, in CreateRecurringInput) (*models.RecurringTransaction, error) {
	if !in.Amount.IsPositive() {
		return nil, apperr.BadRequest("amount must be greater than zero")
	}
	if !in.Frequency.Valid() {
		return nil, apperr.BadRequest("invalid frequency: %s", in.Frequency)
	}
	if in.IntervalValue < 1 {
		return nil, apperr.BadRequest("interval value must be at least 1")
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return nil, apperr.BadRequest("end date must be after start date")
	}

	account, err := s.store.AccountByID(ctx, userID, in.AccountID)
	if err != nil {
		return nil, err
	}

	switch in.Type {
	case models.TransactionTransfer:
		if in.ToAccountID == nil {
			return nil, apperr.BadRequest("destination account is required for transfers")
		}
		if *in.ToAccountID == in.AccountID {
			return nil, apperr.BadRequest("cannot transfer to the same account")
		}
		if _, err := s.store.AccountByID(ctx, userID, *in.ToAccountID); err != nil {
			return nil, err
		}
	case models.TransactionIncome, models.TransactionExpense:
		if in.ToAccountID != nil {
			return nil, apperr.BadRequest("destination account is only valid for transfers")
		}
	default:
		return nil, apperr.BadRequest("invalid transaction type: %s", in.Type)
	}

	if in.CategoryID != nil {
		if _, err := s.store.CategoryByID(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	r := &models.RecurringTransaction{
		ID:                 uuid.New(),
		UserID:             userID,
		AccountID:          in.AccountID,
		ToAccountID:        in.ToAccountID,
		CategoryID:         in.CategoryID,
		Type:               in.Type,
		Amount:             in.Amount,
		Currency:           account.Currency,
		Description:        in.Description,
		Frequency:          in.Frequency,
		IntervalValue:      in.IntervalValue,
		StartDate:          in.StartDate,
		EndDate:            in.EndDate,
		NextOccurrenceDate: in.StartDate,
		IsActive:           true,
	}
	if err := s.store.CreateRecurring(ctx, r); err != nil {
		return nil, err
	}

	s.log.Infof("Recurring transaction created: %s (%s every %d %s)", r.ID, r.Type, r.IntervalValue, r.Frequency)
	return r, nil
}

// List returns the caller's templates.
func (s *RecurringService) List(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.RecurringTransaction, error) {
	return s.store.RecurringByUser(ctx, userID, activeOnly)
}

// Get returns a template owned by the caller.
func (s *RecurringService) Get(ctx context.Context, userID, id uuid.UUID) (*models.RecurringTransaction, error) {
	return s.owned(ctx, s.store, userID, id)
}

// Update modifies mutable template fields. Past generated transactions are
// never touched.
func (s *RecurringService) Update(ctx context.Context, userID, id uuid.UUID, in UpdateRecurringInput) (*models.RecurringTransaction, error) {
	r, err := s.owned(ctx, s.store, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Amount != nil {
		if !in.Amount.IsPositive() {
			return nil, apperr.BadRequest("amount must be greater than zero")
		}
		r.Amount = *in.Amount
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
	if in.EndDate != nil {
		r.EndDate = in.EndDate
	}
	r.UpdatedAt = time.Now()

	if err := s.store.UpdateRecurring(ctx, r); err != nil {
		return nil, err
	}
	s.log.Infof("Recurring transaction updated: %s", r.ID)
	return r, nil
}

// Delete removes a template.
func (s *RecurringService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	r, err := s.owned(ctx, s.store, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRecurring(ctx, r.ID); err != nil {
		return err
	}
	s.log.Infof("Recurring transaction deleted: %s", r.ID)
	return nil
}

// ProcessDue materializes every active template whose next occurrence is due,
// at most one occurrence per template per run. A template that fails (for
// example on insufficient balance) is logged and skipped; the rest of the run
// proceeds. A template due on several missed days re-qualifies on the next
// run instead of back-filling.
func (s *RecurringService) ProcessDue(ctx context.Context) error {
	now := today()
	due, err := s.store.DueRecurring(ctx, now)
	if err != nil {
		return err
	}

	s.log.Infof("Processing %d due recurring transactions", len(due))
	for i := range due {
		r := due[i]
		if err := s.generateOne(ctx, &r, now); err != nil {
			s.log.Errorf("Failed to process recurring transaction %s: %v", r.ID, err)
		}
	}
	s.log.Info("Finished processing recurring transactions")
	return nil
}

// generateOne runs the whole per-template unit atomically: generate the
// concrete transaction through the same balance logic as the transaction
// engine, stamp the generation date, then advance or deactivate the template.
func (s *RecurringService) generateOne(ctx context.Context, r *models.RecurringTransaction, asOf time.Time) error {
	return s.store.Transact(ctx, func(tx Store) error {
		t := &models.Transaction{
			ID:              uuid.New(),
			UserID:          r.UserID,
			AccountID:       r.AccountID,
			ToAccountID:     r.ToAccountID,
			CategoryID:      r.CategoryID,
			Type:            r.Type,
			Amount:          r.Amount,
			Currency:        r.Currency,
			TransactionDate: time.Now(),
			Description:     r.Description,
			Status:          models.StatusCompleted,
			IsRecurring:     true,
			RecurringID:     &r.ID,
		}

		switch r.Type {
		case models.TransactionIncome:
			account, err := tx.AccountForUpdate(ctx, r.UserID, r.AccountID)
			if err != nil {
				return err
			}
			if err := tx.SetAccountBalance(ctx, account.ID, account.CurrentBalance.Add(r.Amount)); err != nil {
				return err
			}
		case models.TransactionExpense:
			account, err := tx.AccountForUpdate(ctx, r.UserID, r.AccountID)
			if err != nil {
				return err
			}
			if account.CurrentBalance.LessThan(r.Amount) {
				return apperr.InsufficientBalance(
					"insufficient balance in account %q: available %s, required %s",
					account.Name, account.CurrentBalance, r.Amount)
			}
			if err := tx.SetAccountBalance(ctx, account.ID, account.CurrentBalance.Sub(r.Amount)); err != nil {
				return err
			}
		case models.TransactionTransfer:
			from, to, err := lockAccountPair(ctx, tx, r.UserID, r.AccountID, *r.ToAccountID)
			if err != nil {
				return err
			}
			if from.CurrentBalance.LessThan(r.Amount) {
				return apperr.InsufficientBalance(
					"insufficient balance in account %q: available %s, required %s",
					from.Name, from.CurrentBalance, r.Amount)
			}
			// Recurring transfers carry no manual rate; the destination is
			// credited at identity, matching the stored converted amount.
			rate := decimal.NewFromInt(1)
			converted := r.Amount
			t.ExchangeRate = &rate
			t.ConvertedAmount = &converted
			if err := tx.SetAccountBalance(ctx, from.ID, from.CurrentBalance.Sub(r.Amount)); err != nil {
				return err
			}
			if err := tx.SetAccountBalance(ctx, to.ID, to.CurrentBalance.Add(converted)); err != nil {
				return err
			}
		}

		if err := tx.InsertTransaction(ctx, t); err != nil {
			return err
		}

		generated := asOf
		r.LastGeneratedDate = &generated
		next := advanceDate(r.NextOccurrenceDate, r.Frequency, r.IntervalValue)
		if r.EndDate != nil && next.After(*r.EndDate) {
			r.IsActive = false
			s.log.Infof("Recurring transaction %s has ended", r.ID)
		} else {
			r.NextOccurrenceDate = next
		}
		r.UpdatedAt = time.Now()

		return tx.UpdateRecurring(ctx, r)
	})
}

// advanceDate moves d forward by frequency * interval using calendar-aware
// arithmetic. Monthly and yearly steps clamp the day-of-month to the target
// month's last day instead of overflowing into the next month.
func advanceDate(d time.Time, freq models.RecurringFrequency, interval int) time.Time {
	switch freq {
	case models.FrequencyDaily:
		return d.AddDate(0, 0, interval)
	case models.FrequencyWeekly:
		return d.AddDate(0, 0, 7*interval)
	case models.FrequencyMonthly:
		return addMonthsClamped(d, interval)
	case models.FrequencyYearly:
		return addMonthsClamped(d, 12*interval)
	}
	return d
}

func addMonthsClamped(d time.Time, months int) time.Time {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location()).AddDate(0, months, 0)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := d.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, d.Location())
}

func (s *RecurringService) owned(ctx context.Context, store Store, userID, id uuid.UUID) (*models.RecurringTransaction, error) {
	r, err := store.RecurringByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, apperr.NotFound("recurring transaction not found with id: %s", id)
	}
	return r, nil
}
