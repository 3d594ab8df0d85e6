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

// AlertSender delivers budget threshold notifications to users.
type AlertSender interface {
	SendBudgetAlert(to, username, budgetName string, spent, limit decimal.Decimal, percentage decimal.Decimal, currency string) error
}

// BudgetService manages spending budgets and computes progress by summing
// expense transactions over the budget's category and date window. It is a
// read-only consumer of transaction data.
type BudgetService struct {
	store    Store
	log      *logrus.Logger
	currency *CurrencyService
	alerts   AlertSender
}

// NewBudgetService initializes a new budget service. alerts may be nil when
// notifications are disabled.
func NewBudgetService(store Store, log *logrus.Logger, currency *CurrencyService, alerts AlertSender) *BudgetService {
	return &BudgetService{store: store, log: log, currency: currency, alerts: alerts}
}

// CreateBudgetInput holds parameters for a new budget.
type CreateBudgetInput struct {
	Name           string
	CategoryID     *uuid.UUID
	Currency       string
	Amount         decimal.Decimal
	Period         models.BudgetPeriod
	StartDate      time.Time
	EndDate        *time.Time
	AlertThreshold int
}

// UpdateBudgetInput carries optional field updates; nil means unchanged.
type UpdateBudgetInput struct {
	Name           *string
	Amount         *decimal.Decimal
	EndDate        *time.Time
	AlertThreshold *int
	IsActive       *bool
}

// Create validates and stores a budget. When no end date is given it is
// derived from the period.
func (s *BudgetService) Create(ctx context.Context, userID uuid.UUID, in CreateBudgetInput) (*models.Budget, error) {
	if in.Name == "" {
		return nil, apperr.BadRequest("budget name is required")
	}
	if !in.Amount.IsPositive() {
		return nil, apperr.BadRequest("amount must be greater than zero")
	}
	if !in.Period.Valid() {
		return nil, apperr.BadRequest("invalid budget period: %s", in.Period)
	}
	if in.AlertThreshold < 0 || in.AlertThreshold > 100 {
		return nil, apperr.BadRequest("alert threshold must be between 0 and 100")
	}
	if _, err := s.store.CurrencyByCode(ctx, in.Currency); err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		c, err := s.store.CategoryByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if !c.IsSystem && (c.UserID == nil || *c.UserID != userID) {
			return nil, apperr.NotFound("category not found with id: %s", *in.CategoryID)
		}
	}

	endDate, err := resolveEndDate(in.StartDate, in.EndDate, in.Period)
	if err != nil {
		return nil, err
	}

	b := &models.Budget{
		ID:             uuid.New(),
		UserID:         userID,
		CategoryID:     in.CategoryID,
		Currency:       in.Currency,
		Name:           in.Name,
		Amount:         in.Amount,
		Period:         in.Period,
		StartDate:      in.StartDate,
		EndDate:        endDate,
		AlertThreshold: in.AlertThreshold,
		IsActive:       true,
	}
	if err := s.store.CreateBudget(ctx, b); err != nil {
		return nil, err
	}
	s.log.Infof("Budget created: %s (%s)", b.Name, b.ID)
	return b, nil
}

// List returns the caller's budgets.
func (s *BudgetService) List(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Budget, error) {
	return s.store.BudgetsByUser(ctx, userID, activeOnly)
}

// Get returns one of the caller's budgets.
func (s *BudgetService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Budget, error) {
	return s.store.BudgetByID(ctx, userID, id)
}

// Update modifies a budget.
func (s *BudgetService) Update(ctx context.Context, userID, id uuid.UUID, in UpdateBudgetInput) (*models.Budget, error) {
	b, err := s.store.BudgetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		b.Name = *in.Name
	}
	if in.Amount != nil {
		if !in.Amount.IsPositive() {
			return nil, apperr.BadRequest("amount must be greater than zero")
		}
		b.Amount = *in.Amount
	}
	if in.EndDate != nil {
		if in.EndDate.Before(b.StartDate) {
			return nil, apperr.BadRequest("end date must be after start date")
		}
		b.EndDate = *in.EndDate
	}
	if in.AlertThreshold != nil {
		if *in.AlertThreshold < 0 || *in.AlertThreshold > 100 {
			return nil, apperr.BadRequest("alert threshold must be between 0 and 100")
		}
		b.AlertThreshold = *in.AlertThreshold
	}
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}
	b.UpdatedAt = time.Now()

	if err := s.store.UpdateBudget(ctx, b); err != nil {
		return nil, err
	}
	s.log.Infof("Budget updated: %s (%s)", b.Name, b.ID)
	return b, nil
}

// Delete removes a budget.
func (s *BudgetService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	b, err := s.store.BudgetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteBudget(ctx, b.ID); err != nil {
		return err
	}
	s.log.Infof("Budget deleted: %s (%s)", b.Name, b.ID)
	return nil
}

// Progress computes spend, remainder, and percentage used for one budget.
func (s *BudgetService) Progress(ctx context.Context, userID, id uuid.UUID) (*models.BudgetProgress, error) {
	b, err := s.store.BudgetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.progress(ctx, b)
}

// ActiveProgress computes progress for every budget covering today.
func (s *BudgetService) ActiveProgress(ctx context.Context, userID uuid.UUID) ([]models.BudgetProgress, error) {
	budgets, err := s.store.BudgetsByUser(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	now := today()
	out := make([]models.BudgetProgress, 0, len(budgets))
	for i := range budgets {
		b := budgets[i]
		if now.Before(b.StartDate) || now.After(b.EndDate) {
			continue
		}
		p, err := s.progress(ctx, &b)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// CheckAlerts scans every active budget across all users and emails owners
// whose spend has crossed the alert threshold. Per-budget failures are logged
// and skipped.
func (s *BudgetService) CheckAlerts(ctx context.Context) error {
	if s.alerts == nil {
		return nil
	}

	budgets, err := s.store.ActiveBudgetsForDate(ctx, today())
	if err != nil {
		return err
	}

	sent := 0
	for i := range budgets {
		b := budgets[i]
		if b.AlertThreshold <= 0 {
			continue
		}
		p, err := s.progress(ctx, &b)
		if err != nil {
			s.log.Errorf("Failed to compute progress for budget %s: %v", b.ID, err)
			continue
		}
		if p.PercentageUsed.LessThan(decimal.NewFromInt(int64(b.AlertThreshold))) {
			continue
		}

		user, err := s.store.UserByID(ctx, b.UserID)
		if err != nil {
			s.log.Errorf("Failed to load owner of budget %s: %v", b.ID, err)
			continue
		}
		if err := s.alerts.SendBudgetAlert(user.Email, user.Username, b.Name, p.Spent, b.Amount, p.PercentageUsed, b.Currency); err != nil {
			s.log.Errorf("Failed to send budget alert for %s: %v", b.ID, err)
			continue
		}
		sent++
	}

	s.log.Infof("Budget alert run finished: %d alerts sent", sent)
	return nil
}

func (s *BudgetService) progress(ctx context.Context, b *models.Budget) (*models.BudgetProgress, error) {
	filter := TransactionFilter{
		Type:      models.TransactionExpense,
		StartDate: &b.StartDate,
		EndDate:   &b.EndDate,
	}
	transactions, err := s.store.TransactionsByUser(ctx, b.UserID, filter)
	if err != nil {
		return nil, err
	}

	spent := decimal.Zero
	for _, t := range transactions {
		if t.Status == models.StatusCancelled {
			continue
		}
		if b.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *b.CategoryID) {
			continue
		}
		converted, err := s.currency.ConvertToDefault(ctx, t.Amount, t.Currency, b.Currency, today())
		if err != nil {
			return nil, err
		}
		spent = spent.Add(converted)
	}

	pct := decimal.Zero
	if b.Amount.IsPositive() {
		pct = spent.DivRound(b.Amount, 4).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return &models.BudgetProgress{
		Budget:         *b,
		Spent:          spent,
		Remaining:      b.Amount.Sub(spent),
		PercentageUsed: pct,
	}, nil
}

// resolveEndDate derives the budget window end from the period when the
// caller did not supply one. CUSTOM budgets always need an explicit end date.
func resolveEndDate(start time.Time, end *time.Time, period models.BudgetPeriod) (time.Time, error) {
	if end != nil {
		if end.Before(start) {
			return time.Time{}, apperr.BadRequest("end date must be after start date")
		}
		return *end, nil
	}
	switch period {
	case models.BudgetWeekly:
		return start.AddDate(0, 0, 6), nil
	case models.BudgetMonthly:
		return start.AddDate(0, 1, -1), nil
	case models.BudgetYearly:
		return start.AddDate(1, 0, -1), nil
	default:
		return time.Time{}, apperr.BadRequest("end date is required for custom budgets")
	}
}
