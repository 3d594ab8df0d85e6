package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/models"
)

// DashboardService produces read-only aggregations over accounts and
// transactions, normalized to the caller's default currency via the
// automatic-lookup conversion path.
type DashboardService struct {
	store    Store
	log      *logrus.Logger
	currency *CurrencyService
	prefs    *PreferenceService
}

// NewDashboardService initializes a new dashboard service
func NewDashboardService(store Store, log *logrus.Logger, currency *CurrencyService, prefs *PreferenceService) *DashboardService {
	return &DashboardService{store: store, log: log, currency: currency, prefs: prefs}
}

// Dashboard aggregates the current month in the caller's timezone.
func (s *DashboardService) Dashboard(ctx context.Context, userID uuid.UUID) (*models.Dashboard, error) {
	prefs, err := s.prefs.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(prefs.Timezone)
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	defaultCurrency := prefs.DefaultCurrency

	accounts, err := s.store.AccountsByUser(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	totalBalance := decimal.Zero
	balances := make([]models.AccountBalanceInfo, 0, len(accounts))
	for _, a := range accounts {
		if !a.IsIncludedInTotal {
			continue
		}
		converted, err := s.currency.ConvertToDefault(ctx, a.CurrentBalance, a.Currency, defaultCurrency, now)
		if err != nil {
			return nil, err
		}
		totalBalance = totalBalance.Add(converted)
		balances = append(balances, models.AccountBalanceInfo{
			AccountID:                a.ID,
			AccountName:              a.Name,
			Balance:                  a.CurrentBalance,
			Currency:                 a.Currency,
			BalanceInDefaultCurrency: converted,
		})
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	income, expenses, err := s.sumByType(ctx, userID, monthStart, monthEnd, defaultCurrency)
	if err != nil {
		return nil, err
	}

	prevStart := monthStart.AddDate(0, -1, 0)
	prevEnd := monthStart.Add(-time.Nanosecond)
	prevIncome, prevExpenses, err := s.sumByType(ctx, userID, prevStart, prevEnd, defaultCurrency)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.categoryBreakdown(ctx, userID, models.TransactionExpense, monthStart, monthEnd, defaultCurrency)
	if err != nil {
		return nil, err
	}

	activeBudgets, err := s.store.BudgetsByUser(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	return &models.Dashboard{
		TotalBalance:      totalBalance,
		DefaultCurrency:   defaultCurrency,
		AccountBalances:   balances,
		MonthIncome:       income,
		MonthExpenses:     expenses,
		Savings:           income.Sub(expenses),
		IncomeChange:      percentageChange(prevIncome, income),
		ExpenseChange:     percentageChange(prevExpenses, expenses),
		CategoryBreakdown: breakdown,
		ActiveBudgets:     len(activeBudgets),
		CurrentMonth:      now.Format("2006-01"),
	}, nil
}

// Statistics aggregates an arbitrary date range with per-day trends.
func (s *DashboardService) Statistics(ctx context.Context, userID uuid.UUID, startDate, endDate time.Time) (*models.Statistics, error) {
	if endDate.Before(startDate) {
		return nil, apperr.BadRequest("end date must be after start date")
	}

	defaultCurrency, err := s.prefs.DefaultCurrency(ctx, userID)
	if err != nil {
		return nil, err
	}

	rangeEnd := endDate.AddDate(0, 0, 1).Add(-time.Nanosecond)
	income, expenses, err := s.sumByType(ctx, userID, startDate, rangeEnd, defaultCurrency)
	if err != nil {
		return nil, err
	}

	expensesByCat, err := s.categoryBreakdown(ctx, userID, models.TransactionExpense, startDate, rangeEnd, defaultCurrency)
	if err != nil {
		return nil, err
	}
	incomeByCat, err := s.categoryBreakdown(ctx, userID, models.TransactionIncome, startDate, rangeEnd, defaultCurrency)
	if err != nil {
		return nil, err
	}

	trends, err := s.dailyTrends(ctx, userID, startDate, endDate, defaultCurrency)
	if err != nil {
		return nil, err
	}

	days := int(endDate.Sub(startDate).Hours()/24) + 1
	divisor := decimal.NewFromInt(int64(days))

	return &models.Statistics{
		StartDate:          startDate,
		EndDate:            endDate,
		TotalIncome:        income,
		TotalExpenses:      expenses,
		NetIncome:          income.Sub(expenses),
		AvgDailyIncome:     income.DivRound(divisor, 2),
		AvgDailyExpense:    expenses.DivRound(divisor, 2),
		ExpensesByCategory: expensesByCat,
		IncomeByCategory:   incomeByCat,
		DailyTrends:        trends,
		DefaultCurrency:    defaultCurrency,
	}, nil
}

func (s *DashboardService) sumByType(ctx context.Context, userID uuid.UUID, start, end time.Time, defaultCurrency string) (income, expenses decimal.Decimal, err error) {
	transactions, err := s.store.TransactionsByUser(ctx, userID, TransactionFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	for _, t := range transactions {
		converted, err := s.currency.ConvertToDefault(ctx, t.Amount, t.Currency, defaultCurrency, end)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		switch t.Type {
		case models.TransactionIncome:
			income = income.Add(converted)
		case models.TransactionExpense:
			expenses = expenses.Add(converted)
		}
	}
	return income, expenses, nil
}

func (s *DashboardService) categoryBreakdown(ctx context.Context, userID uuid.UUID, txType models.TransactionType, start, end time.Time, defaultCurrency string) ([]models.CategoryBreakdown, error) {
	transactions, err := s.store.TransactionsByUser(ctx, userID, TransactionFilter{Type: txType, StartDate: &start, EndDate: &end})
	if err != nil {
		return nil, err
	}

	type bucket struct {
		id        *uuid.UUID
		amount    decimal.Decimal
		converted decimal.Decimal
	}
	buckets := make(map[uuid.UUID]*bucket)
	var uncategorized *bucket

	for _, t := range transactions {
		converted, err := s.currency.ConvertToDefault(ctx, t.Amount, t.Currency, defaultCurrency, end)
		if err != nil {
			return nil, err
		}
		var b *bucket
		if t.CategoryID == nil {
			if uncategorized == nil {
				uncategorized = &bucket{}
			}
			b = uncategorized
		} else {
			b = buckets[*t.CategoryID]
			if b == nil {
				id := *t.CategoryID
				b = &bucket{id: &id}
				buckets[id] = b
			}
		}
		b.amount = b.amount.Add(t.Amount)
		b.converted = b.converted.Add(converted)
	}

	out := make([]models.CategoryBreakdown, 0, len(buckets)+1)
	for _, b := range buckets {
		name := "Uncategorized"
		if c, err := s.store.CategoryByID(ctx, *b.id); err == nil {
			name = c.Name
		}
		out = append(out, models.CategoryBreakdown{
			CategoryID:              b.id,
			CategoryName:            name,
			Amount:                  b.amount,
			AmountInDefaultCurrency: b.converted,
		})
	}
	if uncategorized != nil {
		out = append(out, models.CategoryBreakdown{
			CategoryName:            "Uncategorized",
			Amount:                  uncategorized.amount,
			AmountInDefaultCurrency: uncategorized.converted,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AmountInDefaultCurrency.GreaterThan(out[j].AmountInDefaultCurrency)
	})
	return out, nil
}

func (s *DashboardService) dailyTrends(ctx context.Context, userID uuid.UUID, startDate, endDate time.Time, defaultCurrency string) ([]models.DailyTrend, error) {
	var trends []models.DailyTrend
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		dayEnd := d.AddDate(0, 0, 1).Add(-time.Nanosecond)
		income, expenses, err := s.sumByType(ctx, userID, d, dayEnd, defaultCurrency)
		if err != nil {
			return nil, err
		}
		trends = append(trends, models.DailyTrend{
			Date:     d,
			Income:   income,
			Expenses: expenses,
			Net:      income.Sub(expenses),
		})
	}
	return trends, nil
}

// percentageChange reports the relative change from old to new, as a percent
// rounded to 2 decimal places. A zero base maps to 100 when the new value is
// positive, otherwise 0.
func percentageChange(oldValue, newValue decimal.Decimal) decimal.Decimal {
	if oldValue.IsZero() {
		if newValue.IsPositive() {
			return decimal.NewFromInt(100)
		}
		return decimal.Zero
	}
	return newValue.Sub(oldValue).DivRound(oldValue, 4).Mul(decimal.NewFromInt(100)).Round(2)
}
