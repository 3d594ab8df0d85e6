package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/models"
)

type recordedAlert struct {
	to, budgetName string
	percentage     decimal.Decimal
}

type fakeAlertSender struct {
	sent []recordedAlert
}

func (f *fakeAlertSender) SendBudgetAlert(to, username, budgetName string, spent, limit decimal.Decimal, percentage decimal.Decimal, currency string) error {
	f.sent = append(f.sent, recordedAlert{to: to, budgetName: budgetName, percentage: percentage})
	return nil
}

func newBudgetService(store *fakeStore, alerts AlertSender) *BudgetService {
	currency := NewCurrencyService(store, testLogger(), nil)
	return NewBudgetService(store, testLogger(), currency, alerts)
}

func TestCreateBudget(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newBudgetService(store, nil)
	userID := uuid.New()
	start := date(2026, time.August, 1)

	t.Run("monthly end date derived from period", func(t *testing.T) {
		b, err := svc.Create(ctx, userID, CreateBudgetInput{
			Name: "Groceries", Currency: "USD", Amount: dec("500"),
			Period: models.BudgetMonthly, StartDate: start, AlertThreshold: 80,
		})
		require.NoError(t, err)
		assert.Equal(t, date(2026, time.August, 31), b.EndDate)
		assert.True(t, b.IsActive)
	})

	t.Run("weekly window spans seven days", func(t *testing.T) {
		b, err := svc.Create(ctx, userID, CreateBudgetInput{
			Name: "Coffee", Currency: "USD", Amount: dec("30"),
			Period: models.BudgetWeekly, StartDate: start,
		})
		require.NoError(t, err)
		assert.Equal(t, date(2026, time.August, 7), b.EndDate)
	})

	t.Run("custom period requires end date", func(t *testing.T) {
		_, err := svc.Create(ctx, userID, CreateBudgetInput{
			Name: "Trip", Currency: "USD", Amount: dec("1000"),
			Period: models.BudgetCustom, StartDate: start,
		})
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	})

	t.Run("threshold out of range", func(t *testing.T) {
		_, err := svc.Create(ctx, userID, CreateBudgetInput{
			Name: "Bad", Currency: "USD", Amount: dec("10"),
			Period: models.BudgetMonthly, StartDate: start, AlertThreshold: 150,
		})
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	})

	t.Run("foreign category rejected", func(t *testing.T) {
		otherUser := uuid.New()
		foreign := seedCategory(store, &otherUser, models.TransactionExpense, false)
		_, err := svc.Create(ctx, userID, CreateBudgetInput{
			Name: "Bad", Currency: "USD", Amount: dec("10"), CategoryID: &foreign.ID,
			Period: models.BudgetMonthly, StartDate: start,
		})
		assert.True(t, apperr.IsNotFound(err))
	})
}

func TestBudgetProgress(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newBudgetService(store, nil)
	txSvc := NewTransactionService(store, testLogger(), nil)
	userID := uuid.New()
	account := seedAccount(store, userID, "USD", "1000")

	budget, err := svc.Create(ctx, userID, CreateBudgetInput{
		Name: "Monthly spend", Currency: "USD", Amount: dec("400"),
		Period: models.BudgetMonthly, StartDate: today().AddDate(0, 0, -10),
	})
	require.NoError(t, err)

	_, err = txSvc.Create(ctx, userID, CreateTransactionInput{
		AccountID: account.ID, Type: models.TransactionExpense, Amount: dec("100"),
	})
	require.NoError(t, err)
	_, err = txSvc.Create(ctx, userID, CreateTransactionInput{
		AccountID: account.ID, Type: models.TransactionExpense, Amount: dec("60"),
	})
	require.NoError(t, err)
	// Income and cancelled expenses do not count against the budget.
	_, err = txSvc.Create(ctx, userID, CreateTransactionInput{
		AccountID: account.ID, Type: models.TransactionIncome, Amount: dec("500"),
	})
	require.NoError(t, err)
	_, err = txSvc.Create(ctx, userID, CreateTransactionInput{
		AccountID: account.ID, Type: models.TransactionExpense, Amount: dec("75"),
		Status: models.StatusCancelled,
	})
	require.NoError(t, err)

	p, err := svc.Progress(ctx, userID, budget.ID)
	require.NoError(t, err)
	assert.True(t, p.Spent.Equal(dec("160")), "got %s", p.Spent)
	assert.True(t, p.Remaining.Equal(dec("240")))
	assert.True(t, p.PercentageUsed.Equal(dec("40")), "got %s", p.PercentageUsed)
}

func TestBudgetProgressSumsBeyondOnePage(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newBudgetService(store, nil)
	txSvc := NewTransactionService(store, testLogger(), nil)
	userID := uuid.New()
	account := seedAccount(store, userID, "USD", "1000")

	budget, err := svc.Create(ctx, userID, CreateBudgetInput{
		Name: "High volume", Currency: "USD", Amount: dec("240"),
		Period: models.BudgetMonthly, StartDate: today().AddDate(0, 0, -10),
	})
	require.NoError(t, err)

	// More expenses than the API's default page size; the aggregation must
	// still see all of them.
	for i := 0; i < 60; i++ {
		_, err = txSvc.Create(ctx, userID, CreateTransactionInput{
			AccountID: account.ID, Type: models.TransactionExpense, Amount: dec("1"),
		})
		require.NoError(t, err)
	}

	p, err := svc.Progress(ctx, userID, budget.ID)
	require.NoError(t, err)
	assert.True(t, p.Spent.Equal(dec("60")), "got %s", p.Spent)
	assert.True(t, p.PercentageUsed.Equal(dec("25")), "got %s", p.PercentageUsed)
}

func TestBudgetProgressCategoryScope(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newBudgetService(store, nil)
	txSvc := NewTransactionService(store, testLogger(), nil)
	userID := uuid.New()
	account := seedAccount(store, userID, "USD", "1000")
	groceries := seedCategory(store, nil, models.TransactionExpense, true)

	budget, err := svc.Create(ctx, userID, CreateBudgetInput{
		Name: "Groceries only", Currency: "USD", Amount: dec("200"), CategoryID: &groceries.ID,
		Period: models.BudgetMonthly, StartDate: today().AddDate(0, 0, -5),
	})
	require.NoError(t, err)

	_, err = txSvc.Create(ctx, userID, CreateTransactionInput{
		AccountID: account.ID, CategoryID: &groceries.ID,
		Type: models.TransactionExpense, Amount: dec("50"),
	})
	require.NoError(t, err)
	// Uncategorized spend is outside a category-scoped budget.
	_, err = txSvc.Create(ctx, userID, CreateTransactionInput{
		AccountID: account.ID, Type: models.TransactionExpense, Amount: dec("500"),
	})
	require.NoError(t, err)

	p, err := svc.Progress(ctx, userID, budget.ID)
	require.NoError(t, err)
	assert.True(t, p.Spent.Equal(dec("50")), "got %s", p.Spent)
}

func TestCheckAlerts(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	alerts := &fakeAlertSender{}
	svc := newBudgetService(store, alerts)
	txSvc := NewTransactionService(store, testLogger(), nil)

	userID := uuid.New()
	store.users[userID] = models.User{ID: userID, Email: "owner@example.com", Username: "owner", IsActive: true}
	account := seedAccount(store, userID, "USD", "1000")

	_, err := svc.Create(ctx, userID, CreateBudgetInput{
		Name: "Hot", Currency: "USD", Amount: dec("100"),
		Period: models.BudgetMonthly, StartDate: today().AddDate(0, 0, -1), AlertThreshold: 80,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, userID, CreateBudgetInput{
		Name: "Cold", Currency: "USD", Amount: dec("10000"),
		Period: models.BudgetMonthly, StartDate: today().AddDate(0, 0, -1), AlertThreshold: 80,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, userID, CreateBudgetInput{
		Name: "Muted", Currency: "USD", Amount: dec("1"),
		Period: models.BudgetMonthly, StartDate: today().AddDate(0, 0, -1), AlertThreshold: 0,
	})
	require.NoError(t, err)

	_, err = txSvc.Create(ctx, userID, CreateTransactionInput{
		AccountID: account.ID, Type: models.TransactionExpense, Amount: dec("85"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.CheckAlerts(ctx))

	require.Len(t, alerts.sent, 1)
	assert.Equal(t, "owner@example.com", alerts.sent[0].to)
	assert.Equal(t, "Hot", alerts.sent[0].budgetName)
	assert.True(t, alerts.sent[0].percentage.Equal(dec("85")))
}

func TestCheckAlertsNilSender(t *testing.T) {
	svc := newBudgetService(newFakeStore(), nil)
	assert.NoError(t, svc.CheckAlerts(context.Background()))
}

func TestBudgetOwnership(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newBudgetService(store, nil)
	userID := uuid.New()

	b, err := svc.Create(ctx, userID, CreateBudgetInput{
		Name: "Mine", Currency: "USD", Amount: dec("100"),
		Period: models.BudgetMonthly, StartDate: today(),
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, uuid.New(), b.ID)
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, svc.Delete(ctx, userID, b.ID))
	_, err = svc.Get(ctx, userID, b.ID)
	assert.True(t, apperr.IsNotFound(err))
}
