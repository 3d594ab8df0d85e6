package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedRecurring(f *fakeStore, userID uuid.UUID, accountID uuid.UUID, txType models.TransactionType, amount string, freq models.RecurringFrequency, next time.Time) *models.RecurringTransaction {
	r := &models.RecurringTransaction{
		ID:                 uuid.New(),
		UserID:             userID,
		AccountID:          accountID,
		Type:               txType,
		Amount:             dec(amount),
		Currency:           "USD",
		Frequency:          freq,
		IntervalValue:      1,
		StartDate:          next,
		NextOccurrenceDate: next,
		IsActive:           true,
	}
	f.recurring[r.ID] = *r
	return r
}

func TestCreateRecurringValidation(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewRecurringService(store, testLogger())
	userID := uuid.New()
	account := seedAccount(store, userID, "USD", "100")

	t.Run("valid template schedules first occurrence on start date", func(t *testing.T) {
		start := date(2026, time.March, 1)
		r, err := svc.Create(ctx, userID, CreateRecurringInput{
			AccountID:     account.ID,
			Type:          models.TransactionExpense,
			Amount:        dec("10"),
			Frequency:     models.FrequencyMonthly,
			IntervalValue: 1,
			StartDate:     start,
		})
		require.NoError(t, err)
		assert.Equal(t, start, r.NextOccurrenceDate)
		assert.True(t, r.IsActive)
		assert.Equal(t, "USD", r.Currency)
	})

	t.Run("invalid frequency", func(t *testing.T) {
		_, err := svc.Create(ctx, userID, CreateRecurringInput{
			AccountID:     account.ID,
			Type:          models.TransactionExpense,
			Amount:        dec("10"),
			Frequency:     "FORTNIGHTLY",
			IntervalValue: 1,
			StartDate:     date(2026, time.March, 1),
		})
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	})

	t.Run("end before start", func(t *testing.T) {
		end := date(2026, time.February, 1)
		_, err := svc.Create(ctx, userID, CreateRecurringInput{
			AccountID:     account.ID,
			Type:          models.TransactionExpense,
			Amount:        dec("10"),
			Frequency:     models.FrequencyDaily,
			IntervalValue: 1,
			StartDate:     date(2026, time.March, 1),
			EndDate:       &end,
		})
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	})

	t.Run("transfer requires destination", func(t *testing.T) {
		_, err := svc.Create(ctx, userID, CreateRecurringInput{
			AccountID:     account.ID,
			Type:          models.TransactionTransfer,
			Amount:        dec("10"),
			Frequency:     models.FrequencyWeekly,
			IntervalValue: 1,
			StartDate:     date(2026, time.March, 1),
		})
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	})

	t.Run("destination only valid for transfers", func(t *testing.T) {
		other := seedAccount(store, userID, "USD", "0")
		_, err := svc.Create(ctx, userID, CreateRecurringInput{
			AccountID:     account.ID,
			ToAccountID:   &other.ID,
			Type:          models.TransactionIncome,
			Amount:        dec("10"),
			Frequency:     models.FrequencyWeekly,
			IntervalValue: 1,
			StartDate:     date(2026, time.March, 1),
		})
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	})
}

func TestProcessDueGeneratesOnePerRun(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewRecurringService(store, testLogger())
	userID := uuid.New()
	account := seedAccount(store, userID, "USD", "1000")

	// Overdue by several days; a run generates exactly one occurrence.
	overdue := today().AddDate(0, 0, -5)
	template := seedRecurring(store, userID, account.ID, models.TransactionExpense, "100", models.FrequencyDaily, overdue)

	require.NoError(t, svc.ProcessDue(ctx))

	assert.Len(t, store.txs, 1)
	assert.True(t, store.accounts[account.ID].CurrentBalance.Equal(dec("900")))

	updated := store.recurring[template.ID]
	assert.Equal(t, overdue.AddDate(0, 0, 1), updated.NextOccurrenceDate)
	require.NotNil(t, updated.LastGeneratedDate)
	assert.Equal(t, today(), *updated.LastGeneratedDate)

	for _, tx := range store.txs {
		assert.True(t, tx.IsRecurring)
		require.NotNil(t, tx.RecurringID)
		assert.Equal(t, template.ID, *tx.RecurringID)
		assert.Equal(t, models.StatusCompleted, tx.Status)
	}

	// Still overdue, so the next run generates one more.
	require.NoError(t, svc.ProcessDue(ctx))
	assert.Len(t, store.txs, 2)
	assert.True(t, store.accounts[account.ID].CurrentBalance.Equal(dec("800")))
}

func TestProcessDueSkipsFutureTemplates(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewRecurringService(store, testLogger())
	userID := uuid.New()
	account := seedAccount(store, userID, "USD", "1000")

	seedRecurring(store, userID, account.ID, models.TransactionExpense, "100", models.FrequencyDaily, today().AddDate(0, 0, 3))

	require.NoError(t, svc.ProcessDue(ctx))
	assert.Empty(t, store.txs)
	assert.True(t, store.accounts[account.ID].CurrentBalance.Equal(dec("1000")))
}

func TestProcessDueIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewRecurringService(store, testLogger())
	userID := uuid.New()

	broke := seedAccount(store, userID, "USD", "10")
	funded := seedAccount(store, userID, "USD", "1000")

	failing := seedRecurring(store, userID, broke.ID, models.TransactionExpense, "500", models.FrequencyDaily, today())
	healthy := seedRecurring(store, userID, funded.ID, models.TransactionExpense, "100", models.FrequencyDaily, today())

	require.NoError(t, svc.ProcessDue(ctx))

	// The failing template generated nothing and did not advance.
	assert.True(t, store.accounts[broke.ID].CurrentBalance.Equal(dec("10")))
	assert.Equal(t, today(), store.recurring[failing.ID].NextOccurrenceDate)
	assert.Nil(t, store.recurring[failing.ID].LastGeneratedDate)

	// The healthy one did.
	assert.True(t, store.accounts[funded.ID].CurrentBalance.Equal(dec("900")))
	assert.Equal(t, today().AddDate(0, 0, 1), store.recurring[healthy.ID].NextOccurrenceDate)
	assert.Len(t, store.txs, 1)
}

func TestProcessDueDeactivatesPastEndDate(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewRecurringService(store, testLogger())
	userID := uuid.New()
	account := seedAccount(store, userID, "USD", "1000")

	template := seedRecurring(store, userID, account.ID, models.TransactionExpense, "100", models.FrequencyDaily, today())
	r := store.recurring[template.ID]
	end := today() // next advance lands past the end date
	r.EndDate = &end
	store.recurring[template.ID] = r

	require.NoError(t, svc.ProcessDue(ctx))

	updated := store.recurring[template.ID]
	assert.False(t, updated.IsActive)
	assert.Equal(t, today(), updated.NextOccurrenceDate)
	assert.Len(t, store.txs, 1)

	// A deactivated template never fires again.
	require.NoError(t, svc.ProcessDue(ctx))
	assert.Len(t, store.txs, 1)
}

func TestProcessDueRecurringTransfer(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewRecurringService(store, testLogger())
	userID := uuid.New()

	from := seedAccount(store, userID, "USD", "1000")
	to := seedAccount(store, userID, "EUR", "0")

	r := seedRecurring(store, userID, from.ID, models.TransactionTransfer, "100", models.FrequencyMonthly, today())
	tmpl := store.recurring[r.ID]
	tmpl.ToAccountID = &to.ID
	store.recurring[r.ID] = tmpl

	require.NoError(t, svc.ProcessDue(ctx))

	// No stored rate on the template: the destination is credited at identity.
	assert.True(t, store.accounts[from.ID].CurrentBalance.Equal(dec("900")))
	assert.True(t, store.accounts[to.ID].CurrentBalance.Equal(dec("100")))
	for _, tx := range store.txs {
		require.NotNil(t, tx.ExchangeRate)
		assert.True(t, tx.ExchangeRate.Equal(dec("1")))
	}
}

func TestAdvanceDate(t *testing.T) {
	tests := []struct {
		name     string
		from     time.Time
		freq     models.RecurringFrequency
		interval int
		want     time.Time
	}{
		{"daily", date(2026, time.March, 10), models.FrequencyDaily, 1, date(2026, time.March, 11)},
		{"every 3 days", date(2026, time.March, 10), models.FrequencyDaily, 3, date(2026, time.March, 13)},
		{"weekly", date(2026, time.March, 10), models.FrequencyWeekly, 1, date(2026, time.March, 17)},
		{"monthly", date(2026, time.March, 15), models.FrequencyMonthly, 1, date(2026, time.April, 15)},
		{"monthly clamps jan 31 to feb 28", date(2026, time.January, 31), models.FrequencyMonthly, 1, date(2026, time.February, 28)},
		{"monthly clamps to leap feb 29", date(2024, time.January, 31), models.FrequencyMonthly, 1, date(2024, time.February, 29)},
		{"monthly clamps 31 to apr 30", date(2026, time.March, 31), models.FrequencyMonthly, 1, date(2026, time.April, 30)},
		{"quarterly", date(2026, time.January, 31), models.FrequencyMonthly, 3, date(2026, time.April, 30)},
		{"yearly", date(2026, time.June, 1), models.FrequencyYearly, 1, date(2027, time.June, 1)},
		{"yearly clamps feb 29", date(2024, time.February, 29), models.FrequencyYearly, 1, date(2025, time.February, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, advanceDate(tt.from, tt.freq, tt.interval))
		})
	}
}

func TestRecurringOwnership(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewRecurringService(store, testLogger())
	userID := uuid.New()
	account := seedAccount(store, userID, "USD", "100")
	template := seedRecurring(store, userID, account.ID, models.TransactionExpense, "10", models.FrequencyDaily, today())

	_, err := svc.Get(ctx, uuid.New(), template.ID)
	assert.True(t, apperr.IsNotFound(err))

	err = svc.Delete(ctx, uuid.New(), template.ID)
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, svc.Delete(ctx, userID, template.ID))
	_, err = svc.Get(ctx, userID, template.ID)
	assert.True(t, apperr.IsNotFound(err))
}
