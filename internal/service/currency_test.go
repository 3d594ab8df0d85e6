package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/integrations/rates"
)

type fakeRateSource struct {
	rates []rates.Rate
	err   error
}

func (f *fakeRateSource) Fetch(ctx context.Context) ([]rates.Rate, error) {
	return f.rates, f.err
}

func TestCreateRate(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewCurrencyService(store, testLogger(), nil)

	t.Run("stores rounded to 8 places", func(t *testing.T) {
		rate, err := svc.CreateRate(ctx, CreateRateInput{
			FromCurrency:  "USD",
			ToCurrency:    "EUR",
			Rate:          dec("0.923456789123"),
			EffectiveDate: date(2026, time.August, 1),
		})
		require.NoError(t, err)
		assert.True(t, rate.Rate.Equal(dec("0.92345679")))
	})

	t.Run("same pair and date overwrites", func(t *testing.T) {
		_, err := svc.CreateRate(ctx, CreateRateInput{
			FromCurrency: "USD", ToCurrency: "EUR",
			Rate: dec("0.95"), EffectiveDate: date(2026, time.August, 1),
		})
		require.NoError(t, err)

		stored, err := store.LatestRate(ctx, "USD", "EUR", date(2026, time.August, 1))
		require.NoError(t, err)
		assert.True(t, stored.Rate.Equal(dec("0.95")))
		assert.Len(t, store.rates, 1)
	})

	t.Run("identical currencies rejected", func(t *testing.T) {
		_, err := svc.CreateRate(ctx, CreateRateInput{
			FromCurrency: "USD", ToCurrency: "USD", Rate: dec("1"),
		})
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	})

	t.Run("unknown currency rejected", func(t *testing.T) {
		_, err := svc.CreateRate(ctx, CreateRateInput{
			FromCurrency: "USD", ToCurrency: "XXX", Rate: dec("2"),
		})
		assert.True(t, apperr.IsNotFound(err))
	})
}

func TestConvertToDefault(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewCurrencyService(store, testLogger(), nil)
	asOf := date(2026, time.August, 10)

	_, err := svc.CreateRate(ctx, CreateRateInput{
		FromCurrency: "USD", ToCurrency: "EUR",
		Rate: dec("0.92"), EffectiveDate: date(2026, time.August, 1),
	})
	require.NoError(t, err)

	t.Run("applies latest applicable rate", func(t *testing.T) {
		got, err := svc.ConvertToDefault(ctx, dec("100"), "USD", "EUR", asOf)
		require.NoError(t, err)
		assert.True(t, got.Equal(dec("92.00")))
	})

	t.Run("identity for same currency", func(t *testing.T) {
		got, err := svc.ConvertToDefault(ctx, dec("55.50"), "EUR", "EUR", asOf)
		require.NoError(t, err)
		assert.True(t, got.Equal(dec("55.50")))
	})

	t.Run("missing rate passes amount through", func(t *testing.T) {
		got, err := svc.ConvertToDefault(ctx, dec("100"), "GBP", "EUR", asOf)
		require.NoError(t, err)
		assert.True(t, got.Equal(dec("100")))
	})

	t.Run("rounds half up to 2 places", func(t *testing.T) {
		_, err := svc.CreateRate(ctx, CreateRateInput{
			FromCurrency: "EUR", ToCurrency: "USD",
			Rate: dec("1.08665"), EffectiveDate: date(2026, time.August, 1),
		})
		require.NoError(t, err)

		got, err := svc.ConvertToDefault(ctx, dec("10"), "EUR", "USD", asOf)
		require.NoError(t, err)
		assert.True(t, got.Equal(dec("10.87")), "got %s", got)
	})

	t.Run("rates dated after asOf are ignored", func(t *testing.T) {
		_, err := svc.CreateRate(ctx, CreateRateInput{
			FromCurrency: "USD", ToCurrency: "GBP",
			Rate: dec("0.79"), EffectiveDate: asOf.AddDate(0, 0, 5),
		})
		require.NoError(t, err)

		got, err := svc.ConvertToDefault(ctx, dec("100"), "USD", "GBP", asOf)
		require.NoError(t, err)
		assert.True(t, got.Equal(dec("100")), "future rate must not apply")
	})
}

func TestSyncRates(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	feedDate := date(2026, time.August, 28)
	source := &fakeRateSource{rates: []rates.Rate{
		{Base: "EUR", Quote: "USD", Rate: dec("1.0866"), Date: feedDate},
		{Base: "EUR", Quote: "GBP", Rate: dec("0.8532"), Date: feedDate},
	}}
	svc := NewCurrencyService(store, testLogger(), source)

	require.NoError(t, svc.SyncRates(ctx))

	// Each feed entry produces the rate and its 8dp inverse.
	assert.Len(t, store.rates, 4)

	direct, err := store.LatestRate(ctx, "EUR", "USD", feedDate)
	require.NoError(t, err)
	assert.True(t, direct.Rate.Equal(dec("1.0866")))

	inverse, err := store.LatestRate(ctx, "USD", "EUR", feedDate)
	require.NoError(t, err)
	assert.True(t, inverse.Rate.Equal(dec("0.92030186")), "got %s", inverse.Rate)
}

func TestSyncRatesSourceFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	source := &fakeRateSource{err: errors.New("feed unavailable")}
	svc := NewCurrencyService(store, testLogger(), source)

	err := svc.SyncRates(ctx)
	require.Error(t, err)
	assert.Empty(t, store.rates)
}

func TestSyncRatesNilSource(t *testing.T) {
	svc := NewCurrencyService(newFakeStore(), testLogger(), nil)
	assert.NoError(t, svc.SyncRates(context.Background()))
}
