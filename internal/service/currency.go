package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/integrations/rates"
	"github.com/financewallet/wallet/internal/models"
)

// RateSource supplies externally published exchange rates.
type RateSource interface {
	Fetch(ctx context.Context) ([]rates.Rate, error)
}

// CurrencyService exposes currency reference data, exchange-rate management,
// and the read-path conversion helper.
type CurrencyService struct {
	store  Store
	log    *logrus.Logger
	source RateSource
}

// NewCurrencyService initializes a new currency service. source may be nil
// when rate syncing is disabled.
func NewCurrencyService(store Store, log *logrus.Logger, source RateSource) *CurrencyService {
	return &CurrencyService{store: store, log: log, source: source}
}

// Currencies lists all known currencies.
func (s *CurrencyService) Currencies(ctx context.Context) ([]models.Currency, error) {
	return s.store.Currencies(ctx)
}

// CreateRateInput holds parameters for a manually entered exchange rate.
type CreateRateInput struct {
	FromCurrency  string
	ToCurrency    string
	Rate          decimal.Decimal
	EffectiveDate time.Time
}

// CreateRate stores a directed, date-scoped conversion factor. A rate already
// present for the pair and date is overwritten.
func (s *CurrencyService) CreateRate(ctx context.Context, in CreateRateInput) (*models.ExchangeRate, error) {
	if !in.Rate.IsPositive() {
		return nil, apperr.BadRequest("rate must be greater than zero")
	}
	if in.FromCurrency == in.ToCurrency {
		return nil, apperr.BadRequest("from and to currencies must differ")
	}
	for _, code := range []string{in.FromCurrency, in.ToCurrency} {
		if _, err := s.store.CurrencyByCode(ctx, code); err != nil {
			return nil, err
		}
	}

	date := in.EffectiveDate
	if date.IsZero() {
		date = today()
	}
	rate := &models.ExchangeRate{
		ID:            uuid.New(),
		FromCurrency:  in.FromCurrency,
		ToCurrency:    in.ToCurrency,
		Rate:          in.Rate.Round(8),
		EffectiveDate: date,
	}
	if err := s.store.UpsertExchangeRate(ctx, rate); err != nil {
		return nil, err
	}
	s.log.Infof("Exchange rate stored: %s->%s %s effective %s", rate.FromCurrency, rate.ToCurrency, rate.Rate, rate.EffectiveDate.Format("2006-01-02"))
	return rate, nil
}

// ConvertToDefault converts amount from one currency to another using the
// latest rate effective on or before asOf, rounded to 2 decimal places
// half-up. When no rate is stored the amount passes through unchanged and a
// warning is logged; availability over correctness on the read path. The
// transfer operation never uses this helper.
func (s *CurrencyService) ConvertToDefault(ctx context.Context, amount decimal.Decimal, fromCurrency, toCurrency string, asOf time.Time) (decimal.Decimal, error) {
	if fromCurrency == toCurrency {
		return amount, nil
	}

	rate, err := s.store.LatestRate(ctx, fromCurrency, toCurrency, asOf)
	if err != nil {
		if apperr.IsNotFound(err) {
			s.log.Warnf("No exchange rate found for %s to %s, using 1:1 conversion", fromCurrency, toCurrency)
			return amount, nil
		}
		return decimal.Zero, err
	}
	return amount.Mul(rate.Rate).Round(2), nil
}

// SyncRates pulls the external daily feed and stores each published rate and
// its 8-decimal-place inverse, effective on the feed's own date.
func (s *CurrencyService) SyncRates(ctx context.Context) error {
	if s.source == nil {
		return nil
	}

	feed, err := s.source.Fetch(ctx)
	if err != nil {
		return err
	}

	one := decimal.NewFromInt(1)
	stored := 0
	for _, r := range feed {
		pair := []*models.ExchangeRate{
			{ID: uuid.New(), FromCurrency: r.Base, ToCurrency: r.Quote, Rate: r.Rate.Round(8), EffectiveDate: r.Date},
			{ID: uuid.New(), FromCurrency: r.Quote, ToCurrency: r.Base, Rate: one.DivRound(r.Rate, 8), EffectiveDate: r.Date},
		}
		for _, er := range pair {
			if err := s.store.UpsertExchangeRate(ctx, er); err != nil {
				s.log.Errorf("Failed to store rate %s->%s: %v", er.FromCurrency, er.ToCurrency, err)
				continue
			}
			stored++
		}
	}

	s.log.Infof("Exchange rate sync finished: %d rates stored", stored)
	return nil
}

// today returns the current date truncated to midnight UTC.
func today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
