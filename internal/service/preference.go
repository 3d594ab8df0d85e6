package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/models"
)

// PreferenceService manages per-user settings, creating defaults on first
// read.
type PreferenceService struct {
	store           Store
	log             *logrus.Logger
	defaultCurrency string
}

// NewPreferenceService initializes a new preference service. defaultCurrency
// seeds the preference row created on first access.
func NewPreferenceService(store Store, log *logrus.Logger, defaultCurrency string) *PreferenceService {
	return &PreferenceService{store: store, log: log, defaultCurrency: defaultCurrency}
}

// UpdatePreferenceInput carries optional field updates; nil means unchanged.
type UpdatePreferenceInput struct {
	DefaultCurrency *string
	Timezone        *string
}

// Get returns the caller's preferences, creating defaults when absent.
func (s *PreferenceService) Get(ctx context.Context, userID uuid.UUID) (*models.UserPreference, error) {
	p, err := s.store.PreferenceByUser(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	s.log.Infof("Creating default preferences for user %s", userID)
	p = &models.UserPreference{
		UserID:          userID,
		DefaultCurrency: s.defaultCurrency,
		Timezone:        "UTC",
	}
	if err := s.store.SavePreference(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update modifies the caller's preferences.
func (s *PreferenceService) Update(ctx context.Context, userID uuid.UUID, in UpdatePreferenceInput) (*models.UserPreference, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.DefaultCurrency != nil {
		if _, err := s.store.CurrencyByCode(ctx, *in.DefaultCurrency); err != nil {
			return nil, err
		}
		p.DefaultCurrency = *in.DefaultCurrency
	}
	if in.Timezone != nil {
		if _, err := time.LoadLocation(*in.Timezone); err != nil {
			return nil, apperr.BadRequest("invalid timezone: %s", *in.Timezone)
		}
		p.Timezone = *in.Timezone
	}
	p.UpdatedAt = time.Now()

	if err := s.store.SavePreference(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DefaultCurrency resolves the caller's display currency.
func (s *PreferenceService) DefaultCurrency(ctx context.Context, userID uuid.UUID) (string, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return p.DefaultCurrency, nil
}
