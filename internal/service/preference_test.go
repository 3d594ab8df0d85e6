package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financewallet/wallet/internal/apperr"
)

func TestPreferencesCreatedOnFirstRead(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewPreferenceService(store, testLogger(), "USD")
	userID := uuid.New()

	p, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "USD", p.DefaultCurrency)
	assert.Equal(t, "UTC", p.Timezone)

	// The defaults are persisted, not recomputed.
	_, ok := store.preferences[userID]
	assert.True(t, ok)
}

func TestUpdatePreferences(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewPreferenceService(store, testLogger(), "USD")
	userID := uuid.New()

	currency := "EUR"
	tz := "Europe/Berlin"
	p, err := svc.Update(ctx, userID, UpdatePreferenceInput{
		DefaultCurrency: &currency, Timezone: &tz,
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", p.DefaultCurrency)
	assert.Equal(t, "Europe/Berlin", p.Timezone)

	got, err := svc.DefaultCurrency(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "EUR", got)

	t.Run("unknown currency rejected", func(t *testing.T) {
		bad := "XXX"
		_, err := svc.Update(ctx, userID, UpdatePreferenceInput{DefaultCurrency: &bad})
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("bogus timezone rejected", func(t *testing.T) {
		bad := "Mars/Olympus_Mons"
		_, err := svc.Update(ctx, userID, UpdatePreferenceInput{Timezone: &bad})
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	})
}
