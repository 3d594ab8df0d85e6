package handler

import (
	"net/http"

	"github.com/financewallet/wallet/internal/service"
)

type updatePreferenceRequest struct {
	DefaultCurrency *string `json:"default_currency"`
	Timezone        *string `json:"timezone"`
}

// GetPreferences returns the caller's preferences
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	prefs, err := h.preferences.Get(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, prefs)
}

// UpdatePreferences updates the caller's preferences
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req updatePreferenceRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	prefs, err := h.preferences.Update(r.Context(), userID, service.UpdatePreferenceInput{
		DefaultCurrency: req.DefaultCurrency,
		Timezone:        req.Timezone,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, prefs)
}
