package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/financewallet/wallet/internal/service"
)

type createRateRequest struct {
	FromCurrency  string          `json:"from_currency"`
	ToCurrency    string          `json:"to_currency"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveDate time.Time       `json:"effective_date"`
}

// ListCurrencies lists the supported currencies
func (h *Handler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.currencies.Currencies(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, currencies)
}

// CreateExchangeRate stores a manual exchange rate
func (h *Handler) CreateExchangeRate(w http.ResponseWriter, r *http.Request) {
	var req createRateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	rate, err := h.currencies.CreateRate(r.Context(), service.CreateRateInput{
		FromCurrency:  req.FromCurrency,
		ToCurrency:    req.ToCurrency,
		Rate:          req.Rate,
		EffectiveDate: req.EffectiveDate,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, rate)
}
