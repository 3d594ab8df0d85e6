package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/financewallet/wallet/internal/models"
	"github.com/financewallet/wallet/internal/service"
)

type createRecurringRequest struct {
	AccountID     uuid.UUID                 `json:"account_id"`
	ToAccountID   *uuid.UUID                `json:"to_account_id"`
	CategoryID    *uuid.UUID                `json:"category_id"`
	Type          models.TransactionType   `json:"type"`
	Amount        decimal.Decimal           `json:"amount"`
	Description   string                    `json:"description"`
	Frequency     models.RecurringFrequency `json:"frequency"`
	IntervalValue int                       `json:"interval_value"`
	StartDate     time.Time                 `json:"start_date"`
	EndDate       *time.Time                `json:"end_date"`
}

type updateRecurringRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	IsActive    *bool            `json:"is_active"`
	EndDate     *time.Time       `json:"end_date"`
}

// CreateRecurring stores a recurring transaction template
func (h *Handler) CreateRecurring(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req createRecurringRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	template, err := h.recurring.Create(r.Context(), userID, service.CreateRecurringInput{
		AccountID:     req.AccountID,
		ToAccountID:   req.ToAccountID,
		CategoryID:    req.CategoryID,
		Type:          req.Type,
		Amount:        req.Amount,
		Description:   req.Description,
		Frequency:     req.Frequency,
		IntervalValue: req.IntervalValue,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, template)
}

// ListRecurring lists the caller's recurring templates
func (h *Handler) ListRecurring(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	activeOnly := r.URL.Query().Get("active") == "true"
	templates, err := h.recurring.List(r.Context(), userID, activeOnly)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, templates)
}

// GetRecurring returns a single recurring template
func (h *Handler) GetRecurring(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	template, err := h.recurring.Get(r.Context(), userID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, template)
}

// UpdateRecurring updates one of the caller's recurring templates
func (h *Handler) UpdateRecurring(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req updateRecurringRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	template, err := h.recurring.Update(r.Context(), userID, id, service.UpdateRecurringInput{
		Amount:      req.Amount,
		Description: req.Description,
		IsActive:    req.IsActive,
		EndDate:     req.EndDate,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, template)
}

// DeleteRecurring removes a recurring template
func (h *Handler) DeleteRecurring(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.recurring.Delete(r.Context(), userID, id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
