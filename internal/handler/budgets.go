package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/financewallet/wallet/internal/models"
	"github.com/financewallet/wallet/internal/service"
)

type createBudgetRequest struct {
	Name           string              `json:"name"`
	CategoryID     *uuid.UUID          `json:"category_id"`
	Currency       string              `json:"currency"`
	Amount         decimal.Decimal     `json:"amount"`
	Period         models.BudgetPeriod `json:"period"`
	StartDate      time.Time           `json:"start_date"`
	EndDate        *time.Time          `json:"end_date"`
	AlertThreshold int                 `json:"alert_threshold"`
}

type updateBudgetRequest struct {
	Name           *string          `json:"name"`
	Amount         *decimal.Decimal `json:"amount"`
	EndDate        *time.Time       `json:"end_date"`
	AlertThreshold *int             `json:"alert_threshold"`
	IsActive       *bool            `json:"is_active"`
}

// CreateBudget stores a spending budget
func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req createBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	budget, err := h.budgets.Create(r.Context(), userID, service.CreateBudgetInput{
		Name:           req.Name,
		CategoryID:     req.CategoryID,
		Currency:       req.Currency,
		Amount:         req.Amount,
		Period:         req.Period,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		AlertThreshold: req.AlertThreshold,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, budget)
}

// ListBudgets lists the caller's budgets
func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	activeOnly := r.URL.Query().Get("active") == "true"
	budgets, err := h.budgets.List(r.Context(), userID, activeOnly)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, budgets)
}

// GetBudget returns a single budget
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
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
	budget, err := h.budgets.Get(r.Context(), userID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, budget)
}

// BudgetProgress returns the computed spend state of one budget
func (h *Handler) BudgetProgress(w http.ResponseWriter, r *http.Request) {
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
	progress, err := h.budgets.Progress(r.Context(), userID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, progress)
}

// ActiveBudgetProgress returns progress for all active budgets
func (h *Handler) ActiveBudgetProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	progress, err := h.budgets.ActiveProgress(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, progress)
}

// UpdateBudget updates one of the caller's budgets
func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
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
	var req updateBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	budget, err := h.budgets.Update(r.Context(), userID, id, service.UpdateBudgetInput{
		Name:           req.Name,
		Amount:         req.Amount,
		EndDate:        req.EndDate,
		AlertThreshold: req.AlertThreshold,
		IsActive:       req.IsActive,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, budget)
}

// DeleteBudget removes a budget
func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
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
	if err := h.budgets.Delete(r.Context(), userID, id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
