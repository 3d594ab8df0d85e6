package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/financewallet/wallet/internal/service"
)

type createGoalRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	AccountID     *uuid.UUID      `json:"account_id"`
	Currency      string          `json:"currency"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	InitialAmount decimal.Decimal `json:"initial_amount"`
	TargetDate    *time.Time      `json:"target_date"`
}

type updateGoalRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	TargetAmount *decimal.Decimal `json:"target_amount"`
	TargetDate   *time.Time       `json:"target_date"`
}

type goalProgressRequest struct {
	Delta decimal.Decimal `json:"delta"`
}

// CreateGoal stores a savings goal
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req createGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	goal, err := h.goals.Create(r.Context(), userID, service.CreateGoalInput{
		Name:          req.Name,
		Description:   req.Description,
		AccountID:     req.AccountID,
		Currency:      req.Currency,
		TargetAmount:  req.TargetAmount,
		InitialAmount: req.InitialAmount,
		TargetDate:    req.TargetDate,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, goal)
}

// ListGoals lists the caller's goals
func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	goals, err := h.goals.List(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, goals)
}

// GetGoal returns a single goal
func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
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
	goal, err := h.goals.Get(r.Context(), userID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, goal)
}

// UpdateGoal updates one of the caller's goals
func (h *Handler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
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
	var req updateGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	goal, err := h.goals.Update(r.Context(), userID, id, service.UpdateGoalInput{
		Name:         req.Name,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		TargetDate:   req.TargetDate,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, goal)
}

// UpdateGoalProgress adds a saved-amount delta to a goal
func (h *Handler) UpdateGoalProgress(w http.ResponseWriter, r *http.Request) {
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
	var req goalProgressRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	goal, err := h.goals.UpdateProgress(r.Context(), userID, id, req.Delta)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, goal)
}

// DeleteGoal removes a goal
func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
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
	if err := h.goals.Delete(r.Context(), userID, id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
