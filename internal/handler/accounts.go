package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/financewallet/wallet/internal/models"
	"github.com/financewallet/wallet/internal/service"
)

type createAccountRequest struct {
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	AccountType       models.AccountType `json:"account_type"`
	Currency          string             `json:"currency"`
	InitialBalance    decimal.Decimal    `json:"initial_balance"`
	IsIncludedInTotal *bool              `json:"is_included_in_total"`
}

type updateAccountRequest struct {
	Name              *string             `json:"name"`
	Description       *string             `json:"description"`
	AccountType       *models.AccountType `json:"account_type"`
	IsIncludedInTotal *bool               `json:"is_included_in_total"`
	IsActive          *bool               `json:"is_active"`
}

// CreateAccount handles account creation
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	included := true
	if req.IsIncludedInTotal != nil {
		included = *req.IsIncludedInTotal
	}
	account, err := h.accounts.Create(r.Context(), userID, service.CreateAccountInput{
		Name:              req.Name,
		Description:       req.Description,
		AccountType:       req.AccountType,
		Currency:          req.Currency,
		InitialBalance:    req.InitialBalance,
		IsIncludedInTotal: included,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, account)
}

// ListAccounts lists the caller's accounts
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	accounts, err := h.accounts.List(r.Context(), userID, includeInactive)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, accounts)
}

// GetAccount returns a single account
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
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
	account, err := h.accounts.Get(r.Context(), userID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, account)
}

// UpdateAccount updates account metadata
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
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
	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	account, err := h.accounts.Update(r.Context(), userID, id, service.UpdateAccountInput{
		Name:              req.Name,
		Description:       req.Description,
		AccountType:       req.AccountType,
		IsIncludedInTotal: req.IsIncludedInTotal,
		IsActive:          req.IsActive,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, account)
}

// DeleteAccount deactivates an account
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
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
	if err := h.accounts.Delete(r.Context(), userID, id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AccountSummary returns per-currency balances plus the consolidated total
func (h *Handler) AccountSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	summary, err := h.accounts.Summary(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, summary)
}
