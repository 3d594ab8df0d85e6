package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/models"
	"github.com/financewallet/wallet/internal/service"
)

type createTransactionRequest struct {
	AccountID       uuid.UUID                `json:"account_id"`
	CategoryID      *uuid.UUID               `json:"category_id"`
	Type            models.TransactionType   `json:"type"`
	Amount          decimal.Decimal          `json:"amount"`
	TransactionDate time.Time                `json:"transaction_date"`
	Description     string                   `json:"description"`
	Note            string                   `json:"note"`
	Payee           string                   `json:"payee"`
	Status          models.TransactionStatus `json:"status"`
	Tags            []string                 `json:"tags"`
}

type transferRequest struct {
	FromAccountID   uuid.UUID        `json:"from_account_id"`
	ToAccountID     uuid.UUID        `json:"to_account_id"`
	Amount          decimal.Decimal  `json:"amount"`
	ExchangeRate    *decimal.Decimal `json:"exchange_rate"`
	TransactionDate time.Time        `json:"transaction_date"`
	Description     string           `json:"description"`
	Note            string           `json:"note"`
}

type updateTransactionRequest struct {
	Amount          *decimal.Decimal          `json:"amount"`
	CategoryID      *uuid.UUID                `json:"category_id"`
	TransactionDate *time.Time                `json:"transaction_date"`
	Description     *string                   `json:"description"`
	Note            *string                   `json:"note"`
	Payee           *string                   `json:"payee"`
	Status          *models.TransactionStatus `json:"status"`
	Tags            *[]string                 `json:"tags"`
}

// CreateTransaction records an income or expense
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	t, err := h.transactions.Create(r.Context(), userID, service.CreateTransactionInput{
		AccountID:       req.AccountID,
		CategoryID:      req.CategoryID,
		Type:            req.Type,
		Amount:          req.Amount,
		TransactionDate: req.TransactionDate,
		Description:     req.Description,
		Note:            req.Note,
		Payee:           req.Payee,
		Status:          req.Status,
		Tags:            req.Tags,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, t)
}

// CreateTransfer records a transfer between two accounts
func (h *Handler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	t, err := h.transactions.Transfer(r.Context(), userID, service.TransferInput{
		FromAccountID:   req.FromAccountID,
		ToAccountID:     req.ToAccountID,
		Amount:          req.Amount,
		ExchangeRate:    req.ExchangeRate,
		TransactionDate: req.TransactionDate,
		Description:     req.Description,
		Note:            req.Note,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, t)
}

// ListTransactions lists the caller's transactions with optional filters
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	filter, err := parseTransactionFilter(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	transactions, err := h.transactions.List(r.Context(), userID, filter)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, transactions)
}

func parseTransactionFilter(r *http.Request) (service.TransactionFilter, error) {
	var filter service.TransactionFilter
	q := r.URL.Query()

	if v := q.Get("account_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, apperr.BadRequest("invalid account_id: must be a UUID")
		}
		filter.AccountID = &id
	}
	if v := q.Get("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, apperr.BadRequest("invalid category_id: must be a UUID")
		}
		filter.CategoryID = &id
	}
	filter.Type = models.TransactionType(q.Get("type"))
	if v := q.Get("start_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &t
	}
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}
	return filter, nil
}

// GetTransaction returns a single transaction
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
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
	t, err := h.transactions.Get(r.Context(), userID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, t)
}

// UpdateTransaction modifies an income or expense transaction
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
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
	var req updateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	t, err := h.transactions.Update(r.Context(), userID, id, service.UpdateTransactionInput{
		Amount:          req.Amount,
		CategoryID:      req.CategoryID,
		TransactionDate: req.TransactionDate,
		Description:     req.Description,
		Note:            req.Note,
		Payee:           req.Payee,
		Status:          req.Status,
		Tags:            req.Tags,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, t)
}

// DeleteTransaction reverses and removes a transaction
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
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
	if err := h.transactions.Delete(r.Context(), userID, id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
