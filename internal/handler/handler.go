package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/middleware"
	"github.com/financewallet/wallet/internal/service"
)

// Handler exposes the service layer over HTTP
type Handler struct {
	auth         *service.AuthService
	accounts     *service.AccountService
	transactions *service.TransactionService
	categories   *service.CategoryService
	budgets      *service.BudgetService
	goals        *service.GoalService
	recurring    *service.RecurringService
	currencies   *service.CurrencyService
	preferences  *service.PreferenceService
	dashboard    *service.DashboardService
	log          *logrus.Logger
}

// NewHandler initializes the HTTP handler
func NewHandler(
	auth *service.AuthService,
	accounts *service.AccountService,
	transactions *service.TransactionService,
	categories *service.CategoryService,
	budgets *service.BudgetService,
	goals *service.GoalService,
	recurring *service.RecurringService,
	currencies *service.CurrencyService,
	preferences *service.PreferenceService,
	dashboard *service.DashboardService,
	log *logrus.Logger,
) *Handler {
	return &Handler{
		auth:         auth,
		accounts:     accounts,
		transactions: transactions,
		categories:   categories,
		budgets:      budgets,
		goals:        goals,
		recurring:    recurring,
		currencies:   currencies,
		preferences:  preferences,
		dashboard:    dashboard,
		log:          log,
	}
}

// respondJSON writes v as a JSON response body
func (h *Handler) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			h.log.Errorf("Failed to encode response: %v", err)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondError maps domain error kinds to HTTP statuses. Unclassified errors
// are logged and returned as an opaque 500.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindBadRequest:
		h.respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case apperr.KindNotFound:
		h.respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case apperr.KindUnauthorized:
		h.respondJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case apperr.KindInsufficientBalance:
		h.respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "INSUFFICIENT_BALANCE"})
	default:
		h.log.Errorf("Internal error: %v", err)
		h.respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// decodeJSON parses the request body into v
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.BadRequest("invalid request body: %v", err)
	}
	return nil
}

// callerID extracts the authenticated user id set by the auth middleware
func callerID(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		return uuid.Nil, apperr.Unauthorized("authentication required")
	}
	return id, nil
}

// pathID parses a UUID path variable
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, apperr.BadRequest("invalid %s: must be a UUID", name)
	}
	return id, nil
}

// parseDate parses an ISO date or timestamp query value
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperr.BadRequest("invalid date %q: use YYYY-MM-DD or RFC 3339", value)
	}
	return t, nil
}
