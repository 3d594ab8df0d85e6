package handler

import (
	"net/http"
	"time"

	"github.com/financewallet/wallet/internal/apperr"
)

// Dashboard returns the current-month overview
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	dashboard, err := h.dashboard.Dashboard(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, dashboard)
}

// Statistics returns aggregates over an explicit date range
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	q := r.URL.Query()
	start, err := parseDate(q.Get("start_date"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	end, err := parseDate(q.Get("end_date"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if end.Before(start) {
		h.respondError(w, apperr.BadRequest("end_date must not be before start_date"))
		return
	}
	// Cap unbounded scans at 5 years.
	if end.Sub(start) > 5*365*24*time.Hour {
		h.respondError(w, apperr.BadRequest("date range too large"))
		return
	}

	stats, err := h.dashboard.Statistics(r.Context(), userID, start, end)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, stats)
}
