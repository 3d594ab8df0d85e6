package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/financewallet/wallet/internal/models"
	"github.com/financewallet/wallet/internal/service"
)

type createCategoryRequest struct {
	Name     string                  `json:"name"`
	Type     models.TransactionType `json:"type"`
	ParentID *uuid.UUID              `json:"parent_id"`
}

type updateCategoryRequest struct {
	Name     *string    `json:"name"`
	ParentID *uuid.UUID `json:"parent_id"`
	IsActive *bool      `json:"is_active"`
}

// CreateCategory stores a private category
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	category, err := h.categories.Create(r.Context(), userID, service.CreateCategoryInput{
		Name:     req.Name,
		Type:     req.Type,
		ParentID: req.ParentID,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, category)
}

// ListCategories lists system categories plus the caller's own
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	categories, err := h.categories.List(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, categories)
}

// GetCategory returns a single category
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
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
	category, err := h.categories.Get(r.Context(), userID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, category)
}

// UpdateCategory updates one of the caller's categories
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
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
	var req updateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	category, err := h.categories.Update(r.Context(), userID, id, service.UpdateCategoryInput{
		Name:     req.Name,
		ParentID: req.ParentID,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, category)
}

// DeleteCategory deactivates one of the caller's categories
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
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
	if err := h.categories.Delete(r.Context(), userID, id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
