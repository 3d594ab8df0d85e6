package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/models"
)

// CategoryService manages transaction categories. System categories are
// shared and read-only; user categories are private and soft-deleted.
type CategoryService struct {
	store Store
	log   *logrus.Logger
}

// NewCategoryService initializes a new category service
func NewCategoryService(store Store, log *logrus.Logger) *CategoryService {
	return &CategoryService{store: store, log: log}
}

// CreateCategoryInput holds parameters for a new user category.
type CreateCategoryInput struct {
	Name     string
	Type     models.TransactionType
	ParentID *uuid.UUID
}

// UpdateCategoryInput carries optional field updates; nil means unchanged.
type UpdateCategoryInput struct {
	Name     *string
	ParentID *uuid.UUID
	IsActive *bool
}

// Create stores a private category for the caller.
func (s *CategoryService) Create(ctx context.Context, userID uuid.UUID, in CreateCategoryInput) (*models.Category, error) {
	if in.Name == "" {
		return nil, apperr.BadRequest("category name is required")
	}
	if in.Type != models.TransactionIncome && in.Type != models.TransactionExpense {
		return nil, apperr.BadRequest("category type must be INCOME or EXPENSE")
	}
	if in.ParentID != nil {
		parent, err := s.visible(ctx, userID, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.Type != in.Type {
			return nil, apperr.BadRequest("parent category type (%s) does not match (%s)", parent.Type, in.Type)
		}
	}

	c := &models.Category{
		ID:       uuid.New(),
		UserID:   &userID,
		ParentID: in.ParentID,
		Name:     in.Name,
		Type:     in.Type,
		IsActive: true,
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.log.Infof("Category created: %s (%s)", c.Name, c.ID)
	return c, nil
}

// List returns system categories plus the caller's own.
func (s *CategoryService) List(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	return s.store.CategoriesForUser(ctx, userID)
}

// Get returns a category visible to the caller.
func (s *CategoryService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Category, error) {
	return s.visible(ctx, userID, id)
}

// Update modifies one of the caller's own categories. System categories are
// immutable.
func (s *CategoryService) Update(ctx context.Context, userID, id uuid.UUID, in UpdateCategoryInput) (*models.Category, error) {
	c, err := s.visible(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if c.IsSystem {
		return nil, apperr.BadRequest("system categories cannot be modified")
	}

	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.ParentID != nil {
		if *in.ParentID == c.ID {
			return nil, apperr.BadRequest("category cannot be its own parent")
		}
		parent, err := s.visible(ctx, userID, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.Type != c.Type {
			return nil, apperr.BadRequest("parent category type (%s) does not match (%s)", parent.Type, c.Type)
		}
		c.ParentID = in.ParentID
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	c.UpdatedAt = time.Now()

	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.log.Infof("Category updated: %s (%s)", c.Name, c.ID)
	return c, nil
}

// Delete soft-deletes one of the caller's own categories. Transactions keep
// their category reference for history.
func (s *CategoryService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	c, err := s.visible(ctx, userID, id)
	if err != nil {
		return err
	}
	if c.IsSystem {
		return apperr.BadRequest("system categories cannot be deleted")
	}

	c.IsActive = false
	c.UpdatedAt = time.Now()
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return err
	}
	s.log.Infof("Category deleted (soft): %s (%s)", c.Name, c.ID)
	return nil
}

func (s *CategoryService) visible(ctx context.Context, userID, id uuid.UUID) (*models.Category, error) {
	c, err := s.store.CategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsSystem && (c.UserID == nil || *c.UserID != userID) {
		return nil, apperr.NotFound("category not found with id: %s", id)
	}
	return c, nil
}
