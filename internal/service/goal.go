package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/models"
)

// GoalService manages savings goals
type GoalService struct {
	store Store
	log   *logrus.Logger
}

// NewGoalService initializes a new goal service
func NewGoalService(store Store, log *logrus.Logger) *GoalService {
	return &GoalService{store: store, log: log}
}

// CreateGoalInput holds parameters for a new goal.
type CreateGoalInput struct {
	Name          string
	Description   string
	AccountID     *uuid.UUID
	Currency      string
	TargetAmount  decimal.Decimal
	InitialAmount decimal.Decimal
	TargetDate    *time.Time
}

// UpdateGoalInput carries optional field updates; nil means unchanged.
type UpdateGoalInput struct {
	Name         *string
	Description  *string
	TargetAmount *decimal.Decimal
	TargetDate   *time.Time
}

// Create validates and stores a goal.
func (s *GoalService) Create(ctx context.Context, userID uuid.UUID, in CreateGoalInput) (*models.Goal, error) {
	if in.Name == "" {
		return nil, apperr.BadRequest("goal name is required")
	}
	if !in.TargetAmount.IsPositive() {
		return nil, apperr.BadRequest("target amount must be greater than zero")
	}
	if in.InitialAmount.IsNegative() {
		return nil, apperr.BadRequest("initial amount cannot be negative")
	}
	if in.InitialAmount.GreaterThan(in.TargetAmount) {
		return nil, apperr.BadRequest("initial amount cannot be greater than target amount")
	}
	if _, err := s.store.CurrencyByCode(ctx, in.Currency); err != nil {
		return nil, err
	}
	if in.AccountID != nil {
		if _, err := s.store.AccountByID(ctx, userID, *in.AccountID); err != nil {
			return nil, err
		}
	}

	g := &models.Goal{
		ID:            uuid.New(),
		UserID:        userID,
		AccountID:     in.AccountID,
		Currency:      in.Currency,
		Name:          in.Name,
		Description:   in.Description,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.InitialAmount,
		TargetDate:    in.TargetDate,
		IsCompleted:   in.InitialAmount.GreaterThanOrEqual(in.TargetAmount),
	}
	if err := s.store.CreateGoal(ctx, g); err != nil {
		return nil, err
	}
	s.log.Infof("Goal created: %s (%s)", g.Name, g.ID)
	return g, nil
}

// List returns the caller's goals.
func (s *GoalService) List(ctx context.Context, userID uuid.UUID) ([]models.Goal, error) {
	return s.store.GoalsByUser(ctx, userID)
}

// Get returns one of the caller's goals.
func (s *GoalService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Goal, error) {
	return s.store.GoalByID(ctx, userID, id)
}

// Update modifies goal metadata and re-evaluates completion.
func (s *GoalService) Update(ctx context.Context, userID, id uuid.UUID, in UpdateGoalInput) (*models.Goal, error) {
	g, err := s.store.GoalByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		g.Name = *in.Name
	}
	if in.Description != nil {
		g.Description = *in.Description
	}
	if in.TargetAmount != nil {
		if !in.TargetAmount.IsPositive() {
			return nil, apperr.BadRequest("target amount must be greater than zero")
		}
		g.TargetAmount = *in.TargetAmount
	}
	if in.TargetDate != nil {
		g.TargetDate = in.TargetDate
	}
	g.IsCompleted = g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
	g.UpdatedAt = time.Now()

	if err := s.store.UpdateGoal(ctx, g); err != nil {
		return nil, err
	}
	s.log.Infof("Goal updated: %s (%s)", g.Name, g.ID)
	return g, nil
}

// UpdateProgress adds (or, with a negative delta, removes) saved money and
// flags completion when the target is reached. The running amount never goes
// below zero.
func (s *GoalService) UpdateProgress(ctx context.Context, userID, id uuid.UUID, delta decimal.Decimal) (*models.Goal, error) {
	g, err := s.store.GoalByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	next := g.CurrentAmount.Add(delta)
	if next.IsNegative() {
		return nil, apperr.BadRequest("goal progress cannot go below zero")
	}
	g.CurrentAmount = next
	g.IsCompleted = next.GreaterThanOrEqual(g.TargetAmount)
	g.UpdatedAt = time.Now()

	if err := s.store.UpdateGoal(ctx, g); err != nil {
		return nil, err
	}
	s.log.Infof("Goal progress updated: %s now %s/%s", g.ID, g.CurrentAmount, g.TargetAmount)
	return g, nil
}

// Delete hard-deletes a goal.
func (s *GoalService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	g, err := s.store.GoalByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteGoal(ctx, g.ID); err != nil {
		return err
	}
	s.log.Infof("Goal deleted: %s (%s)", g.Name, g.ID)
	return nil
}
