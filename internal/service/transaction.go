package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/events"
	"github.com/financewallet/wallet/internal/models"
)

// TransactionService applies money-movement operations as all-or-nothing
// units that keep Account.CurrentBalance consistent with transaction history.
// Every balance-affecting operation runs inside a single store transaction
// with the touched account rows locked, so concurrent writers to the same
// account are serialized by the datastore.
type TransactionService struct {
	store  Store
	log    *logrus.Logger
	events *events.Publisher
}

// NewTransactionService initializes the transaction engine
func NewTransactionService(store Store, log *logrus.Logger, pub *events.Publisher) *TransactionService {
	return &TransactionService{store: store, log: log, events: pub}
}

// CreateTransactionInput holds parameters for creating an income or expense
// transaction.
type CreateTransactionInput struct {
	AccountID       uuid.UUID
	CategoryID      *uuid.UUID
	Type            models.TransactionType
	Amount          decimal.Decimal
	TransactionDate time.Time
	Description     string
	Note            string
	Payee           string
	Status          models.TransactionStatus
	Tags            []string
}

// TransferInput holds parameters for a transfer between two accounts.
// ExchangeRate is required when the account currencies differ; there is no
// automatic rate lookup on the transfer path.
type TransferInput struct {
	FromAccountID   uuid.UUID
	ToAccountID     uuid.UUID
	Amount          decimal.Decimal
	ExchangeRate    *decimal.Decimal
	TransactionDate time.Time
	Description     string
	Note            string
}

// UpdateTransactionInput carries optional field updates; nil means unchanged.
// A non-nil Tags replaces the whole tag set; an empty slice clears it.
type UpdateTransactionInput struct {
	Amount          *decimal.Decimal
	CategoryID      *uuid.UUID
	TransactionDate *time.Time
	Description     *string
	Note            *string
	Payee           *string
	Status          *models.TransactionStatus
	Tags            *[]string
}

// Create persists an INCOME or EXPENSE transaction and atomically adjusts the
// account balance. Expenses exceeding the current balance fail with
// InsufficientBalance and leave the balance unchanged.
func (s *TransactionService) Create(ctx context.Context, userID uuid.UUID, in CreateTransactionInput) (*models.Transaction, error) {
	if !in.Amount.IsPositive() {
		return nil, apperr.BadRequest("amount must be greater than zero")
	}
	if in.Type == models.TransactionTransfer {
		return nil, apperr.BadRequest("use the transfer operation for transfer transactions")
	}
	if in.Type != models.TransactionIncome && in.Type != models.TransactionExpense {
		return nil, apperr.BadRequest("invalid transaction type: %s", in.Type)
	}

	var created *models.Transaction
	err := s.store.Transact(ctx, func(tx Store) error {
		account, err := tx.AccountForUpdate(ctx, userID, in.AccountID)
		if err != nil {
			return err
		}
		if !account.IsActive {
			return apperr.BadRequest("account %q is inactive", account.Name)
		}

		if in.CategoryID != nil {
			category, err := s.visibleCategory(ctx, tx, userID, *in.CategoryID)
			if err != nil {
				return err
			}
			if category.Type != in.Type {
				return apperr.BadRequest("category type (%s) does not match transaction type (%s)", category.Type, in.Type)
			}
		}

		var newBalance decimal.Decimal
		switch in.Type {
		case models.TransactionIncome:
			newBalance = account.CurrentBalance.Add(in.Amount)
		case models.TransactionExpense:
			if account.CurrentBalance.LessThan(in.Amount) {
				return apperr.InsufficientBalance(
					"insufficient balance in account %q: available %s, required %s",
					account.Name, account.CurrentBalance, in.Amount)
			}
			newBalance = account.CurrentBalance.Sub(in.Amount)
		}

		status := in.Status
		if status == "" {
			status = models.StatusCompleted
		}
		date := in.TransactionDate
		if date.IsZero() {
			date = time.Now()
		}

		t := &models.Transaction{
			ID:              uuid.New(),
			UserID:          userID,
			AccountID:       account.ID,
			CategoryID:      in.CategoryID,
			Type:            in.Type,
			Amount:          in.Amount,
			Currency:        account.Currency,
			TransactionDate: date,
			Description:     in.Description,
			Note:            in.Note,
			Payee:           in.Payee,
			Status:          status,
		}

		if err := tx.SetAccountBalance(ctx, account.ID, newBalance); err != nil {
			return err
		}
		if err := tx.InsertTransaction(ctx, t); err != nil {
			return err
		}
		if len(in.Tags) > 0 {
			t.Tags, err = s.applyTags(ctx, tx, userID, t.ID, in.Tags)
			if err != nil {
				return err
			}
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Transaction created: %s (%s %s %s)", created.ID, created.Type, created.Amount, created.Currency)
	s.publish(ctx, events.ActionCreated, created)
	return created, nil
}

// Transfer debits the source account by the raw amount and credits the
// destination by the converted amount, recording both on a single TRANSFER
// row. Both account rows are locked in a deterministic order for the duration
// of the unit.
func (s *TransactionService) Transfer(ctx context.Context, userID uuid.UUID, in TransferInput) (*models.Transaction, error) {
	if in.FromAccountID == in.ToAccountID {
		return nil, apperr.BadRequest("cannot transfer to the same account")
	}
	if !in.Amount.IsPositive() {
		return nil, apperr.BadRequest("transfer amount must be greater than zero")
	}
	if in.ExchangeRate != nil && !in.ExchangeRate.IsPositive() {
		return nil, apperr.BadRequest("exchange rate must be greater than zero")
	}

	var created *models.Transaction
	err := s.store.Transact(ctx, func(tx Store) error {
		from, to, err := lockAccountPair(ctx, tx, userID, in.FromAccountID, in.ToAccountID)
		if err != nil {
			return err
		}

		if from.CurrentBalance.LessThan(in.Amount) {
			return apperr.InsufficientBalance(
				"insufficient balance in account %q: available %s, required %s",
				from.Name, from.CurrentBalance, in.Amount)
		}

		rate := decimal.NewFromInt(1)
		if from.Currency != to.Currency {
			if in.ExchangeRate == nil {
				return apperr.BadRequest("exchange rate is required for transfers between different currencies")
			}
			rate = *in.ExchangeRate
		}
		converted := in.Amount.Mul(rate).Round(2)

		date := in.TransactionDate
		if date.IsZero() {
			date = time.Now()
		}

		t := &models.Transaction{
			ID:              uuid.New(),
			UserID:          userID,
			AccountID:       from.ID,
			ToAccountID:     &to.ID,
			Type:            models.TransactionTransfer,
			Amount:          in.Amount,
			Currency:        from.Currency,
			ExchangeRate:    &rate,
			ConvertedAmount: &converted,
			TransactionDate: date,
			Description:     in.Description,
			Note:            in.Note,
			Status:          models.StatusCompleted,
		}

		if err := tx.SetAccountBalance(ctx, from.ID, from.CurrentBalance.Sub(in.Amount)); err != nil {
			return err
		}
		if err := tx.SetAccountBalance(ctx, to.ID, to.CurrentBalance.Add(converted)); err != nil {
			return err
		}
		if err := tx.InsertTransaction(ctx, t); err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Transfer completed: %s (%s %s -> %s)", created.ID, created.Amount, created.AccountID, created.ToAccountID)
	s.publish(ctx, events.ActionTransferred, created)
	return created, nil
}

// Update modifies an INCOME or EXPENSE transaction in place. On an amount
// change the old effect is reverted and the new one applied as one unit, with
// sufficiency re-checked against the reverted balance. Transfers are
// immutable; delete and recreate instead.
func (s *TransactionService) Update(ctx context.Context, userID, transactionID uuid.UUID, in UpdateTransactionInput) (*models.Transaction, error) {
	if in.Amount != nil && !in.Amount.IsPositive() {
		return nil, apperr.BadRequest("amount must be greater than zero")
	}

	var updated *models.Transaction
	err := s.store.Transact(ctx, func(tx Store) error {
		t, err := s.ownedTransaction(ctx, tx, userID, transactionID)
		if err != nil {
			return err
		}
		if t.Type == models.TransactionTransfer {
			return apperr.BadRequest("cannot update transfer transactions; delete and create a new one instead")
		}

		account, err := tx.AccountForUpdate(ctx, userID, t.AccountID)
		if err != nil {
			return err
		}

		if in.Amount != nil {
			balance := account.CurrentBalance
			switch t.Type {
			case models.TransactionIncome:
				balance = balance.Sub(t.Amount).Add(*in.Amount)
			case models.TransactionExpense:
				balance = balance.Add(t.Amount)
				if balance.LessThan(*in.Amount) {
					return apperr.InsufficientBalance("insufficient balance for updated amount")
				}
				balance = balance.Sub(*in.Amount)
			}
			t.Amount = *in.Amount
			if err := tx.SetAccountBalance(ctx, account.ID, balance); err != nil {
				return err
			}
		}

		if in.CategoryID != nil {
			category, err := s.visibleCategory(ctx, tx, userID, *in.CategoryID)
			if err != nil {
				return err
			}
			if category.Type != t.Type {
				return apperr.BadRequest("category type (%s) does not match transaction type (%s)", category.Type, t.Type)
			}
			t.CategoryID = in.CategoryID
		}
		if in.TransactionDate != nil {
			t.TransactionDate = *in.TransactionDate
		}
		if in.Description != nil {
			t.Description = *in.Description
		}
		if in.Note != nil {
			t.Note = *in.Note
		}
		if in.Payee != nil {
			t.Payee = *in.Payee
		}
		if in.Status != nil {
			t.Status = *in.Status
		}

		t.UpdatedAt = time.Now()
		if err := tx.UpdateTransaction(ctx, t); err != nil {
			return err
		}
		if in.Tags != nil {
			t.Tags, err = s.applyTags(ctx, tx, userID, t.ID, *in.Tags)
		} else {
			t.Tags, err = tx.TransactionTags(ctx, t.ID)
		}
		if err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Transaction updated: %s", updated.ID)
	return updated, nil
}

// Delete reverses the transaction's original balance effect and removes the
// record. Transfer reversal uses the stored converted amount for the
// destination leg, never a recomputed rate.
func (s *TransactionService) Delete(ctx context.Context, userID, transactionID uuid.UUID) error {
	var deleted *models.Transaction
	err := s.store.Transact(ctx, func(tx Store) error {
		t, err := s.ownedTransaction(ctx, tx, userID, transactionID)
		if err != nil {
			return err
		}

		switch t.Type {
		case models.TransactionIncome, models.TransactionExpense:
			account, err := tx.AccountForUpdate(ctx, userID, t.AccountID)
			if err != nil {
				return err
			}
			balance := account.CurrentBalance
			if t.Type == models.TransactionIncome {
				balance = balance.Sub(t.Amount)
			} else {
				balance = balance.Add(t.Amount)
			}
			if err := tx.SetAccountBalance(ctx, account.ID, balance); err != nil {
				return err
			}
		case models.TransactionTransfer:
			from, to, err := lockAccountPair(ctx, tx, userID, t.AccountID, *t.ToAccountID)
			if err != nil {
				return err
			}
			credited := t.Amount
			if t.ConvertedAmount != nil {
				credited = *t.ConvertedAmount
			}
			if err := tx.SetAccountBalance(ctx, from.ID, from.CurrentBalance.Add(t.Amount)); err != nil {
				return err
			}
			if err := tx.SetAccountBalance(ctx, to.ID, to.CurrentBalance.Sub(credited)); err != nil {
				return err
			}
		}

		if err := tx.DeleteTransaction(ctx, t.ID); err != nil {
			return err
		}
		deleted = t
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Infof("Transaction deleted: %s", deleted.ID)
	s.publish(ctx, events.ActionDeleted, deleted)
	return nil
}

// Get returns a transaction owned by the caller, tags included.
func (s *TransactionService) Get(ctx context.Context, userID, transactionID uuid.UUID) (*models.Transaction, error) {
	t, err := s.ownedTransaction(ctx, s.store, userID, transactionID)
	if err != nil {
		return nil, err
	}
	if t.Tags, err = s.store.TransactionTags(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

// defaultPageSize caps API listings when the caller does not pass a limit.
const defaultPageSize = 50

// List returns the caller's transactions matching the filter.
func (s *TransactionService) List(ctx context.Context, userID uuid.UUID, filter TransactionFilter) ([]models.Transaction, error) {
	if filter.AccountID != nil {
		if _, err := s.store.AccountByID(ctx, userID, *filter.AccountID); err != nil {
			return nil, err
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	transactions, err := s.store.TransactionsByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	for i := range transactions {
		if transactions[i].Tags, err = s.store.TransactionTags(ctx, transactions[i].ID); err != nil {
			return nil, err
		}
	}
	return transactions, nil
}

// ownedTransaction loads a transaction and verifies ownership. Transactions
// belonging to other users surface as NotFound, not Unauthorized.
func (s *TransactionService) ownedTransaction(ctx context.Context, store Store, userID, id uuid.UUID) (*models.Transaction, error) {
	t, err := store.TransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, apperr.NotFound("transaction not found with id: %s", id)
	}
	return t, nil
}

// applyTags normalizes the requested tag names, resolves each to the caller's
// tag row (creating on first use), and replaces the transaction's tag set.
func (s *TransactionService) applyTags(ctx context.Context, tx Store, userID, transactionID uuid.UUID, names []string) ([]models.Tag, error) {
	var tags []models.Tag
	ids := make([]uuid.UUID, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tag, err := tx.GetOrCreateTag(ctx, userID, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
		ids = append(ids, tag.ID)
	}
	if err := tx.SetTransactionTags(ctx, transactionID, ids); err != nil {
		return nil, err
	}
	return tags, nil
}

// visibleCategory loads a category the caller may use: system rows or rows
// the caller owns.
func (s *TransactionService) visibleCategory(ctx context.Context, store Store, userID, id uuid.UUID) (*models.Category, error) {
	category, err := store.CategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !category.IsSystem && (category.UserID == nil || *category.UserID != userID) {
		return nil, apperr.NotFound("category not found with id: %s", id)
	}
	return category, nil
}

func (s *TransactionService) publish(ctx context.Context, action string, t *models.Transaction) {
	if err := s.events.PublishTransactionEvent(ctx, events.TransactionEvent{
		Action:        action,
		TransactionID: t.ID,
		UserID:        t.UserID,
		Type:          string(t.Type),
		Amount:        t.Amount.String(),
		Currency:      t.Currency,
		OccurredAt:    time.Now(),
	}); err != nil {
		s.log.Warnf("Failed to publish transaction event: %v", err)
	}
}

// lockAccountPair locks two of the caller's accounts inside the current store
// transaction, always acquiring the locks in a stable ID order so concurrent
// transfers between the same pair cannot deadlock.
func lockAccountPair(ctx context.Context, tx Store, userID, firstID, secondID uuid.UUID) (*models.Account, *models.Account, error) {
	lo, hi := firstID, secondID
	if hi.String() < lo.String() {
		lo, hi = hi, lo
	}
	a, err := tx.AccountForUpdate(ctx, userID, lo)
	if err != nil {
		return nil, nil, err
	}
	b, err := tx.AccountForUpdate(ctx, userID, hi)
	if err != nil {
		return nil, nil, err
	}
	if a.ID == firstID {
		return a, b, nil
	}
	return b, a, nil
}
