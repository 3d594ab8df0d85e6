package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/models"
)

// AccountService manages account lifecycle. Balances are mutated only by the
// transaction engine; this service never touches CurrentBalance after
// creation.
type AccountService struct {
	store    Store
	log      *logrus.Logger
	currency *CurrencyService
	prefs    *PreferenceService
}

// NewAccountService initializes a new account service
func NewAccountService(store Store, log *logrus.Logger, currency *CurrencyService, prefs *PreferenceService) *AccountService {
	return &AccountService{store: store, log: log, currency: currency, prefs: prefs}
}

// CreateAccountInput holds parameters for a new account.
type CreateAccountInput struct {
	Name              string
	Description       string
	AccountType       models.AccountType
	Currency          string
	InitialBalance    decimal.Decimal
	IsIncludedInTotal bool
}

// UpdateAccountInput carries optional field updates; nil means unchanged.
type UpdateAccountInput struct {
	Name              *string
	Description       *string
	AccountType       *models.AccountType
	IsIncludedInTotal *bool
	IsActive          *bool
}

// Create opens an account with CurrentBalance equal to InitialBalance.
func (s *AccountService) Create(ctx context.Context, userID uuid.UUID, in CreateAccountInput) (*models.Account, error) {
	if in.Name == "" {
		return nil, apperr.BadRequest("account name is required")
	}
	if !in.AccountType.Valid() {
		return nil, apperr.BadRequest("invalid account type: %s", in.AccountType)
	}
	if _, err := s.store.CurrencyByCode(ctx, in.Currency); err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:                uuid.New(),
		UserID:            userID,
		AccountType:       in.AccountType,
		Currency:          in.Currency,
		Name:              in.Name,
		Description:       in.Description,
		InitialBalance:    in.InitialBalance,
		CurrentBalance:    in.InitialBalance,
		IsIncludedInTotal: in.IsIncludedInTotal,
		IsActive:          true,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.log.Infof("Account created: %s (%s, %s)", account.Name, account.ID, account.Currency)
	return account, nil
}

// Get returns one of the caller's accounts.
func (s *AccountService) Get(ctx context.Context, userID, accountID uuid.UUID) (*models.Account, error) {
	return s.store.AccountByID(ctx, userID, accountID)
}

// List returns the caller's accounts.
func (s *AccountService) List(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.Account, error) {
	return s.store.AccountsByUser(ctx, userID, includeInactive)
}

// Update modifies account metadata. Balance fields are untouchable here.
func (s *AccountService) Update(ctx context.Context, userID, accountID uuid.UUID, in UpdateAccountInput) (*models.Account, error) {
	account, err := s.store.AccountByID(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		account.Name = *in.Name
	}
	if in.Description != nil {
		account.Description = *in.Description
	}
	if in.AccountType != nil {
		if !in.AccountType.Valid() {
			return nil, apperr.BadRequest("invalid account type: %s", *in.AccountType)
		}
		account.AccountType = *in.AccountType
	}
	if in.IsIncludedInTotal != nil {
		account.IsIncludedInTotal = *in.IsIncludedInTotal
	}
	if in.IsActive != nil {
		account.IsActive = *in.IsActive
	}
	account.UpdatedAt = time.Now()

	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	s.log.Infof("Account updated: %s (%s)", account.Name, account.ID)
	return account, nil
}

// Delete soft-deletes an account. Accounts with a nonzero balance are
// rejected; the transaction history must be unwound first.
func (s *AccountService) Delete(ctx context.Context, userID, accountID uuid.UUID) error {
	account, err := s.store.AccountByID(ctx, userID, accountID)
	if err != nil {
		return err
	}
	if !account.CurrentBalance.IsZero() {
		return apperr.BadRequest("cannot delete account with non-zero balance: current balance %s %s", account.CurrentBalance, account.Currency)
	}

	account.IsActive = false
	account.UpdatedAt = time.Now()
	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return err
	}
	s.log.Infof("Account deleted (soft): %s (%s)", account.Name, account.ID)
	return nil
}

// Summary aggregates the caller's active accounts: total balance in the
// default currency and per-currency grouping of included accounts.
func (s *AccountService) Summary(ctx context.Context, userID uuid.UUID) (*models.AccountSummary, error) {
	defaultCurrency, err := s.prefs.DefaultCurrency(ctx, userID)
	if err != nil {
		return nil, err
	}

	accounts, err := s.store.AccountsByUser(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	byCurrency := make(map[string]*models.CurrencyBalance)
	for _, a := range accounts {
		if !a.IsIncludedInTotal {
			continue
		}
		converted, err := s.currency.ConvertToDefault(ctx, a.CurrentBalance, a.Currency, defaultCurrency, today())
		if err != nil {
			return nil, err
		}
		total = total.Add(converted)

		cb, ok := byCurrency[a.Currency]
		if !ok {
			cb = &models.CurrencyBalance{Currency: a.Currency}
			byCurrency[a.Currency] = cb
		}
		cb.Balance = cb.Balance.Add(a.CurrentBalance)
		cb.AccountCount++
	}

	balances := make([]models.CurrencyBalance, 0, len(byCurrency))
	for _, cb := range byCurrency {
		balances = append(balances, *cb)
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Balance.GreaterThan(balances[j].Balance)
	})

	return &models.AccountSummary{
		TotalAccounts:     len(accounts),
		TotalBalance:      total,
		DefaultCurrency:   defaultCurrency,
		BalanceByCurrency: balances,
		Accounts:          accounts,
	}, nil
}
