package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/financewallet/wallet/internal/models"
)

// TransactionFilter narrows transaction listings. Zero values mean "no
// constraint": a non-positive Limit returns every matching row. The dashboard
// and budget aggregations rely on that; only the API list path pages.
type TransactionFilter struct {
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	Type       models.TransactionType
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}

// Store is the persistence collaborator for the service layer. The postgres
// implementation lives in internal/repository; tests use an in-memory fake.
//
// Transact runs fn against a store bound to a single database transaction.
// Row reads via the *ForUpdate methods lock the row for the duration of that
// transaction, serializing concurrent balance mutation per account.
type Store interface {
	Transact(ctx context.Context, fn func(Store) error) error

	// Users
	CreateUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateUserLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	// Accounts
	CreateAccount(ctx context.Context, a *models.Account) error
	AccountByID(ctx context.Context, userID, id uuid.UUID) (*models.Account, error)
	AccountForUpdate(ctx context.Context, userID, id uuid.UUID) (*models.Account, error)
	AccountsByUser(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.Account, error)
	UpdateAccount(ctx context.Context, a *models.Account) error
	SetAccountBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error

	// Categories
	CreateCategory(ctx context.Context, c *models.Category) error
	CategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	CategoriesForUser(ctx context.Context, userID uuid.UUID) ([]models.Category, error)
	UpdateCategory(ctx context.Context, c *models.Category) error

	// Transactions
	InsertTransaction(ctx context.Context, t *models.Transaction) error
	TransactionByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	TransactionsByUser(ctx context.Context, userID uuid.UUID, filter TransactionFilter) ([]models.Transaction, error)
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	// Tags
	GetOrCreateTag(ctx context.Context, userID uuid.UUID, name string) (*models.Tag, error)
	SetTransactionTags(ctx context.Context, transactionID uuid.UUID, tagIDs []uuid.UUID) error
	TransactionTags(ctx context.Context, transactionID uuid.UUID) ([]models.Tag, error)

	// Recurring templates
	CreateRecurring(ctx context.Context, r *models.RecurringTransaction) error
	RecurringByID(ctx context.Context, id uuid.UUID) (*models.RecurringTransaction, error)
	RecurringByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.RecurringTransaction, error)
	UpdateRecurring(ctx context.Context, r *models.RecurringTransaction) error
	DeleteRecurring(ctx context.Context, id uuid.UUID) error
	DueRecurring(ctx context.Context, asOf time.Time) ([]models.RecurringTransaction, error)

	// Currencies and exchange rates
	Currencies(ctx context.Context) ([]models.Currency, error)
	CurrencyByCode(ctx context.Context, code string) (*models.Currency, error)
	UpsertExchangeRate(ctx context.Context, r *models.ExchangeRate) error
	LatestRate(ctx context.Context, from, to string, asOf time.Time) (*models.ExchangeRate, error)

	// Budgets
	CreateBudget(ctx context.Context, b *models.Budget) error
	BudgetByID(ctx context.Context, userID, id uuid.UUID) (*models.Budget, error)
	BudgetsByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Budget, error)
	ActiveBudgetsForDate(ctx context.Context, asOf time.Time) ([]models.Budget, error)
	UpdateBudget(ctx context.Context, b *models.Budget) error
	DeleteBudget(ctx context.Context, id uuid.UUID) error

	// Goals
	CreateGoal(ctx context.Context, g *models.Goal) error
	GoalByID(ctx context.Context, userID, id uuid.UUID) (*models.Goal, error)
	GoalsByUser(ctx context.Context, userID uuid.UUID) ([]models.Goal, error)
	UpdateGoal(ctx context.Context, g *models.Goal) error
	DeleteGoal(ctx context.Context, id uuid.UUID) error

	// Preferences
	PreferenceByUser(ctx context.Context, userID uuid.UUID) (*models.UserPreference, error)
	SavePreference(ctx context.Context, p *models.UserPreference) error
}
