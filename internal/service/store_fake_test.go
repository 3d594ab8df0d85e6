package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/financewallet/wallet/internal/apperr"
	"github.com/financewallet/wallet/internal/models"
)

// fakeStore is an in-memory Store for service tests. Reads return copies so
// callers cannot mutate stored state without going through a write method.
type fakeStore struct {
	users       map[uuid.UUID]models.User
	accounts    map[uuid.UUID]models.Account
	categories  map[uuid.UUID]models.Category
	txs         map[uuid.UUID]models.Transaction
	tags        map[uuid.UUID]models.Tag
	txTags      map[uuid.UUID][]uuid.UUID
	recurring   map[uuid.UUID]models.RecurringTransaction
	currencies  map[string]models.Currency
	rates       []models.ExchangeRate
	budgets     map[uuid.UUID]models.Budget
	goals       map[uuid.UUID]models.Goal
	preferences map[uuid.UUID]models.UserPreference
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      map[uuid.UUID]models.User{},
		accounts:   map[uuid.UUID]models.Account{},
		categories: map[uuid.UUID]models.Category{},
		txs:        map[uuid.UUID]models.Transaction{},
		tags:       map[uuid.UUID]models.Tag{},
		txTags:     map[uuid.UUID][]uuid.UUID{},
		recurring:  map[uuid.UUID]models.RecurringTransaction{},
		currencies: map[string]models.Currency{
			"USD": {Code: "USD", Name: "US Dollar", Symbol: "$", DecimalPlaces: 2, IsActive: true},
			"EUR": {Code: "EUR", Name: "Euro", Symbol: "€", DecimalPlaces: 2, IsActive: true},
			"GBP": {Code: "GBP", Name: "Pound Sterling", Symbol: "£", DecimalPlaces: 2, IsActive: true},
		},
		budgets:     map[uuid.UUID]models.Budget{},
		goals:       map[uuid.UUID]models.Goal{},
		preferences: map[uuid.UUID]models.UserPreference{},
	}
}

func (f *fakeStore) Transact(ctx context.Context, fn func(Store) error) error {
	return fn(f)
}

// Users

func (f *fakeStore) CreateUser(ctx context.Context, u *models.User) error {
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = *u
	return nil
}

func (f *fakeStore) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found with id: %s", id)
	}
	return &u, nil
}

func (f *fakeStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user not found with email: %s", email)
}

func (f *fakeStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.UserByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpdateUserLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user %s", id)
	}
	u.LastLoginAt = &at
	f.users[id] = u
	return nil
}

// Accounts

func (f *fakeStore) CreateAccount(ctx context.Context, a *models.Account) error {
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	f.accounts[a.ID] = *a
	return nil
}

func (f *fakeStore) AccountByID(ctx context.Context, userID, id uuid.UUID) (*models.Account, error) {
	a, ok := f.accounts[id]
	if !ok || a.UserID != userID {
		return nil, apperr.NotFound("account not found with id: %s", id)
	}
	return &a, nil
}

func (f *fakeStore) AccountForUpdate(ctx context.Context, userID, id uuid.UUID) (*models.Account, error) {
	return f.AccountByID(ctx, userID, id)
}

func (f *fakeStore) AccountsByUser(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]models.Account, error) {
	var out []models.Account
	for _, a := range f.accounts {
		if a.UserID != userID {
			continue
		}
		if !includeInactive && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) UpdateAccount(ctx context.Context, a *models.Account) error {
	if _, ok := f.accounts[a.ID]; !ok {
		return apperr.NotFound("account %s", a.ID)
	}
	f.accounts[a.ID] = *a
	return nil
}

func (f *fakeStore) SetAccountBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	a, ok := f.accounts[id]
	if !ok {
		return apperr.NotFound("account %s", id)
	}
	a.CurrentBalance = balance
	f.accounts[id] = a
	return nil
}

// Categories

func (f *fakeStore) CreateCategory(ctx context.Context, c *models.Category) error {
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	f.categories[c.ID] = *c
	return nil
}

func (f *fakeStore) CategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, apperr.NotFound("category not found with id: %s", id)
	}
	return &c, nil
}

func (f *fakeStore) CategoriesForUser(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.categories {
		if c.IsActive && (c.IsSystem || (c.UserID != nil && *c.UserID == userID)) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) UpdateCategory(ctx context.Context, c *models.Category) error {
	if _, ok := f.categories[c.ID]; !ok {
		return apperr.NotFound("category %s", c.ID)
	}
	f.categories[c.ID] = *c
	return nil
}

// Transactions

func (f *fakeStore) InsertTransaction(ctx context.Context, t *models.Transaction) error {
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	f.txs[t.ID] = *t
	return nil
}

func (f *fakeStore) TransactionByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	t, ok := f.txs[id]
	if !ok {
		return nil, apperr.NotFound("transaction not found with id: %s", id)
	}
	return &t, nil
}

func (f *fakeStore) TransactionsByUser(ctx context.Context, userID uuid.UUID, filter TransactionFilter) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, t := range f.txs {
		if t.UserID != userID {
			continue
		}
		if filter.AccountID != nil && t.AccountID != *filter.AccountID &&
			(t.ToAccountID == nil || *t.ToAccountID != *filter.AccountID) {
			continue
		}
		if filter.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.StartDate != nil && t.TransactionDate.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && t.TransactionDate.After(*filter.EndDate) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TransactionDate.After(out[j].TransactionDate) })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeStore) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	if _, ok := f.txs[t.ID]; !ok {
		return apperr.NotFound("transaction %s", t.ID)
	}
	f.txs[t.ID] = *t
	return nil
}

func (f *fakeStore) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.txs[id]; !ok {
		return apperr.NotFound("transaction %s", id)
	}
	delete(f.txs, id)
	delete(f.txTags, id)
	return nil
}

// Tags

func (f *fakeStore) GetOrCreateTag(ctx context.Context, userID uuid.UUID, name string) (*models.Tag, error) {
	for _, tag := range f.tags {
		if tag.UserID == userID && tag.Name == name {
			tag := tag
			return &tag, nil
		}
	}
	tag := models.Tag{ID: uuid.New(), UserID: userID, Name: name, CreatedAt: time.Now()}
	f.tags[tag.ID] = tag
	return &tag, nil
}

func (f *fakeStore) SetTransactionTags(ctx context.Context, transactionID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		delete(f.txTags, transactionID)
		return nil
	}
	f.txTags[transactionID] = append([]uuid.UUID(nil), tagIDs...)
	return nil
}

func (f *fakeStore) TransactionTags(ctx context.Context, transactionID uuid.UUID) ([]models.Tag, error) {
	var out []models.Tag
	for _, id := range f.txTags[transactionID] {
		if tag, ok := f.tags[id]; ok {
			out = append(out, tag)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Recurring templates

func (f *fakeStore) CreateRecurring(ctx context.Context, r *models.RecurringTransaction) error {
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	f.recurring[r.ID] = *r
	return nil
}

func (f *fakeStore) RecurringByID(ctx context.Context, id uuid.UUID) (*models.RecurringTransaction, error) {
	r, ok := f.recurring[id]
	if !ok {
		return nil, apperr.NotFound("recurring transaction not found with id: %s", id)
	}
	return &r, nil
}

func (f *fakeStore) RecurringByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.RecurringTransaction, error) {
	var out []models.RecurringTransaction
	for _, r := range f.recurring {
		if r.UserID != userID {
			continue
		}
		if activeOnly && !r.IsActive {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) UpdateRecurring(ctx context.Context, r *models.RecurringTransaction) error {
	if _, ok := f.recurring[r.ID]; !ok {
		return apperr.NotFound("recurring transaction %s", r.ID)
	}
	f.recurring[r.ID] = *r
	return nil
}

func (f *fakeStore) DeleteRecurring(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.recurring[id]; !ok {
		return apperr.NotFound("recurring transaction %s", id)
	}
	delete(f.recurring, id)
	return nil
}

func (f *fakeStore) DueRecurring(ctx context.Context, asOf time.Time) ([]models.RecurringTransaction, error) {
	var out []models.RecurringTransaction
	for _, r := range f.recurring {
		if r.IsActive && !r.NextOccurrenceDate.After(asOf) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextOccurrenceDate.Before(out[j].NextOccurrenceDate) })
	return out, nil
}

// Currencies and exchange rates

func (f *fakeStore) Currencies(ctx context.Context) ([]models.Currency, error) {
	var out []models.Currency
	for _, c := range f.currencies {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f *fakeStore) CurrencyByCode(ctx context.Context, code string) (*models.Currency, error) {
	c, ok := f.currencies[code]
	if !ok {
		return nil, apperr.NotFound("currency not found: %s", code)
	}
	return &c, nil
}

func (f *fakeStore) UpsertExchangeRate(ctx context.Context, r *models.ExchangeRate) error {
	for i, existing := range f.rates {
		if existing.FromCurrency == r.FromCurrency && existing.ToCurrency == r.ToCurrency &&
			existing.EffectiveDate.Equal(r.EffectiveDate) {
			f.rates[i] = *r
			return nil
		}
	}
	r.CreatedAt = time.Now()
	f.rates = append(f.rates, *r)
	return nil
}

func (f *fakeStore) LatestRate(ctx context.Context, from, to string, asOf time.Time) (*models.ExchangeRate, error) {
	var best *models.ExchangeRate
	for i := range f.rates {
		r := f.rates[i]
		if r.FromCurrency != from || r.ToCurrency != to || r.EffectiveDate.After(asOf) {
			continue
		}
		if best == nil || r.EffectiveDate.After(best.EffectiveDate) {
			best = &r
		}
	}
	if best == nil {
		return nil, apperr.NotFound("no exchange rate for %s/%s", from, to)
	}
	return best, nil
}

// Budgets

func (f *fakeStore) CreateBudget(ctx context.Context, b *models.Budget) error {
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	f.budgets[b.ID] = *b
	return nil
}

func (f *fakeStore) BudgetByID(ctx context.Context, userID, id uuid.UUID) (*models.Budget, error) {
	b, ok := f.budgets[id]
	if !ok || b.UserID != userID {
		return nil, apperr.NotFound("budget not found with id: %s", id)
	}
	return &b, nil
}

func (f *fakeStore) BudgetsByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Budget, error) {
	var out []models.Budget
	for _, b := range f.budgets {
		if b.UserID != userID {
			continue
		}
		if activeOnly && !b.IsActive {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (f *fakeStore) ActiveBudgetsForDate(ctx context.Context, asOf time.Time) ([]models.Budget, error) {
	var out []models.Budget
	for _, b := range f.budgets {
		if b.IsActive && !b.StartDate.After(asOf) && !b.EndDate.Before(asOf) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateBudget(ctx context.Context, b *models.Budget) error {
	if _, ok := f.budgets[b.ID]; !ok {
		return apperr.NotFound("budget %s", b.ID)
	}
	f.budgets[b.ID] = *b
	return nil
}

func (f *fakeStore) DeleteBudget(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.budgets[id]; !ok {
		return apperr.NotFound("budget %s", id)
	}
	delete(f.budgets, id)
	return nil
}

// Goals

func (f *fakeStore) CreateGoal(ctx context.Context, g *models.Goal) error {
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt
	f.goals[g.ID] = *g
	return nil
}

func (f *fakeStore) GoalByID(ctx context.Context, userID, id uuid.UUID) (*models.Goal, error) {
	g, ok := f.goals[id]
	if !ok || g.UserID != userID {
		return nil, apperr.NotFound("goal not found with id: %s", id)
	}
	return &g, nil
}

func (f *fakeStore) GoalsByUser(ctx context.Context, userID uuid.UUID) ([]models.Goal, error) {
	var out []models.Goal
	for _, g := range f.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) UpdateGoal(ctx context.Context, g *models.Goal) error {
	if _, ok := f.goals[g.ID]; !ok {
		return apperr.NotFound("goal %s", g.ID)
	}
	f.goals[g.ID] = *g
	return nil
}

func (f *fakeStore) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.goals[id]; !ok {
		return apperr.NotFound("goal %s", id)
	}
	delete(f.goals, id)
	return nil
}

// Preferences

func (f *fakeStore) PreferenceByUser(ctx context.Context, userID uuid.UUID) (*models.UserPreference, error) {
	p, ok := f.preferences[userID]
	if !ok {
		return nil, apperr.NotFound("preferences not found for user: %s", userID)
	}
	return &p, nil
}

func (f *fakeStore) SavePreference(ctx context.Context, p *models.UserPreference) error {
	f.preferences[p.UserID] = *p
	return nil
}

var _ Store = (*fakeStore)(nil)
