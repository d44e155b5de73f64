package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"ledger/internal/core"
	"ledger/internal/derive"
	"ledger/internal/log"
	"ledger/internal/store"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrCategoryExists = errors.New("category already exists")
)

// maxSuggestDistance is the edit distance under which a new category name is
// reported as a likely typo of an existing one.
const maxSuggestDistance = 2

type (
	// TransactionInput is a transaction as entered by a user. Kind, Amount
	// and Date are parsed by the service.
	TransactionInput struct {
		Kind        string
		Amount      string
		Category    string
		Date        string // YYYY-MM-DD or RFC 3339; empty means today
		Description string
		Recurring   bool
	}

	// BudgetInput is a budget as entered by a user.
	BudgetInput struct {
		Category string
		Limit    string
	}

	// Summary bundles the derived views shown on the dashboard.
	Summary struct {
		Totals    core.Totals           `json:"totals"`
		Breakdown []core.CategoryAmount `json:"expenseByCategory"`
		Monthly   []core.MonthSummary   `json:"monthly"`
		Budgets   []core.BudgetStatus   `json:"budgets"`
	}
)

// LedgerService turns user intents into store actions
type LedgerService struct {
	store  *store.Store
	logger *log.Logger
	events *log.StructuredLogger
	now    func() time.Time
	newID  func() string
}

// Option configures a LedgerService.
type Option func(*LedgerService)

func WithLogger(l *log.Logger) Option {
	return func(s *LedgerService) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentLedger)
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *LedgerService) { s.newID = newID }
}

func NewLedgerService(st *store.Store, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:  st,
		logger: log.Discard(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.events = log.NewStructuredLogger(s.logger)
	return s
}

// Snapshot returns the current state.
func (s *LedgerService) Snapshot() core.AppState {
	return s.store.State()
}

// Now returns the service clock's current time.
func (s *LedgerService) Now() time.Time {
	return s.now()
}

// AddTransaction validates in and records a new transaction. A category
// not seen before is added to the category set.
func (s *LedgerService) AddTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	kind, err := core.ParseKind(in.Kind)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := s.parseDate(in.Date)
	if err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		ID:          s.newID(),
		Kind:        kind,
		Amount:      amount,
		Category:    strings.TrimSpace(in.Category),
		OccurredAt:  date,
		Description: strings.TrimSpace(in.Description),
		Recurring:   in.Recurring,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.warnIfSimilar(ctx, t.Category)
	if out := s.store.Dispatch(store.AddTransaction{Transaction: t}); !out.Changed() {
		return core.Transaction{}, fmt.Errorf("add transaction: %s", out.Status)
	}

	s.events.LogTransactionCreated(ctx, t.ID, string(t.Kind), t.Amount.Format(), t.Category)
	return t, nil
}

// DeleteTransaction removes the transaction with id.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if out := s.store.Dispatch(store.DeleteTransaction{ID: id}); !out.Changed() {
		return fmt.Errorf("transaction %q: %w", id, ErrNotFound)
	}
	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldID, id)
	return nil
}

// ListTransactions returns the transactions matching f, newest first.
func (s *LedgerService) ListTransactions(f derive.TransactionFilter) []core.Transaction {
	return derive.Filter(s.store.State().Transactions, f)
}

// AddBudget creates a budget. It fails with store.ErrBudgetExists when the
// category already has one.
func (s *LedgerService) AddBudget(ctx context.Context, in BudgetInput) (core.Budget, error) {
	limit, err := core.ParseAmount(in.Limit)
	if err != nil {
		return core.Budget{}, err
	}
	b := core.Budget{
		ID:       s.newID(),
		Category: strings.TrimSpace(in.Category),
		Limit:    limit,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	s.warnIfSimilar(ctx, b.Category)
	out := s.store.Dispatch(store.AddBudget{Budget: b})
	switch out.Status {
	case store.Applied:
		s.events.LogBudgetChanged(ctx, log.OpCreate, b.ID, b.Category, b.Limit.Format())
		return b, nil
	case store.Rejected:
		return core.Budget{}, out.Err
	default:
		return core.Budget{}, fmt.Errorf("add budget: %s", out.Status)
	}
}

// UpdateBudgetLimit changes the limit of the budget with id.
func (s *LedgerService) UpdateBudgetLimit(ctx context.Context, id, limit string) (core.Budget, error) {
	l, err := core.ParseAmount(limit)
	if err != nil {
		return core.Budget{}, err
	}
	if out := s.store.Dispatch(store.UpdateBudget{Budget: core.Budget{ID: id, Limit: l}}); !out.Changed() {
		return core.Budget{}, fmt.Errorf("budget %q: %w", id, ErrNotFound)
	}

	b, _ := s.store.State().FindBudget(id)
	s.events.LogBudgetChanged(ctx, log.OpUpdate, b.ID, b.Category, b.Limit.Format())
	return b, nil
}

// DeleteBudget removes the budget with id.
func (s *LedgerService) DeleteBudget(ctx context.Context, id string) error {
	if out := s.store.Dispatch(store.DeleteBudget{ID: id}); !out.Changed() {
		return fmt.Errorf("budget %q: %w", id, ErrNotFound)
	}
	s.logger.InfoContext(ctx, "Budget deleted", log.FieldID, id)
	return nil
}

// AddCategory adds name to the category set.
func (s *LedgerService) AddCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyCategory
	}
	if s.store.State().HasCategory(name) {
		return fmt.Errorf("%w: %q", ErrCategoryExists, name)
	}

	s.warnIfSimilar(ctx, name)
	if out := s.store.Dispatch(store.AddCategory{Name: name}); !out.Changed() {
		return fmt.Errorf("%w: %q", ErrCategoryExists, name)
	}
	s.logger.InfoContext(ctx, "Category added", log.FieldCategory, name)
	return nil
}

// Categories returns the category set.
func (s *LedgerService) Categories() []string {
	return s.store.State().Categories
}

// Summary computes the dashboard views at the service clock's now.
func (s *LedgerService) Summary() Summary {
	state := s.store.State()
	return Summary{
		Totals:    derive.Totals(state),
		Breakdown: derive.SortedBreakdown(state),
		Monthly:   derive.MonthlySeries(state),
		Budgets:   derive.BudgetUtilization(state, s.now()),
	}
}

// BudgetStatuses returns every budget with its spending this month.
func (s *LedgerService) BudgetStatuses() []core.BudgetStatus {
	return derive.BudgetUtilization(s.store.State(), s.now())
}

// SimilarCategory returns an existing category that name is probably a typo
// or case variant of. It reports false when name itself is a category.
func (s *LedgerService) SimilarCategory(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	lower := strings.ToLower(name)
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range s.store.State().Categories {
		if c == name {
			return "", false
		}
		if d := levenshtein.ComputeDistance(lower, strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, best != ""
}

func (s *LedgerService) warnIfSimilar(ctx context.Context, name string) {
	if s.store.State().HasCategory(name) {
		return
	}
	if match, ok := s.SimilarCategory(name); ok {
		s.logger.WarnContext(ctx, "New category is close to an existing one",
			log.FieldCategory, name,
			"similar_to", match)
	}
}

func (s *LedgerService) parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		now := s.now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	if d, err := time.Parse(time.DateOnly, v); err == nil {
		return d, nil
	}
	if d, err := time.Parse(time.RFC3339, v); err == nil {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, v)
}
