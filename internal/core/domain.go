package core

import (
	"errors"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// MaxDescriptionLength bounds transaction descriptions.
const MaxDescriptionLength = 200

type (
	// Kind tells income and expense transactions apart.
	Kind string

	Transaction struct {
		ID          string    `json:"id"`
		Kind        Kind      `json:"type"`
		Amount      Money     `json:"amount"`
		Category    string    `json:"category"`
		OccurredAt  time.Time `json:"date"`
		Description string    `json:"description"`
		Recurring   bool      `json:"isRecurring,omitempty"` // informational only
	}

	// Budget is a monthly spending ceiling for one category.
	Budget struct {
		ID       string `json:"id"`
		Category string `json:"category"`
		Limit    Money  `json:"limit"`
	}

	// AppState is the aggregate root held by the store. Values handed out by
	// the store are snapshots and must not be modified in place.
	AppState struct {
		Transactions []Transaction `json:"transactions"`
		Budgets      []Budget      `json:"budgets"`
		Categories   []string      `json:"categories"`
	}
)

var defaultCategories = []string{
	"Food",
	"Travel",
	"Bills",
	"Salary",
	"Freelance",
	"Bonus",
	"Groceries",
	"Entertainment",
	"Utilities",
}

var (
	ErrInvalidKind        = errors.New("invalid transaction type")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyID            = errors.New("empty id")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// DefaultCategories returns a fresh copy of the seeded category list.
func DefaultCategories() []string {
	return slices.Clone(defaultCategories)
}

// IsDefaultCategory reports whether name is one of the seeded categories.
func IsDefaultCategory(name string) bool {
	return slices.Contains(defaultCategories, name)
}

// InitialState is the state before anything has been loaded.
func InitialState() AppState {
	return AppState{
		Transactions: []Transaction{},
		Budgets:      []Budget{},
		Categories:   DefaultCategories(),
	}
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

// ParseKind accepts the wire names case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.OccurredAt.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	return b.Limit.Validate()
}

// HasCategory reports whether name is in the category set.
func (s AppState) HasCategory(name string) bool {
	return slices.Contains(s.Categories, name)
}

// FindTransaction looks a transaction up by id.
func (s AppState) FindTransaction(id string) (Transaction, bool) {
	i := slices.IndexFunc(s.Transactions, func(t Transaction) bool { return t.ID == id })
	if i < 0 {
		return Transaction{}, false
	}
	return s.Transactions[i], true
}

// FindBudget looks a budget up by id.
func (s AppState) FindBudget(id string) (Budget, bool) {
	i := slices.IndexFunc(s.Budgets, func(b Budget) bool { return b.ID == id })
	if i < 0 {
		return Budget{}, false
	}
	return s.Budgets[i], true
}

// BudgetFor returns the budget attached to category, if any.
func (s AppState) BudgetFor(category string) (Budget, bool) {
	i := slices.IndexFunc(s.Budgets, func(b Budget) bool { return b.Category == category })
	if i < 0 {
		return Budget{}, false
	}
	return s.Budgets[i], true
}
