package store

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"ledger/internal/core"
)

// ErrBudgetExists is the policy rejection for a second budget on a category.
var ErrBudgetExists = errors.New("budget for category already exists")

// Status classifies what an action did to the state.
type Status int

const (
	// Unchanged means the action was a no-op: unknown action, missing id,
	// category already present.
	Unchanged Status = iota
	// Applied means a new state was produced.
	Applied
	// Rejected means a policy refused the action. Outcome.Err says why.
	Rejected
)

func (s Status) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Applied:
		return "applied"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome reports the effect of a dispatched action.
type Outcome struct {
	Status Status
	Err    error
}

// Changed reports whether the action produced a new state.
func (o Outcome) Changed() bool {
	return o.Status == Applied
}

var (
	applied   = Outcome{Status: Applied}
	unchanged = Outcome{Status: Unchanged}
)

// Reduce is the pure state transition function. It never modifies state and
// never fails; invalid or unknown actions return state as is.
func Reduce(state core.AppState, action Action) core.AppState {
	next, _ := Apply(state, action)
	return next
}

// Apply is Reduce plus the classification of what happened. Slices of the
// input are never written to: every change builds a new backing array, so a
// previously returned state stays valid for whoever still holds it.
func Apply(state core.AppState, action Action) (core.AppState, Outcome) {
	switch a := action.(type) {
	case AddTransaction:
		next := state
		next.Transactions = appendCopy(state.Transactions, a.Transaction)
		next.Categories = closeCategory(state.Categories, a.Transaction.Category)
		return next, applied

	case DeleteTransaction:
		kept, removed := without(state.Transactions, func(t core.Transaction) bool { return t.ID == a.ID })
		if !removed {
			return state, unchanged
		}
		next := state
		next.Transactions = kept
		return next, applied

	case AddBudget:
		if _, exists := state.BudgetFor(a.Budget.Category); exists {
			return state, Outcome{
				Status: Rejected,
				Err:    fmt.Errorf("%w: %q", ErrBudgetExists, a.Budget.Category),
			}
		}
		next := state
		next.Budgets = appendCopy(state.Budgets, a.Budget)
		next.Categories = closeCategory(state.Categories, a.Budget.Category)
		return next, applied

	case UpdateBudget:
		i := slices.IndexFunc(state.Budgets, func(b core.Budget) bool { return b.ID == a.Budget.ID })
		if i < 0 {
			return state, unchanged
		}
		updated := state.Budgets[i]
		updated.Limit = a.Budget.Limit
		next := state
		next.Budgets = slices.Clone(state.Budgets)
		next.Budgets[i] = updated
		next.Categories = closeCategory(state.Categories, updated.Category)
		return next, applied

	case DeleteBudget:
		kept, removed := without(state.Budgets, func(b core.Budget) bool { return b.ID == a.ID })
		if !removed {
			return state, unchanged
		}
		next := state
		next.Budgets = kept
		return next, applied

	case AddCategory:
		if isBlank(a.Name) || slices.Contains(state.Categories, a.Name) {
			return state, unchanged
		}
		next := state
		next.Categories = appendCopy(state.Categories, a.Name)
		return next, applied

	case SetTransactions:
		next := state
		next.Transactions = cloneOrEmpty(a.Transactions)
		return next, applied

	case SetBudgets:
		next := state
		next.Budgets = cloneOrEmpty(a.Budgets)
		return next, applied

	case SetCategories:
		merged := MergeCategories(a.Categories)
		for _, t := range state.Transactions {
			merged = closeCategory(merged, t.Category)
		}
		for _, b := range state.Budgets {
			merged = closeCategory(merged, b.Category)
		}
		if slices.Equal(merged, state.Categories) {
			return state, unchanged
		}
		next := state
		next.Categories = merged
		return next, applied

	default:
		return state, unchanged
	}
}

// MergeCategories returns the defaults followed by loaded, without
// duplicates or blank names. The defaults are always present.
//
// SetCategories also appends any category still referenced by a transaction
// or budget, so a lost categories record cannot break category closure.
func MergeCategories(loaded []string) []string {
	defaults := core.DefaultCategories()
	out := make([]string, 0, len(defaults)+len(loaded))
	seen := make(map[string]struct{}, len(defaults)+len(loaded))
	for _, c := range append(defaults, loaded...) {
		if isBlank(c) {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// closeCategory keeps the category-closure invariant: it returns categories
// unchanged when name is blank or known, else a new slice with name appended.
func closeCategory(categories []string, name string) []string {
	if isBlank(name) || slices.Contains(categories, name) {
		return categories
	}
	return appendCopy(categories, name)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func appendCopy[T any](s []T, v ...T) []T {
	out := make([]T, 0, len(s)+len(v))
	out = append(out, s...)
	return append(out, v...)
}

// without returns a new slice holding the elements that do not match.
func without[T any](s []T, match func(T) bool) ([]T, bool) {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if !match(v) {
			out = append(out, v)
		}
	}
	return out, len(out) != len(s)
}

func cloneOrEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}
