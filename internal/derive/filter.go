package derive

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"ledger/internal/core"
)

// AllCategories matches every category in a TransactionFilter.
const AllCategories = "all"

// TransactionFilter narrows the transaction list. Zero fields match
// everything.
type TransactionFilter struct {
	Category string // exact match; "" or "all" for any
	Keyword  string // case-insensitive substring of the description
	From     time.Time
	To       time.Time // inclusive: the whole UTC day of To matches
}

// Matches reports whether t passes every set criterion.
func (f TransactionFilter) Matches(t core.Transaction) bool {
	if f.Category != "" && f.Category != AllCategories && t.Category != f.Category {
		return false
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" &&
		!strings.Contains(strings.ToLower(t.Description), strings.ToLower(kw)) {
		return false
	}
	if !f.From.IsZero() && t.OccurredAt.Before(dayStart(f.From)) {
		return false
	}
	if !f.To.IsZero() && !t.OccurredAt.Before(dayStart(f.To).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// Filter returns the matching transactions, most recent first. Ties keep
// their stored order.
func Filter(transactions []core.Transaction, f TransactionFilter) []core.Transaction {
	out := make([]core.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return b.OccurredAt.Compare(a.OccurredAt)
	})
	return out
}

// ParseFilter builds a filter from user-supplied strings. Dates are
// YYYY-MM-DD; empty values leave the criterion unset.
func ParseFilter(category, keyword, from, to string) (TransactionFilter, error) {
	f := TransactionFilter{
		Category: strings.TrimSpace(category),
		Keyword:  strings.TrimSpace(keyword),
	}
	var err error
	if f.From, err = parseDay(from); err != nil {
		return TransactionFilter{}, err
	}
	if f.To, err = parseDay(to); err != nil {
		return TransactionFilter{}, err
	}
	return f, nil
}

func parseDay(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, v)
	}
	return d, nil
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
