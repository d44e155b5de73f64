// Package derive computes read-only views over a ledger snapshot. Nothing
// here is stored; every view is recomputed from the state it is given.
package derive

import (
	"cmp"
	"slices"
	"time"

	"ledger/internal/core"
)

// MonthLabelLayout formats MonthSummary labels, e.g. "Jan 2024".
const MonthLabelLayout = "Jan 2006"

// Totals sums income and expense over every transaction.
func Totals(state core.AppState) core.Totals {
	var t core.Totals
	for _, tx := range state.Transactions {
		if tx.Kind == core.Income {
			t.Income = t.Income.Add(tx.Amount)
		} else {
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// CategoryBreakdown sums expenses per category. Categories without
// expenses are absent.
func CategoryBreakdown(state core.AppState) map[string]core.Money {
	out := make(map[string]core.Money)
	for _, tx := range state.Transactions {
		if tx.Kind != core.Expense {
			continue
		}
		out[tx.Category] = out[tx.Category].Add(tx.Amount)
	}
	return out
}

// SortedBreakdown is CategoryBreakdown ordered by amount, largest first,
// then by name.
func SortedBreakdown(state core.AppState) []core.CategoryAmount {
	m := CategoryBreakdown(state)
	out := make([]core.CategoryAmount, 0, len(m))
	for name, amount := range m {
		out = append(out, core.CategoryAmount{Name: name, Amount: amount})
	}
	slices.SortFunc(out, func(a, b core.CategoryAmount) int {
		if c := b.Amount.Cmp(a.Amount.Decimal); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// MonthlySeries returns one entry per calendar month from the month of the
// earliest transaction to the month of the latest, both included. Months
// without transactions are present with zero sums. Bucketing uses UTC.
func MonthlySeries(state core.AppState) []core.MonthSummary {
	if len(state.Transactions) == 0 {
		return []core.MonthSummary{}
	}

	first, last := monthStart(state.Transactions[0].OccurredAt), monthStart(state.Transactions[0].OccurredAt)
	for _, tx := range state.Transactions[1:] {
		m := monthStart(tx.OccurredAt)
		if m.Before(first) {
			first = m
		}
		if m.After(last) {
			last = m
		}
	}

	var series []core.MonthSummary
	index := make(map[time.Time]int)
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		index[m] = len(series)
		series = append(series, core.MonthSummary{
			Year:  m.Year(),
			Month: int(m.Month()),
			Label: m.Format(MonthLabelLayout),
		})
	}

	for _, tx := range state.Transactions {
		entry := &series[index[monthStart(tx.OccurredAt)]]
		if tx.Kind == core.Income {
			entry.Income = entry.Income.Add(tx.Amount)
		} else {
			entry.Expense = entry.Expense.Add(tx.Amount)
		}
	}
	return series
}

// BudgetUtilization reports, for each budget in order, the expenses of its
// category in the calendar month containing now.
func BudgetUtilization(state core.AppState, now time.Time) []core.BudgetStatus {
	current := monthStart(now)

	spent := make(map[string]core.Money)
	for _, tx := range state.Transactions {
		if tx.Kind != core.Expense || !monthStart(tx.OccurredAt).Equal(current) {
			continue
		}
		spent[tx.Category] = spent[tx.Category].Add(tx.Amount)
	}

	out := make([]core.BudgetStatus, 0, len(state.Budgets))
	for _, b := range state.Budgets {
		spending := spent[b.Category]
		pct := spending.Percent(b.Limit)
		out = append(out, core.BudgetStatus{
			Budget:     b,
			Spending:   spending,
			Remaining:  b.Limit.Sub(spending),
			Percent:    pct,
			OverBudget: pct > 100,
		})
	}
	return out
}

// AvailableBudgetCategories lists the categories that have no budget yet,
// in category order.
func AvailableBudgetCategories(state core.AppState) []string {
	out := make([]string, 0, len(state.Categories))
	for _, c := range state.Categories {
		if _, ok := state.BudgetFor(c); !ok {
			out = append(out, c)
		}
	}
	return out
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
