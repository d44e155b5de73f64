package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func mk(id string, kind core.Kind, amount float64, category, date, desc string) core.Transaction {
	return core.Transaction{
		ID:          id,
		Kind:        kind,
		Amount:      core.MoneyFromFloat(amount),
		Category:    category,
		OccurredAt:  day(date),
		Description: desc,
	}
}

func money(f float64) core.Money { return core.MoneyFromFloat(f) }

func assertMoney(t *testing.T, want float64, got core.Money, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, got.Equals(money(want)), append([]any{"want %v, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestTotals(t *testing.T) {
	state := core.AppState{Transactions: []core.Transaction{
		mk("1", core.Expense, 50, "Food", "2024-01-15", "Lunch"),
		mk("2", core.Income, 1000, "Salary", "2024-01-20", "Pay"),
	}}

	got := Totals(state)
	assertMoney(t, 1000, got.Income)
	assertMoney(t, 50, got.Expense)
	assertMoney(t, 950, got.Balance)

	empty := Totals(core.InitialState())
	assert.True(t, empty.Balance.IsZero())
}

func TestTotalsUseExactDecimals(t *testing.T) {
	state := core.AppState{Transactions: []core.Transaction{
		mk("1", core.Income, 0.1, "Bonus", "2024-01-01", "a"),
		mk("2", core.Income, 0.2, "Bonus", "2024-01-01", "b"),
	}}
	assertMoney(t, 0.3, Totals(state).Income)
}

func TestCategoryBreakdown(t *testing.T) {
	state := core.AppState{Transactions: []core.Transaction{
		mk("1", core.Expense, 10, "Food", "2024-01-01", "a"),
		mk("2", core.Expense, 5.5, "Food", "2024-02-01", "b"),
		mk("3", core.Expense, 30, "Travel", "2024-01-03", "c"),
		mk("4", core.Income, 99, "Salary", "2024-01-03", "d"),
		mk("5", core.Expense, 15.5, "Bills", "2024-01-03", "e"),
	}}

	m := CategoryBreakdown(state)
	require.Len(t, m, 3)
	assertMoney(t, 15.5, m["Food"])
	assert.NotContains(t, m, "Salary")

	sorted := SortedBreakdown(state)
	require.Len(t, sorted, 3)
	assert.Equal(t, "Travel", sorted[0].Name)
	// Equal amounts fall back to name order.
	assert.Equal(t, "Bills", sorted[1].Name)
	assert.Equal(t, "Food", sorted[2].Name)
}

func TestMonthlySeriesIncludesGapMonths(t *testing.T) {
	state := core.AppState{Transactions: []core.Transaction{
		mk("2", core.Income, 200, "Salary", "2024-03-05", "Pay"),
		mk("1", core.Expense, 20, "Food", "2024-01-10", "Lunch"),
	}}

	series := MonthlySeries(state)
	require.Len(t, series, 3)
	assert.Equal(t, []string{"Jan 2024", "Feb 2024", "Mar 2024"},
		[]string{series[0].Label, series[1].Label, series[2].Label})

	assertMoney(t, 20, series[0].Expense)
	assert.True(t, series[1].Income.IsZero())
	assert.True(t, series[1].Expense.IsZero())
	assertMoney(t, 200, series[2].Income)
	assert.Equal(t, 2024, series[2].Year)
	assert.Equal(t, 3, series[2].Month)
}

func TestMonthlySeriesAcrossYearBoundary(t *testing.T) {
	state := core.AppState{Transactions: []core.Transaction{
		mk("1", core.Expense, 1, "Food", "2023-11-30", "a"),
		mk("2", core.Expense, 2, "Food", "2024-01-31", "b"),
	}}

	series := MonthlySeries(state)
	require.Len(t, series, 3)
	assert.Equal(t, "Nov 2023", series[0].Label)
	assert.Equal(t, "Dec 2023", series[1].Label)
	assert.Equal(t, "Jan 2024", series[2].Label)
}

func TestMonthlySeriesEmpty(t *testing.T) {
	series := MonthlySeries(core.InitialState())
	assert.NotNil(t, series)
	assert.Empty(t, series)
}

func TestMonthlySeriesBucketsInUTC(t *testing.T) {
	// 23:30 on Jan 31 in UTC-5 is Feb 1 in UTC.
	loc := time.FixedZone("EST", -5*3600)
	tx := mk("1", core.Expense, 1, "Food", "2024-01-01", "a")
	tx.OccurredAt = time.Date(2024, 1, 31, 23, 30, 0, 0, loc)

	series := MonthlySeries(core.AppState{Transactions: []core.Transaction{tx}})
	require.Len(t, series, 1)
	assert.Equal(t, "Feb 2024", series[0].Label)
}

func TestBudgetUtilization(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	state := core.AppState{
		Transactions: []core.Transaction{
			mk("1", core.Expense, 60, "Food", "2024-05-02", "a"),
			mk("2", core.Expense, 50, "Food", "2024-05-19", "b"),
			mk("3", core.Expense, 500, "Food", "2024-04-30", "last month"),
			mk("4", core.Expense, 500, "Food", "2023-05-10", "last year"),
			mk("5", core.Income, 500, "Food", "2024-05-10", "refund"),
			mk("6", core.Expense, 25, "Travel", "2024-05-10", "bus"),
		},
		Budgets: []core.Budget{
			{ID: "b1", Category: "Food", Limit: money(100)},
			{ID: "b2", Category: "Travel", Limit: money(100)},
			{ID: "b3", Category: "Bills", Limit: money(80)},
		},
	}

	got := BudgetUtilization(state, now)
	require.Len(t, got, 3)

	food := got[0]
	assert.Equal(t, "b1", food.ID)
	assertMoney(t, 110, food.Spending)
	assertMoney(t, -10, food.Remaining)
	assert.InDelta(t, 110.0, food.Percent, 1e-9)
	assert.True(t, food.OverBudget)

	travel := got[1]
	assert.InDelta(t, 25.0, travel.Percent, 1e-9)
	assert.False(t, travel.OverBudget)

	bills := got[2]
	assert.True(t, bills.Spending.IsZero())
	assert.Zero(t, bills.Percent)
}

func TestBudgetUtilizationExactlyAtLimit(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	state := core.AppState{
		Transactions: []core.Transaction{mk("1", core.Expense, 100, "Food", "2024-05-01", "a")},
		Budgets:      []core.Budget{{ID: "b1", Category: "Food", Limit: money(100)}},
	}
	got := BudgetUtilization(state, now)
	require.Len(t, got, 1)
	assert.InDelta(t, 100.0, got[0].Percent, 1e-9)
	assert.False(t, got[0].OverBudget)
}

func TestAvailableBudgetCategories(t *testing.T) {
	state := core.AppState{
		Categories: []string{"Food", "Travel", "Bills"},
		Budgets:    []core.Budget{{ID: "b1", Category: "Travel", Limit: money(1)}},
	}
	assert.Equal(t, []string{"Food", "Bills"}, AvailableBudgetCategories(state))
}
