package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// Totals is the income/expense rollup over a set of transactions.
type Totals struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
	Balance Money `json:"balance"`
}

// MonthSummary holds income and expense sums for one calendar month.
type MonthSummary struct {
	Year    int    `json:"year"`
	Month   int    `json:"month"` // 1-12
	Label   string `json:"name"`  // e.g. "Jan 2024"
	Income  Money  `json:"income"`
	Expense Money  `json:"expenses"`
}

// BudgetStatus is a budget together with its spending in the current month.
type BudgetStatus struct {
	Budget
	Spending   Money   `json:"currentSpending"`
	Remaining  Money   `json:"remaining"`
	Percent    float64 `json:"percent"`
	OverBudget bool    `json:"overBudget"`
}
