package store

import "ledger/internal/core"

// ActionType names an action on the wire and in logs.
type ActionType string

const (
	TypeAddTransaction    ActionType = "ADD_TRANSACTION"
	TypeDeleteTransaction ActionType = "DELETE_TRANSACTION"
	TypeAddBudget         ActionType = "ADD_BUDGET"
	TypeUpdateBudget      ActionType = "UPDATE_BUDGET"
	TypeDeleteBudget      ActionType = "DELETE_BUDGET"
	TypeAddCategory       ActionType = "ADD_CATEGORY"
	TypeSetTransactions   ActionType = "SET_TRANSACTIONS"
	TypeSetBudgets        ActionType = "SET_BUDGETS"
	TypeSetCategories     ActionType = "SET_CATEGORIES"
)

// Action is anything that can be dispatched to the store. The reducer knows
// the concrete types declared in this file; any other implementation is
// treated as unrecognized and leaves the state untouched.
type Action interface {
	Type() ActionType
}

type (
	AddTransaction struct {
		Transaction core.Transaction
	}

	DeleteTransaction struct {
		ID string
	}

	AddBudget struct {
		Budget core.Budget
	}

	// UpdateBudget replaces the limit of the budget with Budget.ID. The
	// category of the stored budget is kept.
	UpdateBudget struct {
		Budget core.Budget
	}

	DeleteBudget struct {
		ID string
	}

	AddCategory struct {
		Name string
	}

	// SetTransactions replaces the whole slice. Used at load time.
	SetTransactions struct {
		Transactions []core.Transaction
	}

	// SetBudgets replaces the whole slice. Used at load time.
	SetBudgets struct {
		Budgets []core.Budget
	}

	// SetCategories merges Categories with the defaults.
	SetCategories struct {
		Categories []string
	}
)

func (AddTransaction) Type() ActionType    { return TypeAddTransaction }
func (DeleteTransaction) Type() ActionType { return TypeDeleteTransaction }
func (AddBudget) Type() ActionType         { return TypeAddBudget }
func (UpdateBudget) Type() ActionType      { return TypeUpdateBudget }
func (DeleteBudget) Type() ActionType      { return TypeDeleteBudget }
func (AddCategory) Type() ActionType       { return TypeAddCategory }
func (SetTransactions) Type() ActionType   { return TypeSetTransactions }
func (SetBudgets) Type() ActionType        { return TypeSetBudgets }
func (SetCategories) Type() ActionType     { return TypeSetCategories }
