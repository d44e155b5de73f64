package core

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTransaction() Transaction {
	return Transaction{
		ID:          "t-1",
		Kind:        Expense,
		Amount:      MoneyFromInt(50),
		Category:    "Food",
		OccurredAt:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "Lunch",
	}
}

func TestTransactionValidate(t *testing.T) {
	require.NoError(t, validTransaction().Validate())

	accented := validTransaction()
	accented.Description = strings.Repeat("é", 200)
	require.NoError(t, accented.Validate(), "limit counts characters, not bytes")

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"empty id", func(tx *Transaction) { tx.ID = " " }, ErrEmptyID},
		{"bad kind", func(tx *Transaction) { tx.Kind = "transfer" }, ErrInvalidKind},
		{"zero amount", func(tx *Transaction) { tx.Amount = Zero }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = MoneyFromInt(-3) }, ErrInvalidAmount},
		{"empty category", func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		{"zero date", func(tx *Transaction) { tx.OccurredAt = time.Time{} }, ErrInvalidDate},
		{"empty description", func(tx *Transaction) { tx.Description = "\t" }, ErrEmptyDescription},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("x", 201) }, ErrDescriptionTooLong},
		{"long multibyte description", func(tx *Transaction) { tx.Description = strings.Repeat("é", 201) }, ErrDescriptionTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTransaction()
			tc.mutate(&tx)
			assert.ErrorIs(t, tx.Validate(), tc.want)
		})
	}
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{ID: "b-1", Category: "Food", Limit: MoneyFromInt(100)}
	require.NoError(t, good.Validate())

	bads := []Budget{
		{ID: "", Category: "Food", Limit: MoneyFromInt(100)},
		{ID: "b", Category: "", Limit: MoneyFromInt(100)},
		{ID: "b", Category: "Food", Limit: Zero},
	}
	for i, b := range bads {
		assert.Error(t, b.Validate(), "case %d", i)
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Income ")
	require.NoError(t, err)
	assert.Equal(t, Income, k)

	_, err = ParseKind("refund")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestInitialStateHasDefaults(t *testing.T) {
	s := InitialState()
	assert.Empty(t, s.Transactions)
	assert.NotNil(t, s.Transactions)
	assert.Empty(t, s.Budgets)
	assert.Equal(t, DefaultCategories(), s.Categories)
	assert.True(t, IsDefaultCategory("Utilities"))
	assert.False(t, IsDefaultCategory("Pets"))

	// Callers get their own copy of the defaults.
	s.Categories[0] = "changed"
	assert.Equal(t, "Food", DefaultCategories()[0])
}

func TestTransactionJSONShape(t *testing.T) {
	tx := validTransaction()
	tx.Recurring = true

	raw, err := json.Marshal(tx)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "t-1",
		"type": "expense",
		"amount": 50,
		"category": "Food",
		"date": "2024-01-15T00:00:00Z",
		"description": "Lunch",
		"isRecurring": true
	}`, string(raw))

	var back Transaction
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.Amount.Equals(tx.Amount))
	assert.True(t, back.OccurredAt.Equal(tx.OccurredAt))
}

func TestTransactionDecodesBrowserTimestamps(t *testing.T) {
	var tx Transaction
	err := json.Unmarshal([]byte(`{"id":"x","type":"income","amount":"12.5","category":"Salary","date":"2024-07-29T10:30:00.000Z","description":"pay"}`), &tx)
	require.NoError(t, err)
	assert.Equal(t, time.July, tx.OccurredAt.Month())
	assert.True(t, tx.Amount.Equals(MoneyFromFloat(12.5)))
	assert.False(t, tx.Recurring)
}

func TestAppStateLookups(t *testing.T) {
	s := AppState{
		Transactions: []Transaction{validTransaction()},
		Budgets:      []Budget{{ID: "b-1", Category: "Food", Limit: MoneyFromInt(100)}},
		Categories:   []string{"Food"},
	}

	_, ok := s.FindTransaction("t-1")
	assert.True(t, ok)
	_, ok = s.FindTransaction("nope")
	assert.False(t, ok)

	b, ok := s.BudgetFor("Food")
	require.True(t, ok)
	assert.Equal(t, "b-1", b.ID)
	_, ok = s.FindBudget("b-2")
	assert.False(t, ok)
	assert.True(t, s.HasCategory("Food"))
}
