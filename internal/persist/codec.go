// Package persist synchronizes a store.Store with a records.Store.
//
// Open runs the load pass and only then attaches the write-back Syncer, so
// the default state of a fresh store can never overwrite saved records.
package persist

import (
	"encoding/json"
	"fmt"

	"ledger/internal/core"
)

// Record keys. Each holds one JSON array.
const (
	KeyTransactions = "localLedgerTransactions"
	KeyBudgets      = "localLedgerBudgets"
	KeyCategories   = "localLedgerCategories"
)

// Keys lists the record keys in load order.
var Keys = []string{KeyTransactions, KeyBudgets, KeyCategories}

// Encode serializes each slice of state independently. Nil slices are
// written as empty arrays.
func Encode(state core.AppState) (map[string][]byte, error) {
	txs, err := json.Marshal(orEmpty(state.Transactions))
	if err != nil {
		return nil, fmt.Errorf("encode transactions: %w", err)
	}
	budgets, err := json.Marshal(orEmpty(state.Budgets))
	if err != nil {
		return nil, fmt.Errorf("encode budgets: %w", err)
	}
	cats, err := json.Marshal(orEmpty(state.Categories))
	if err != nil {
		return nil, fmt.Errorf("encode categories: %w", err)
	}
	return map[string][]byte{
		KeyTransactions: txs,
		KeyBudgets:      budgets,
		KeyCategories:   cats,
	}, nil
}

// DecodeTransactions parses a transactions record.
func DecodeTransactions(b []byte) ([]core.Transaction, error) {
	var out []core.Transaction
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return out, nil
}

// DecodeBudgets parses a budgets record.
func DecodeBudgets(b []byte) ([]core.Budget, error) {
	var out []core.Budget
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode budgets: %w", err)
	}
	return out, nil
}

// DecodeCategories parses a categories record.
func DecodeCategories(b []byte) ([]string, error) {
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return out, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
