// Package core provides money parsing and handling utilities.
//
// This file contains the Money type used for every amount in the ledger and
// the helpers that turn user input into it.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a currency amount with exact decimal arithmetic. It marshals to a
// bare JSON number and accepts both numbers and quoted numbers on input.
type Money struct {
	decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// NewMoney wraps a decimal value.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MoneyFromInt builds an amount of whole currency units.
func MoneyFromInt(units int64) Money {
	return Money{Decimal: decimal.NewFromInt(units)}
}

// MoneyFromFloat builds an amount from a float. Intended for tests and
// literals; user input goes through ParseAmount.
func MoneyFromFloat(f float64) Money {
	return Money{Decimal: decimal.NewFromFloat(f)}
}

// ParseAmount converts a decimal string to a positive amount rounded to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half away from zero on the third decimal place. Signs, zero and anything
// decimal cannot parse are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("12.345") -> 12.35, nil
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, ErrInvalidAmount
	}
	m := Money{Decimal: d.Round(2)}
	if err := m.Validate(); err != nil {
		return Zero, err
	}
	return m, nil
}

// Validate requires a strictly positive amount.
func (m Money) Validate() error {
	if !m.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

func (m Money) Sub(o Money) Money {
	return Money{Decimal: m.Decimal.Sub(o.Decimal)}
}

// Equals compares amounts by value, ignoring representation (50 == 50.00).
func (m Money) Equals(o Money) bool {
	return m.Decimal.Equal(o.Decimal)
}

// Percent returns m as a percentage of whole, or 0 when whole is not positive.
func (m Money) Percent(whole Money) float64 {
	if !whole.IsPositive() {
		return 0
	}
	f, _ := m.Decimal.Div(whole.Decimal).Mul(decimal.NewFromInt(100)).Float64()
	return f
}

// MarshalJSON writes the amount as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// Format renders the amount with two decimals for display.
func (m Money) Format() string {
	return m.StringFixed(2)
}
