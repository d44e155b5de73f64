package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true},
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"0.001", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, ErrInvalidAmount, "%q", tc.in)
			continue
		}
		require.NoError(t, err, "%q", tc.in)
		want, _ := ParseAmount(tc.out)
		assert.True(t, got.Equals(want), "%q: got %s want %s", tc.in, got, tc.out)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := MoneyFromInt(1000)
	b := MoneyFromFloat(50.5)

	assert.Equal(t, "949.50", a.Sub(b).Format())
	assert.Equal(t, "1050.50", a.Add(b).Format())
	assert.InDelta(t, 5.05, b.Percent(a), 1e-9)
	assert.Equal(t, 0.0, b.Percent(Zero))
}

func TestMoneyJSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		A Money `json:"a"`
		Z Money `json:"z"`
	}{A: MoneyFromFloat(19.99)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":19.99,"z":0}`, string(raw))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"7.25"`), &m))
	assert.True(t, m.Equals(MoneyFromFloat(7.25)))
}
