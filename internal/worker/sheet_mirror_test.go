package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/amqp"
	"ledger/internal/core"
	sheetsmem "ledger/internal/sheets/memory"
)

func tx(id, date string) core.Transaction {
	d, _ := time.Parse(time.DateOnly, date)
	return core.Transaction{
		ID:          id,
		Kind:        core.Expense,
		Amount:      core.MoneyFromInt(5),
		Category:    "Food",
		OccurredAt:  d,
		Description: "test " + id,
	}
}

func msgAt(ts time.Time, txs ...core.Transaction) *amqp.StateChangedMessage {
	m := amqp.NewStateChangedMessage("ADD_TRANSACTION", core.AppState{Transactions: txs})
	m.Timestamp = ts
	return m
}

func TestSheetMirrorExportsNewestFirst(t *testing.T) {
	exp := sheetsmem.New()
	w := NewSheetMirror(exp, nil)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, w.HandleStateChanged(context.Background(), msgAt(base, tx("a", "2024-01-01"), tx("b", "2024-03-01"))))

	rows := exp.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "b", rows[1][0])
	assert.Equal(t, "a", rows[2][0])
	assert.Equal(t, 1, w.Exports())
}

func TestSheetMirrorSkipsStaleMessages(t *testing.T) {
	exp := sheetsmem.New()
	w := NewSheetMirror(exp, nil)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, w.HandleStateChanged(ctx, msgAt(base, tx("a", "2024-01-01"), tx("b", "2024-01-02"))))
	require.NoError(t, w.HandleStateChanged(ctx, msgAt(base.Add(-time.Second), tx("a", "2024-01-01"))))

	assert.Len(t, exp.Rows(), 3, "late message must not roll the sheet back")
	assert.Equal(t, 1, exp.Exports())
}

type failingExporter struct{}

func (failingExporter) ExportTransactions(context.Context, []core.Transaction) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestSheetMirrorReturnsExportErrors(t *testing.T) {
	w := NewSheetMirror(failingExporter{}, nil)

	err := w.HandleStateChanged(context.Background(), msgAt(time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, 0, w.Exports())

	assert.Error(t, w.Sync(context.Background(), core.InitialState()))
}

func TestSheetMirrorSync(t *testing.T) {
	exp := sheetsmem.New()
	w := NewSheetMirror(exp, nil)

	require.NoError(t, w.Sync(context.Background(), core.AppState{Transactions: []core.Transaction{tx("a", "2024-01-01")}}))
	assert.Len(t, exp.Rows(), 2)
}
