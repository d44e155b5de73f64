package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/persist"
	"ledger/internal/records/memory"
	"ledger/internal/services"
	"ledger/internal/store"
)

// runner executes ledger commands against one file-backed data directory.
type runner struct {
	t   *testing.T
	dir string
}

func newRunner(t *testing.T) *runner {
	return &runner{t: t, dir: t.TempDir()}
}

func (r *runner) run(args ...string) (string, error) {
	r.t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{
		"--backend", "file",
		"--data-dir", r.dir,
		"--env-file", filepath.Join(r.dir, "missing.env"),
		"--log-level", "error",
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func (r *runner) mustRun(args ...string) string {
	r.t.Helper()
	out, err := r.run(args...)
	require.NoError(r.t, err, "ledger %s", strings.Join(args, " "))
	return out
}

func TestTransactionsPersistAcrossCommands(t *testing.T) {
	r := newRunner(t)

	out := r.mustRun("tx", "add", "--date", "2024-05-03", "12.50", "Food", "Lunch")
	assert.Contains(t, out, "Added expense 12.50 Food")
	r.mustRun("tx", "add", "--kind", "income", "--date", "2024-05-01", "2500", "Salary", "May salary")

	out = r.mustRun("tx", "list", "--json")
	var txs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &txs))
	require.Len(t, txs, 2)
	assert.Equal(t, "Lunch", txs[0]["description"], "most recent first")
	assert.Equal(t, "May salary", txs[1]["description"])

	out = r.mustRun("tx", "list", "--category", "Salary")
	assert.Contains(t, out, "May salary")
	assert.NotContains(t, out, "Lunch")

	out = r.mustRun("report")
	assert.Contains(t, out, "Income:   2500.00")
	assert.Contains(t, out, "Balance:  2487.50")
	assert.Contains(t, out, "May 2024")

	id, _ := txs[0]["id"].(string)
	require.NotEmpty(t, id)
	r.mustRun("tx", "rm", id)
	out = r.mustRun("tx", "list")
	assert.NotContains(t, out, "Lunch")
}

func TestDeleteMissingTransactionFails(t *testing.T) {
	r := newRunner(t)

	_, err := r.run("tx", "rm", "nope")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestInvalidTransactionIsNotStored(t *testing.T) {
	r := newRunner(t)

	_, err := r.run("tx", "add", "abc", "Food", "Refund")
	require.Error(t, err)

	out := r.mustRun("tx", "list")
	assert.Contains(t, out, "No transactions found.")
}

func TestBudgets(t *testing.T) {
	r := newRunner(t)

	out := r.mustRun("budget", "add", "Food", "100")
	assert.Contains(t, out, "Budget Food: 100.00 per month")

	_, err := r.run("budget", "add", "Food", "50")
	assert.ErrorIs(t, err, store.ErrBudgetExists)

	out = r.mustRun("budget", "list")
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, "100.00")

	out = r.mustRun("category", "list", "--available")
	assert.NotContains(t, strings.Fields(out), "Food")
	assert.Contains(t, strings.Fields(out), "Travel")
}

func TestCategories(t *testing.T) {
	r := newRunner(t)

	r.mustRun("category", "add", "Pets")
	out := r.mustRun("category", "list")
	lines := strings.Fields(out)
	assert.Equal(t, "Pets", lines[len(lines)-1])

	_, err := r.run("category", "add", "Pets")
	assert.ErrorIs(t, err, services.ErrCategoryExists)
}

func TestExportCSV(t *testing.T) {
	r := newRunner(t)
	r.mustRun("tx", "add", "--date", "2024-05-03", "12.50", "Food", `Lunch, "big"`)

	path := filepath.Join(t.TempDir(), "out.csv")
	out := r.mustRun("export", "--out", path)
	assert.Contains(t, out, "Exported 1 transactions")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,Type,Amount,Category,Date,Description,Recurring", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], `,expense,12.5,Food,2024-05-03,"Lunch, ""big""",No`), lines[1])

	out = r.mustRun("export", "--out", "-", "--keyword", "nothing")
	assert.Equal(t, "ID,Type,Amount,Category,Date,Description,Recurring", out)
}

func TestExportSheetRequiresSpreadsheet(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	r := newRunner(t)

	_, err := r.run("export", "--sheet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_SPREADSHEET_ID")
}

func TestWatchRequiresFeed(t *testing.T) {
	t.Setenv("AMQP_URL", "")
	r := newRunner(t)

	_, err := r.run("watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AMQP_URL")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	r := newRunner(t)

	_, err := r.run("--backend", "sheets", "report")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid data backend")
}

func TestSyncerReadyFollowsLastWrite(t *testing.T) {
	backend := memory.New()
	failing := true
	backend.Fail = func(op, _ string) error {
		if op == "put" && failing {
			return errors.New("disk full")
		}
		return nil
	}
	ctx := context.Background()
	sess := persist.Open(ctx, backend, persist.Options{})
	defer sess.Close()
	ready := syncerReady(sess.Syncer())

	require.NoError(t, ready(ctx))

	sess.Store().Dispatch(store.AddCategory{Name: "Pets"})
	require.NoError(t, sess.Flush(ctx))
	assert.Error(t, ready(ctx))

	failing = false
	sess.Store().Dispatch(store.AddCategory{Name: "Rent"})
	require.NoError(t, sess.Flush(ctx))
	assert.NoError(t, ready(ctx))
}
