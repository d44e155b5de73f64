package persist

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/records"
	"ledger/internal/store"
)

// RecordResult describes how one record fared during Load.
type RecordResult struct {
	Key   string
	Found bool
	// Err is set when the record could not be read or parsed. The slice
	// was left at its default.
	Err error
}

// Loaded reports whether the record's contents made it into the state.
func (r RecordResult) Loaded() bool {
	return r.Found && r.Err == nil
}

// LoadReport summarizes a Load pass.
type LoadReport struct {
	Transactions RecordResult
	Budgets      RecordResult
	Categories   RecordResult
}

// Err joins the per-record failures, or returns nil.
func (r LoadReport) Err() error {
	return errors.Join(r.Transactions.Err, r.Budgets.Err, r.Categories.Err)
}

// Load reads the three records and dispatches them into st. It never fails
// as a whole: every record degrades to its default independently and the
// problems are logged and reported.
func Load(ctx context.Context, backend records.Store, st *store.Store, logger *log.Logger) LoadReport {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentPersist)

	var (
		report = LoadReport{
			Transactions: RecordResult{Key: KeyTransactions},
			Budgets:      RecordResult{Key: KeyBudgets},
			Categories:   RecordResult{Key: KeyCategories},
		}
		txs     []core.Transaction
		budgets []core.Budget
		cats    []string
	)

	// Failures are per record, so none of these goroutines returns an
	// error that would cancel its siblings.
	var g errgroup.Group
	g.Go(func() error {
		txs = readRecord(ctx, backend, &report.Transactions, DecodeTransactions)
		return nil
	})
	g.Go(func() error {
		budgets = readRecord(ctx, backend, &report.Budgets, DecodeBudgets)
		return nil
	})
	g.Go(func() error {
		cats = readRecord(ctx, backend, &report.Categories, DecodeCategories)
		return nil
	})
	_ = g.Wait()

	for _, r := range []RecordResult{report.Transactions, report.Budgets, report.Categories} {
		if r.Err != nil {
			logger.WarnContext(ctx, "Record unusable, keeping default",
				log.FieldRecord, r.Key,
				log.FieldError, r.Err)
		}
	}

	if report.Transactions.Loaded() {
		st.Dispatch(store.SetTransactions{Transactions: txs})
	}
	if report.Budgets.Loaded() {
		st.Dispatch(store.SetBudgets{Budgets: budgets})
	}
	// Always dispatched so the defaults are merged in even when nothing
	// was stored.
	st.Dispatch(store.SetCategories{Categories: cats})

	state := st.State()
	logger.InfoContext(ctx, "Ledger loaded",
		"transactions", len(state.Transactions),
		"budgets", len(state.Budgets),
		"categories", len(state.Categories))

	return report
}

func readRecord[T any](ctx context.Context, backend records.Store, res *RecordResult, decode func([]byte) ([]T, error)) []T {
	raw, found, err := backend.Get(ctx, res.Key)
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", res.Key, err)
		return nil
	}
	if !found {
		return nil
	}
	res.Found = true
	out, err := decode(raw)
	if err != nil {
		res.Err = err
		return nil
	}
	return out
}
