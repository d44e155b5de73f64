// Package worker holds background consumers of the change feed.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/derive"
	"ledger/internal/log"
	"ledger/internal/sheets"
)

// SheetMirror keeps an external sheet in step with the ledger by exporting
// the full transaction list carried by each state change.
type SheetMirror struct {
	exporter sheets.TransactionExporter
	logger   *log.Logger

	mu       sync.Mutex
	lastSeen time.Time
	exports  int
}

func NewSheetMirror(exporter sheets.TransactionExporter, logger *log.Logger) *SheetMirror {
	if logger == nil {
		logger = log.Discard()
	}
	return &SheetMirror{
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentSheets),
	}
}

// HandleStateChanged exports the transactions in msg. A message older than
// one already exported is skipped: every message carries the full state,
// so a late delivery would only roll the sheet back.
func (w *SheetMirror) HandleStateChanged(ctx context.Context, msg *amqp.StateChangedMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !msg.Timestamp.IsZero() && msg.Timestamp.Before(w.lastSeen) {
		w.logger.DebugContext(ctx, "Skipping stale state change",
			log.FieldAction, msg.Action,
			"timestamp", msg.Timestamp,
			"last_seen", w.lastSeen)
		return nil
	}

	if err := w.export(ctx, msg.Transactions); err != nil {
		return fmt.Errorf("mirror %s: %w", msg.Action, err)
	}
	if msg.Timestamp.After(w.lastSeen) {
		w.lastSeen = msg.Timestamp
	}
	return nil
}

// Sync exports state directly. Used once at startup so the sheet is
// current before the first message arrives.
func (w *SheetMirror) Sync(ctx context.Context, state core.AppState) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.export(ctx, state.Transactions)
}

// Exports counts successful exports.
func (w *SheetMirror) Exports() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exports
}

func (w *SheetMirror) export(ctx context.Context, txs []core.Transaction) error {
	ref, err := w.exporter.ExportTransactions(ctx, derive.Filter(txs, derive.TransactionFilter{}))
	if err != nil {
		return err
	}
	w.exports++
	w.logger.InfoContext(ctx, "Sheet mirrored",
		log.FieldCount, len(txs),
		"range", ref)
	return nil
}
