package persist

import (
	"context"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/records"
	"ledger/internal/store"
)

// Options configures Open.
type Options struct {
	Logger       *log.Logger
	WriteTimeout time.Duration
}

// Session is a loaded store with write-back attached.
type Session struct {
	store  *store.Store
	syncer *Syncer
	report LoadReport
}

// Open creates a store, loads it from backend and then starts persisting
// every applied change. The backend stays owned by the caller.
func Open(ctx context.Context, backend records.Store, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}

	st := store.New(core.InitialState(), store.WithLogger(logger))
	report := Load(ctx, backend, st, logger)

	return &Session{
		store:  st,
		syncer: newSyncer(st, backend, logger, opts.WriteTimeout),
		report: report,
	}
}

// Store returns the session's store.
func (s *Session) Store() *store.Store { return s.store }

// Report returns the outcome of the load pass.
func (s *Session) Report() LoadReport { return s.report }

// Syncer returns the write-back worker.
func (s *Session) Syncer() *Syncer { return s.syncer }

// Flush waits for pending writes.
func (s *Session) Flush(ctx context.Context) error {
	return s.syncer.Flush(ctx)
}

// Close flushes and stops write-back.
func (s *Session) Close() error {
	return s.syncer.Close()
}
