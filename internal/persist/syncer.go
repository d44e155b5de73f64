package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/records"
	"ledger/internal/store"
)

// DefaultWriteTimeout bounds a single write-back.
const DefaultWriteTimeout = 5 * time.Second

// ErrSyncerClosed is returned by Flush once the syncer has stopped with
// writes still outstanding.
var ErrSyncerClosed = errors.New("syncer closed")

// SyncStats counts write-backs.
type SyncStats struct {
	Writes    int
	Failures  int
	LastError error
	// Failing is true while the most recent write failed.
	Failing bool
}

// Syncer writes the whole state back after every applied action. A single
// goroutine does the writing; while it is busy only the newest snapshot is
// kept, since every write fully supersedes the previous one.
type Syncer struct {
	backend records.Store
	logger  *log.Logger
	timeout time.Duration

	mu       sync.Mutex
	pending  *core.AppState
	seq      uint64 // snapshots enqueued
	written  uint64 // seq of the last snapshot written (or failed)
	progress chan struct{}
	closed   bool
	stats    SyncStats

	wake        chan struct{}
	quit        chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
	unsubscribe func()
}

func newSyncer(st *store.Store, backend records.Store, logger *log.Logger, timeout time.Duration) *Syncer {
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	s := &Syncer{
		backend:  backend,
		logger:   logger.WithComponent(log.ComponentPersist),
		timeout:  timeout,
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	s.unsubscribe = st.Subscribe(s.observe)
	go s.run()
	return s
}

func (s *Syncer) observe(_, next core.AppState, _ store.Action) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending = &next
	s.seq++
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Syncer) run() {
	defer close(s.done)
	for {
		select {
		case <-s.wake:
			s.drain()
		case <-s.quit:
			s.drain()
			return
		}
	}
}

func (s *Syncer) drain() {
	for {
		s.mu.Lock()
		if s.pending == nil {
			s.mu.Unlock()
			return
		}
		state, seq := *s.pending, s.seq
		s.pending = nil
		s.mu.Unlock()

		err := s.write(state)

		s.mu.Lock()
		s.written = seq
		s.stats.Writes++
		s.stats.Failing = err != nil
		if err != nil {
			s.stats.Failures++
			s.stats.LastError = err
		}
		close(s.progress)
		s.progress = make(chan struct{})
		s.mu.Unlock()
	}
}

func (s *Syncer) write(state core.AppState) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	values, err := Encode(state)
	if err == nil {
		err = records.PutAll(ctx, s.backend, values)
	}
	if err != nil {
		// State is not rolled back; the next change retries the full write.
		s.logger.Error("Failed to persist ledger",
			log.FieldOperation, log.OpPersist,
			log.FieldError, err)
		return err
	}
	s.logger.Debug("Ledger persisted",
		"transactions", len(state.Transactions),
		"budgets", len(state.Budgets))
	return nil
}

// Flush waits until every snapshot enqueued before the call has been
// written, or ctx is done.
func (s *Syncer) Flush(ctx context.Context) error {
	s.mu.Lock()
	target := s.seq
	for s.written < target {
		ch := s.progress
		s.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			s.mu.Lock()
			if s.written < target {
				s.mu.Unlock()
				return ErrSyncerClosed
			}
			s.mu.Unlock()
			return nil
		}
		s.mu.Lock()
	}
	s.mu.Unlock()
	return nil
}

// Stats returns the write counters.
func (s *Syncer) Stats() SyncStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close stops observing the store, writes whatever is pending and stops the
// writer goroutine.
func (s *Syncer) Close() error {
	s.closeOnce.Do(func() {
		s.unsubscribe()
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.quit)
	})
	<-s.done
	return nil
}
