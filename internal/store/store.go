// Package store holds the ledger state and the reducer that transitions it.
//
// A Store is an explicit handle: callers create one with New and thread it
// through whatever needs it. All writes go through Dispatch, which runs the
// reducer under a single-writer lock and then tells subscribers about the
// change.
package store

import (
	"sync"

	"ledger/internal/core"
	"ledger/internal/log"
)

// Observer is called after an action has been applied. prev and next are
// immutable snapshots. Observers must not call Dispatch.
type Observer func(prev, next core.AppState, action Action)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger.WithComponent(log.ComponentStore)
		}
	}
}

type subscription struct {
	id int
	fn Observer
}

// Store is the single source of truth for an AppState.
type Store struct {
	// dispatchMu serializes Dispatch, including observer notification, so
	// observers see changes in the order they were applied.
	dispatchMu sync.Mutex

	mu        sync.RWMutex
	state     core.AppState
	observers []subscription
	nextID    int

	logger *log.Logger
}

// New returns a store holding initial.
func New(initial core.AppState, opts ...Option) *Store {
	s := &Store{
		state:  initial,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot.
func (s *Store) State() core.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies action and reports what happened. Observers run
// synchronously, in subscription order, only when the state changed.
func (s *Store) Dispatch(action Action) Outcome {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	prev := s.state
	next, outcome := Apply(prev, action)
	if outcome.Status == Applied {
		s.state = next
	}
	observers := make([]subscription, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	name := actionName(action)
	switch outcome.Status {
	case Applied:
		s.logger.Debug("Action applied", log.FieldAction, name)
	case Rejected:
		s.logger.Warn("Action rejected", log.FieldAction, name, log.FieldError, outcome.Err)
	default:
		s.logger.Debug("Action left state unchanged", log.FieldAction, name)
	}

	if outcome.Status != Applied {
		return outcome
	}
	for _, sub := range observers {
		sub.fn(prev, next, action)
	}
	return outcome
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.observers, _ = without(s.observers, func(sub subscription) bool { return sub.id == id })
		})
	}
}

func actionName(action Action) string {
	if action == nil {
		return "<nil>"
	}
	return string(action.Type())
}
