package memory

import (
	"context"
	"slices"
	"sync"

	"ledger/internal/records"
)

// Store keeps records in a map. Values are copied on the way in and out.
type Store struct {
	mu     sync.Mutex
	items  map[string][]byte
	closed bool

	// Fail, when set, is consulted before every operation; a non-nil
	// return is handed back to the caller. Used to simulate I/O faults.
	Fail func(op, key string) error
}

func New() *Store {
	return &Store{items: make(map[string][]byte)}
}

// NewWith returns a store seeded with values.
func NewWith(values map[string][]byte) *Store {
	s := New()
	for k, v := range values {
		s.items[k] = slices.Clone(v)
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, records.ErrClosed
	}
	if err := s.fail("get", key); err != nil {
		return nil, false, err
	}
	v, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return records.ErrClosed
	}
	if err := s.fail("put", key); err != nil {
		return err
	}
	s.items[key] = slices.Clone(value)
	return nil
}

// Keys returns the stored keys, sorted.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) fail(op, key string) error {
	if s.Fail == nil {
		return nil
	}
	return s.Fail(op, key)
}
