// Package records defines the durable key/value port the ledger persists
// its three serialized slices through.
package records

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("record store closed")

// Ports for record backends.
type (
	// Store reads and writes opaque records by key. A missing key is not an
	// error: Get reports found=false.
	Store interface {
		Get(ctx context.Context, key string) (value []byte, found bool, err error)
		Put(ctx context.Context, key string, value []byte) error
		Close() error
	}

	// BatchWriter is implemented by backends that can write several records
	// in one round trip. Callers fall back to Put when it is absent.
	BatchWriter interface {
		PutMany(ctx context.Context, values map[string][]byte) error
	}
)

// PutAll writes every record, using PutMany when the backend offers it.
func PutAll(ctx context.Context, s Store, values map[string][]byte) error {
	if bw, ok := s.(BatchWriter); ok {
		return bw.PutMany(ctx, values)
	}
	var errs []error
	for k, v := range values {
		if err := s.Put(ctx, k, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
