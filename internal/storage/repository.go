package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is a records.Store kept in a single SQLite table.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; SQLite would serialize anyway and this avoids
	// SQLITE_BUSY under concurrent Put calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Get implements records.Store
func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.queries.GetRecordValue(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get record %q: %w", key, err)
	}
	return value, true, nil
}

// Put implements records.Store
func (r *SQLiteRepository) Put(ctx context.Context, key string, value []byte) error {
	err := r.queries.UpsertRecord(ctx, UpsertRecordParams{
		Key:       key,
		Value:     value,
		UpdatedAt: r.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("upsert record %q: %w", key, err)
	}
	slog.DebugContext(ctx, "Record saved to SQLite", "record", key, "bytes", len(value))
	return nil
}

// PutMany implements records.BatchWriter. All records are written in one
// transaction so a crash never leaves a mix of old and new slices.
func (r *SQLiteRepository) PutMany(ctx context.Context, values map[string][]byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	now := r.now().UTC()
	for key, value := range values {
		if err := q.UpsertRecord(ctx, UpsertRecordParams{Key: key, Value: value, UpdatedAt: now}); err != nil {
			return fmt.Errorf("upsert record %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit records: %w", err)
	}
	return nil
}

// Keys lists stored record keys.
func (r *SQLiteRepository) Keys(ctx context.Context) ([]string, error) {
	keys, err := r.queries.ListRecordKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list record keys: %w", err)
	}
	return keys, nil
}
