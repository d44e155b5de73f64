package storage

import (
	"context"
	"time"
)

const getRecordValue = `-- name: GetRecordValue :one
SELECT value FROM records WHERE key = ?
`

func (q *Queries) GetRecordValue(ctx context.Context, key string) ([]byte, error) {
	row := q.db.QueryRowContext(ctx, getRecordValue, key)
	var value []byte
	err := row.Scan(&value)
	return value, err
}

const upsertRecord = `-- name: UpsertRecord :exec
INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`

type UpsertRecordParams struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

func (q *Queries) UpsertRecord(ctx context.Context, arg UpsertRecordParams) error {
	_, err := q.db.ExecContext(ctx, upsertRecord, arg.Key, arg.Value, arg.UpdatedAt)
	return err
}

const listRecordKeys = `-- name: ListRecordKeys :many
SELECT key FROM records ORDER BY key
`

func (q *Queries) ListRecordKeys(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listRecordKeys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		items = append(items, key)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
