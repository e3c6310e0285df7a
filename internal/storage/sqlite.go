package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLiteKV implements KV on the kv_store table of a SQLite database.
type SQLiteKV struct {
	db *sql.DB
}

// NewSQLiteKV returns a SQLiteKV bound to db; see db.InitSQLite for the schema.
func NewSQLiteKV(db *sql.DB) *SQLiteKV {
	return &SQLiteKV{db: db}
}

// Get implements KV.
func (r *SQLiteKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `select value from kv_store where key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select value: %w", err)
	}
	return value, nil
}

// Set implements KV with an upsert on key.
func (r *SQLiteKV) Set(ctx context.Context, key string, value []byte) error {
	query := `insert into kv_store (key, value, updated_at) values (?, ?, current_timestamp)
		on conflict(key) do update set value = excluded.value, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to upsert value: %w", err)
	}
	return nil
}
