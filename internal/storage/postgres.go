package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresKV implements KV on the kv_store table of a PostgreSQL database.
type PostgresKV struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresKV creates a PostgresKV using the provided *sql.DB.
// db must be a valid connection to a PostgreSQL instance with the schema
// from db.InitPostgres applied.
func NewPostgresKV(db *sql.DB) *PostgresKV {
	return &PostgresKV{DB: db}
}

// Get retrieves the value stored under key.
//
//	ctx: context for cancellation and deadlines
//	key: storage key
//
// Returns ErrNotFound when the key does not exist.
func (s *PostgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.DB.QueryRowContext(ctx, `
		SELECT value FROM kv_store WHERE key = $1
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv get: %w", err)
	}
	return value, nil
}

// Set inserts or replaces the value stored under key.
func (s *PostgresKV) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("kv set: %w", err)
	}
	return nil
}
