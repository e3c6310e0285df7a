// Package storage persists the saved QR code history. The history is a
// single JSON array kept under one key of a key-value backend.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/QRKeeper/internal/models"
)

// HistoryKey is the fixed key the history array is stored under.
const HistoryKey = "savedQRCodes"

var (
	// ErrNotFound is returned by KV.Get for a missing key.
	ErrNotFound = errors.New("key not found")
	// ErrCorrupt is returned by KV.Get when the backing data cannot be read
	// as key-value pairs.
	ErrCorrupt = errors.New("corrupt storage")
)

// KV is a byte-valued key-value backend.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
}

// Store keeps the history as one serialized collection in a KV.
type Store struct {
	kv  KV
	log *zap.Logger
	mu  sync.Mutex
}

// NewStore returns a Store backed by kv. A nil log discards warnings.
func NewStore(kv KV, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, log: log}
}

// LoadAll returns every saved entry. An absent or malformed collection
// yields an empty list; only backend failures are returned as errors.
func (s *Store) LoadAll(ctx context.Context) ([]models.SavedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.kv.Get(ctx, HistoryKey)
	if errors.Is(err, ErrNotFound) {
		return []models.SavedEntry{}, nil
	}
	if errors.Is(err, ErrCorrupt) {
		s.log.Warn("discarding malformed history", zap.Error(err))
		return []models.SavedEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	var entries []models.SavedEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.log.Warn("discarding malformed history", zap.Error(err))
		return []models.SavedEntry{}, nil
	}
	if entries == nil {
		entries = []models.SavedEntry{}
	}
	return entries, nil
}

// SaveAll replaces the stored collection with entries.
func (s *Store) SaveAll(ctx context.Context, entries []models.SavedEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entries == nil {
		entries = []models.SavedEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Set(ctx, HistoryKey, raw); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
