// Package service provides the saved-code history logic, delegating
// persistence to an EntryStore.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/QRKeeper/internal/models"
	"github.com/atinyakov/QRKeeper/internal/payload"
	"github.com/atinyakov/QRKeeper/internal/render"
)

var (
	// ErrEntryNotFound is returned when no saved entry has the requested ID.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrInvalidEntry is returned by Replace for entries that cannot be stored.
	ErrInvalidEntry = errors.New("invalid entry")
)

// EntryStore defines the persistence operations needed by the HistoryService.
type EntryStore interface {
	// LoadAll returns every saved entry; an empty list when none exist.
	LoadAll(ctx context.Context) ([]models.SavedEntry, error)
	// SaveAll replaces the stored collection.
	SaveAll(ctx context.Context, entries []models.SavedEntry) error
}

// HistoryService implements saving, listing, loading and deleting
// generated codes.
type HistoryService struct {
	// store is the underlying persistence.
	store EntryStore
	codec *payload.Codec
	log   *zap.Logger
	now   func() time.Time

	// mu serialises read-modify-write cycles on the store.
	mu sync.Mutex
}

// NewHistoryService constructs a HistoryService over store. Saved payloads
// are decoded with codec on load.
func NewHistoryService(store EntryStore, codec *payload.Codec, log *zap.Logger) *HistoryService {
	if log == nil {
		log = zap.NewNop()
	}
	if codec == nil {
		codec = payload.NewCodec(log)
	}
	return &HistoryService{store: store, codec: codec, log: log, now: time.Now}
}

// Save encodes rec and appends it to the history with the given settings.
// A payload too long for a QR code is rejected. A blank title is replaced by
// the record's default title.
func (s *HistoryService) Save(ctx context.Context, rec models.Record, settings models.RenderSettings, title string) (models.SavedEntry, error) {
	if err := payload.Validate(rec); err != nil {
		return models.SavedEntry{}, err
	}
	settings = settings.Normalize()
	value := payload.Encode(rec)
	if err := render.Encodable(value, settings.ErrorCorrectionLevel); err != nil {
		return models.SavedEntry{}, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return models.SavedEntry{}, fmt.Errorf("generate id: %w", err)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = payload.DefaultTitle(rec)
	}

	entry := models.SavedEntry{
		ID:        id.String(),
		Type:      rec.Type(),
		Value:     value,
		Title:     title,
		CreatedAt: s.now(),
		Settings:  settings,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		return models.SavedEntry{}, err
	}
	if err := s.store.SaveAll(ctx, append(entries, entry)); err != nil {
		return models.SavedEntry{}, err
	}

	s.log.Info("saved qr code",
		zap.String("id", entry.ID),
		zap.String("type", string(entry.Type)),
		zap.String("title", entry.Title),
	)
	return entry, nil
}

// List returns all saved entries in save order.
func (s *HistoryService) List(ctx context.Context) ([]models.SavedEntry, error) {
	return s.store.LoadAll(ctx)
}

// Get returns the entry with the given ID.
func (s *HistoryService) Get(ctx context.Context, id string) (models.SavedEntry, error) {
	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		return models.SavedEntry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return models.SavedEntry{}, ErrEntryNotFound
}

// Load returns the entry's payload decoded back into a record, together with
// the entry's render settings.
func (s *HistoryService) Load(ctx context.Context, id string) (models.Record, models.RenderSettings, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, models.RenderSettings{}, err
	}
	rec, err := s.codec.Decode(entry.Type, entry.Value)
	if err != nil {
		return nil, models.RenderSettings{}, fmt.Errorf("load %s: %w", id, err)
	}
	return rec, entry.Settings, nil
}

// Delete removes the entry with the given ID.
func (s *HistoryService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		return err
	}
	kept := make([]models.SavedEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return ErrEntryNotFound
	}
	if err := s.store.SaveAll(ctx, kept); err != nil {
		return err
	}
	s.log.Info("deleted qr code", zap.String("id", id))
	return nil
}

// Replace overwrites the whole history, as pushed by a remote client.
// Entries with an empty ID or unknown type are rejected.
func (s *HistoryService) Replace(ctx context.Context, entries []models.SavedEntry) error {
	for i, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("entry %d: empty id: %w", i, ErrInvalidEntry)
		}
		if !e.Type.Valid() {
			return fmt.Errorf("entry %s: %w: %w", e.ID, ErrInvalidEntry, models.ErrUnknownType)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.SaveAll(ctx, entries)
}
