package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/atinyakov/QRKeeper/internal/models"
)

const apiEntries = "/api/entries"

// RemoteStore loads and saves the history through a QRKeeper server, so a
// terminal client can share history with it.
type RemoteStore struct {
	client *resty.Client
	log    *zap.Logger
}

// NewRemoteStore returns a RemoteStore talking to the server at baseURL.
func NewRemoteStore(baseURL string, log *zap.Logger) *RemoteStore {
	if log == nil {
		log = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetHeader("Accept", "application/json")
	return &RemoteStore{client: client, log: log}
}

// LoadAll fetches the full history from the server.
func (s *RemoteStore) LoadAll(ctx context.Context) ([]models.SavedEntry, error) {
	var entries []models.SavedEntry
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&entries).
		Get(apiEntries)
	if err != nil {
		return nil, fmt.Errorf("load failed: %w", err)
	}
	if resp.IsError() {
		s.log.Error("history load rejected by server", zap.Int("status_code", resp.StatusCode()))
		return nil, fmt.Errorf("server error: %s", strings.TrimSpace(resp.String()))
	}
	if entries == nil {
		entries = []models.SavedEntry{}
	}
	return entries, nil
}

// SaveAll replaces the server's history with entries.
func (s *RemoteStore) SaveAll(ctx context.Context, entries []models.SavedEntry) error {
	if entries == nil {
		entries = []models.SavedEntry{}
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(entries).
		Put(apiEntries)
	if err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	if resp.IsError() {
		s.log.Error("history save rejected by server", zap.Int("status_code", resp.StatusCode()))
		return fmt.Errorf("server error: %s", strings.TrimSpace(resp.String()))
	}
	return nil
}
