package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/atinyakov/QRKeeper/internal/models"
)

func TestFileKV_GetMissingFile(t *testing.T) {
	kv := NewFileKV(filepath.Join(t.TempDir(), "storage.json"))
	if _, err := kv.Get(context.Background(), HistoryKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get error = %v; want ErrNotFound", err)
	}
}

func TestFileKV_SetGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	kv := NewFileKV(path)
	ctx := context.Background()

	if err := kv.Set(ctx, "a", []byte(`[1,2]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := kv.Set(ctx, "b", []byte(`"x"`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := kv.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `[1,2]` {
		t.Errorf("Get = %s; want [1,2]", got)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(buf, &raw); err != nil {
		t.Fatalf("file is not a JSON object: %v", err)
	}
	if len(raw) != 2 {
		t.Errorf("expected 2 keys on disk, got %d", len(raw))
	}
}

func TestFileKV_RejectsInvalidJSON(t *testing.T) {
	kv := NewFileKV(filepath.Join(t.TempDir(), "storage.json"))
	if err := kv.Set(context.Background(), "a", []byte("{nope")); err == nil {
		t.Error("expected error for invalid JSON value")
	}
}

func TestStore_FileRoundTrip(t *testing.T) {
	store := NewStore(NewFileKV(filepath.Join(t.TempDir(), "storage.json")), nil)
	ctx := context.Background()

	entries, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty history, got %d", len(entries))
	}

	want := []models.SavedEntry{{
		ID:        "1",
		Type:      models.TypeWiFi,
		Value:     "WIFI:T:WPA;S:Home Net;P:secret123;H:true;;",
		Title:     "Home Net",
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Settings:  models.DefaultRenderSettings(),
	}}
	if err := store.SaveAll(ctx, want); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	got, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" || got[0].Value != want[0].Value || !got[0].CreatedAt.Equal(want[0].CreatedAt) {
		t.Errorf("unexpected entries: %+v", got)
	}
}

func TestStore_MalformedHistoryIsEmpty(t *testing.T) {
	kv := NewFileKV(filepath.Join(t.TempDir(), "storage.json"))
	if err := kv.Set(context.Background(), HistoryKey, []byte(`{"not":"a list"}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entries, err := NewStore(kv, nil).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty history, got %+v", entries)
	}
}

func TestStore_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	kv := NewFileKV(path)

	if _, err := kv.Get(context.Background(), HistoryKey); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Get error = %v; want ErrCorrupt", err)
	}

	core, logs := observer.New(zapcore.WarnLevel)
	store := NewStore(kv, zap.New(core))
	entries, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty history, got %+v", entries)
	}
	if n := logs.FilterMessage("discarding malformed history").Len(); n != 1 {
		t.Errorf("expected 1 warning, got %d", n)
	}

	// The next save replaces the corrupt file.
	if err := store.SaveAll(context.Background(), []models.SavedEntry{{ID: "1", Type: models.TypeText, Value: "x"}}); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}
	entries, err = store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "1" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}
