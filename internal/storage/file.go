package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFile is the local storage file used when no path is configured.
const DefaultFile = "storage.json"

// FileKV keeps all keys in one JSON object on disk.
type FileKV struct {
	path string
	mu   sync.Mutex
}

// NewFileKV returns a FileKV writing to path.
func NewFileKV(path string) *FileKV {
	if path == "" {
		path = DefaultFile
	}
	return &FileKV{path: path}
}

func (f *FileKV) load() (map[string]json.RawMessage, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}
	defer file.Close()

	values := map[string]json.RawMessage{}
	if err := json.NewDecoder(file).Decode(&values); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %w", f.path, ErrCorrupt, err)
	}
	return values, nil
}

// Get implements KV.
func (f *FileKV) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return nil, err
	}
	v, ok := values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

// Set implements KV. The value must be valid JSON; the file is replaced
// atomically.
func (f *FileKV) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !json.Valid(value) {
		return fmt.Errorf("set %q: value is not valid JSON", key)
	}
	values, err := f.load()
	if err != nil {
		// A corrupt file is overwritten rather than blocking saves.
		values = map[string]json.RawMessage{}
	}
	values[key] = json.RawMessage(value)

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".storage-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := json.NewEncoder(tmp).Encode(values); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
