package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileBlob stores the document as a single JSON file. Writes go to a temp
// file in the same directory and are renamed over the target.
type FileBlob struct {
	path string
	mu   sync.RWMutex
}

// NewFileBlob creates the parent directory of path if needed.
func NewFileBlob(path string) (*FileBlob, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("file blob: mkdir %s: %w", filepath.Dir(path), err)
	}
	return &FileBlob{path: path}, nil
}

func (f *FileBlob) Load(context.Context) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("file blob: read %s: %w", f.path, err)
	}
	return data, nil
}

func (f *FileBlob) Save(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("file blob: create temp: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
			slog.Debug("file blob temp cleanup failed", "path", tmpPath, "error", rmErr)
		}
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("file blob: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("file blob: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("file blob: close temp: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		cleanup()
		return fmt.Errorf("file blob: rename: %w", err)
	}
	return nil
}

func (f *FileBlob) Close() error { return nil }

// Path returns the file backing the blob.
func (f *FileBlob) Path() string { return f.path }
