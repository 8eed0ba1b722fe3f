package backup

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func saveAt(t *testing.T, s *Store, reason string, at time.Time) Meta {
	t.Helper()
	meta := NewMeta(reason, 1, 2)
	meta.CreatedAt = at
	saved, err := s.Save(meta, []byte(`{"Default":{"description":"","stocks":[]}}`))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return saved
}

func TestSaveGetRead(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "backups"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	meta := NewMeta("manual", 3, 7)
	doc := []byte(`{"Tech":{"description":"","stocks":["AAPL"]}}`)
	saved, err := s.Save(meta, doc)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.SizeBytes != len(doc) {
		t.Fatalf("SizeBytes = %d; want %d", saved.SizeBytes, len(doc))
	}

	got, err := s.Get(meta.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Reason != "manual" || got.Groups != 3 || got.Symbols != 7 {
		t.Fatalf("Get() = %+v; want reason=manual groups=3 symbols=7", got)
	}

	data, err := s.Read(meta.ID)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !bytes.Equal(data, doc) {
		t.Fatalf("Read() = %s; want %s", data, doc)
	}
}

func TestInvalidAndMissingIDs(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	if _, err := s.Get("../etc/passwd"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(traversal) error = %v; want invalid id error", err)
	}
	missing := "123e4567-e89b-12d3-a456-426614174000"
	if _, err := s.Get(missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v; want ErrNotFound", err)
	}
	if _, err := s.Read(missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read(missing) error = %v; want ErrNotFound", err)
	}
	if err := s.Delete(missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete(missing) error = %v; want ErrNotFound", err)
	}
}

func TestListNewestFirstAndPrune(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	oldest := saveAt(t, s, "scheduled", base)
	middle := saveAt(t, s, "scheduled", base.Add(time.Hour))
	newest := saveAt(t, s, "manual", base.Add(2*time.Hour))

	metas, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(metas) != 3 || metas[0].ID != newest.ID || metas[2].ID != oldest.ID {
		t.Fatalf("List() order wrong: %+v", metas)
	}

	removed, err := s.Prune(2)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 1 {
		t.Fatalf("Prune() removed %d; want 1", removed)
	}
	if _, err := s.Get(oldest.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("oldest backup survived Prune: %v", err)
	}
	if _, err := s.Get(middle.ID); err != nil {
		t.Fatalf("middle backup lost: %v", err)
	}

	if removed, err := s.Prune(0); err != nil || removed != 0 {
		t.Fatalf("Prune(0) = (%d, %v); want (0, nil)", removed, err)
	}
}

func TestDeleteLogsDocumentCleanupFailure(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	meta := saveAt(t, s, "manual", time.Now().UTC())
	if err := os.Remove(filepath.Join(dir, meta.ID+".json")); err != nil {
		t.Fatalf("os.Remove() error = %v", err)
	}

	var buf bytes.Buffer
	oldLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() {
		slog.SetDefault(oldLogger)
	})

	if err := s.Delete(meta.ID); err != nil {
		t.Fatalf("Delete() = %v; want nil", err)
	}
	if !strings.Contains(buf.String(), "backup document cleanup failed") {
		t.Fatalf("expected document cleanup debug log, got %q", buf.String())
	}
	if _, err := os.Stat(filepath.Join(dir, meta.ID+".meta.json")); !os.IsNotExist(err) {
		t.Fatalf("meta sidecar still present after Delete: %v", err)
	}
}
