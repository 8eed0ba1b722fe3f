package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var uuidRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// Meta describes one stored backup.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Reason    string    `json:"reason,omitempty"`
	Groups    int       `json:"groups"`
	Symbols   int       `json:"symbols"`
	SizeBytes int       `json:"size_bytes"`
}

var (
	// ErrNotFound is returned when no backup carries the requested ID.
	ErrNotFound  = errors.New("backup not found")
	ErrInvalidID = errors.New("invalid backup id")
)

// Store keeps point-in-time copies of the watchlist document on disk: the
// document in <id>.json and its metadata in <id>.meta.json.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a Store and ensures the directory exists.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("backup store: mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// NewMeta returns metadata with a fresh ID for a document about to be saved.
func NewMeta(reason string, groups, symbols int) Meta {
	return Meta{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Reason:    reason,
		Groups:    groups,
		Symbols:   symbols,
	}
}

func validateID(id string) error {
	if !uuidRe.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func (s *Store) docPath(id string) string  { return filepath.Join(s.dir, id+".json") }
func (s *Store) metaPath(id string) string { return filepath.Join(s.dir, id+".meta.json") }

// Save writes the document and its metadata sidecar. SizeBytes is filled in.
func (s *Store) Save(meta Meta, doc []byte) (Meta, error) {
	if err := validateID(meta.ID); err != nil {
		return Meta{}, err
	}
	meta.SizeBytes = len(doc)

	s.mu.Lock()
	defer s.mu.Unlock()

	docPath := s.docPath(meta.ID)
	if err := os.WriteFile(docPath, doc, 0o644); err != nil {
		return Meta{}, fmt.Errorf("backup store: write document: %w", err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		_ = os.Remove(docPath)
		return Meta{}, fmt.Errorf("backup store: marshal meta: %w", err)
	}
	if err := os.WriteFile(s.metaPath(meta.ID), data, 0o644); err != nil {
		_ = os.Remove(docPath)
		return Meta{}, fmt.Errorf("backup store: write meta: %w", err)
	}
	return meta, nil
}

// Get reads backup metadata by ID.
func (s *Store) Get(id string) (Meta, error) {
	if err := validateID(id); err != nil {
		return Meta{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readMeta(id)
}

func (s *Store) readMeta(id string) (Meta, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return Meta{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Meta{}, fmt.Errorf("backup store: read meta: %w", err)
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return Meta{}, fmt.Errorf("backup store: unmarshal meta: %w", err)
	}
	return meta, nil
}

// List returns all backups, newest first.
func (s *Store) List() ([]Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(s.dir, "*.meta.json"))
	if err != nil {
		return nil, fmt.Errorf("backup store: glob: %w", err)
	}

	metas := make([]Meta, 0, len(matches))
	for _, path := range matches {
		id := strings.TrimSuffix(filepath.Base(path), ".meta.json")
		meta, err := s.readMeta(id)
		if err != nil {
			slog.Debug("backup meta skipped", "path", path, "error", err)
			continue
		}
		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].CreatedAt.After(metas[j].CreatedAt)
	})
	return metas, nil
}

// Read returns the stored document.
func (s *Store) Read(id string) ([]byte, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.docPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("backup store: read document: %w", err)
	}
	return data, nil
}

// Delete removes both files of a backup.
func (s *Store) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
	return nil
}

func (s *Store) remove(id string) {
	if err := os.Remove(s.docPath(id)); err != nil {
		slog.Debug("backup document cleanup failed", "id", id, "error", err)
	}
	if err := os.Remove(s.metaPath(id)); err != nil {
		slog.Debug("backup meta cleanup failed", "id", id, "error", err)
	}
}

// Prune keeps the newest keep backups and deletes the rest. keep <= 0 keeps
// everything. Returns the number of backups removed.
func (s *Store) Prune(keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	metas, err := s.List()
	if err != nil {
		return 0, err
	}
	if len(metas) <= keep {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, meta := range metas[keep:] {
		s.remove(meta.ID)
	}
	return len(metas) - keep, nil
}
