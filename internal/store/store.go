package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgnsrekt/tv_watchlist/internal/watchlist"
)

// Blob persists the encoded watchlist document. Load returns (nil, nil) when
// nothing has been saved yet.
type Blob interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}

// Store runs every read-modify-write against its Blob under one mutex, so
// concurrent callers sharing a Store never overwrite each other's changes.
// Nothing is cached between calls; the Blob stays the source of truth.
type Store struct {
	blob Blob
	mu   sync.Mutex
}

func New(blob Blob) *Store {
	return &Store{blob: blob}
}

// Snapshot loads and decodes the current tree.
func (s *Store) Snapshot(ctx context.Context) (*watchlist.Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Update loads the tree, applies fn and saves the result. When fn fails
// nothing is written and its error is returned unchanged.
func (s *Store) Update(ctx context.Context, fn func(*watchlist.Tree) error) (*watchlist.Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(tree); err != nil {
		return nil, err
	}
	if err := s.save(ctx, tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Replace overwrites the whole document with tree. A non-nil before sees the
// current document under the same lock; its error aborts the replace.
func (s *Store) Replace(ctx context.Context, tree *watchlist.Tree, before func(current *watchlist.Tree) error) error {
	replacement := tree.Clone()
	_, err := s.Update(ctx, func(t *watchlist.Tree) error {
		if before != nil {
			if err := before(t); err != nil {
				return err
			}
		}
		t.Groups = replacement.Groups
		return nil
	})
	return err
}

func (s *Store) Close() error {
	return s.blob.Close()
}

func (s *Store) load(ctx context.Context) (*watchlist.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.blob.Load(ctx)
	if err != nil {
		return nil, unavailable("load watchlist", err)
	}
	tree, err := watchlist.Decode(data)
	if err != nil {
		return nil, unavailable("decode watchlist", err)
	}
	return tree, nil
}

func (s *Store) save(ctx context.Context, tree *watchlist.Tree) error {
	// Past this point the write is committed even if the caller goes away.
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := watchlist.Encode(tree)
	if err != nil {
		return unavailable("encode watchlist", err)
	}
	if err := s.blob.Save(context.WithoutCancel(ctx), data); err != nil {
		return unavailable("save watchlist", err)
	}
	slog.Debug("watchlist saved", "bytes", len(data))
	return nil
}

func unavailable(op string, err error) error {
	return watchlist.NewError(watchlist.CodeStoreUnavailable, fmt.Sprintf("%s failed", op), err)
}
