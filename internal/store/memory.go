package store

import (
	"context"
	"slices"
	"sync"
)

// MemoryBlob keeps the document in process memory. Used by tests and the
// "memory" backend.
type MemoryBlob struct {
	mu    sync.RWMutex
	data  []byte
	saves int
}

func NewMemoryBlob(initial []byte) *MemoryBlob {
	return &MemoryBlob{data: slices.Clone(initial)}
}

func (m *MemoryBlob) Load(context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.data), nil
}

func (m *MemoryBlob) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = slices.Clone(data)
	m.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (m *MemoryBlob) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func (m *MemoryBlob) Close() error { return nil }
