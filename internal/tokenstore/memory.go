package tokenstore

import (
	"context"
	"sync"
)

// MemoryStore keeps the value in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	value string
}

// Compile-time check to ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Read returns the value held in memory.
func (m *MemoryStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.value == "" {
		return "", ErrNotFound
	}
	return m.value, nil
}

// Write replaces the value held in memory.
func (m *MemoryStore) Write(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.value = value
	m.mu.Unlock()
	return nil
}

// Delete clears the value held in memory.
func (m *MemoryStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.value = ""
	m.mu.Unlock()
	return nil
}
