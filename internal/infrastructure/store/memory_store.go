package store

import (
	"context"
	"sync"
)

// MemoryStore keeps a collection in process memory. Used when no database is configured
// and in tests.
type MemoryStore[T any] struct {
	mu    sync.RWMutex
	items []T
}

func NewMemoryStore[T any](initial ...T) *MemoryStore[T] {
	return &MemoryStore[T]{items: append([]T(nil), initial...)}
}

// Load returns a copy of the stored collection
func (ms *MemoryStore[T]) Load(ctx context.Context) ([]T, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return append([]T(nil), ms.items...), nil
}

// Save replaces the stored collection
func (ms *MemoryStore[T]) Save(ctx context.Context, items []T) error {
	if err := ctx.Err(); err != nil {
		return errUnavailable("save", err)
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.items = append([]T(nil), items...)
	return nil
}
