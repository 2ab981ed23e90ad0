package mocks

import (
	"context"
	"sync"
)

// MockRepository is a mock implementation of store.Repository for testing
type MockRepository[T any] struct {
	mu    sync.RWMutex
	items []T

	// For tracking calls in tests
	LoadCalls int
	SaveCalls [][]T
	LoadErr   error
	SaveErr   error
	// SaveErrAfter lets that many saves succeed before SaveErr applies
	SaveErrAfter int
}

// NewMockRepository creates a new MockRepository seeded with items
func NewMockRepository[T any](items ...T) *MockRepository[T] {
	return &MockRepository[T]{
		items:     append([]T(nil), items...),
		SaveCalls: make([][]T, 0),
	}
}

// Load returns the stored items or LoadErr
func (m *MockRepository[T]) Load(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LoadCalls++
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return append([]T(nil), m.items...), nil
}

// Save records the call and stores items unless SaveErr is set
func (m *MockRepository[T]) Save(ctx context.Context, items []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := append([]T(nil), items...)
	m.SaveCalls = append(m.SaveCalls, snapshot)
	if m.SaveErr != nil && len(m.SaveCalls) > m.SaveErrAfter {
		return m.SaveErr
	}
	m.items = snapshot
	return nil
}

// Items returns the last successfully saved items
func (m *MockRepository[T]) Items() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]T(nil), m.items...)
}

// Reset clears recorded calls and injected errors
func (m *MockRepository[T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadCalls = 0
	m.SaveCalls = make([][]T, 0)
	m.LoadErr = nil
	m.SaveErr = nil
}
