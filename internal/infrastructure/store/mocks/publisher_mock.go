package mocks

import (
	"context"
	"sync"
)

// MockPublisher records published change events
type MockPublisher struct {
	mu sync.Mutex

	PublishCalls []PublishCall
	PublishErr   error
}

// PublishCall records parameters passed to Publish
type PublishCall struct {
	Key   string
	Event any
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{PublishCalls: make([]PublishCall, 0)}
}

func (m *MockPublisher) Publish(ctx context.Context, key string, event any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishCalls = append(m.PublishCalls, PublishCall{Key: key, Event: event})
	return m.PublishErr
}

// Events returns the published events in order
func (m *MockPublisher) Events() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]any, len(m.PublishCalls))
	for i, c := range m.PublishCalls {
		events[i] = c.Event
	}
	return events
}
