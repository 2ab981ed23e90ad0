package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is a change notification emitted after a committed mutation
type Event struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     string          `json:"event_type"`
	Data          json.RawMessage `json:"data"`
	Timestamp     time.Time       `json:"timestamp"`
}

// NewEvent wraps data into an Event envelope
func NewEvent(aggregateID, aggregateType, eventType string, data any) (Event, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          jsonData,
		Timestamp:     time.Now(),
	}, nil
}

// Publisher delivers change events to the change feed
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// NopPublisher discards events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, key string, event any) error { return nil }
