package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/retail-backoffice/internal/infrastructure/store"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Header keys carried by every change-feed message, so consumers can route on them
// without decoding the payload
const (
	HeaderEventType     = "event_type"
	HeaderAggregateType = "aggregate_type"
)

// Producer is the change feed for ledger and order events. It satisfies store.Publisher.
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
	now    func() time.Time
}

var _ store.Publisher = (*Producer)(nil)

func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:  kafka.TCP(brokers...),
			Topic: topic,
			// keyed by product or order ID: one entity's events stay on one partition, in order
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
		},
		logger: logger.Named("kafka").With(zap.String("topic", topic)),
		now:    time.Now,
	}
}

// Publish appends one event to the change feed. Callers treat failures as best effort;
// the committed state is already durable.
func (p *Producer) Publish(ctx context.Context, key string, event any) error {
	msg, err := changeMessage(key, event, p.now())
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("change feed write for %s: %w", key, err)
	}
	p.logger.Debug("change event published",
		zap.String("key", key),
		zap.String("event_type", headerValue(msg, HeaderEventType)),
	)
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// changeMessage encodes an event; envelopes also get their type headers
func changeMessage(key string, event any, at time.Time) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode change event for %s: %w", key, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  at,
	}
	if e, ok := event.(store.Event); ok {
		msg.Headers = []kafka.Header{
			{Key: HeaderEventType, Value: []byte(e.EventType)},
			{Key: HeaderAggregateType, Value: []byte(e.AggregateType)},
		}
	}
	return msg, nil
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
