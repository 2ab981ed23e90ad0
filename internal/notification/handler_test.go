package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/example/retail-backoffice/internal/domain/inventory"
	"github.com/example/retail-backoffice/internal/domain/order"
	"github.com/example/retail-backoffice/internal/email"
	"github.com/example/retail-backoffice/internal/infrastructure/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return zap.New(core), logs
}

func encode(t *testing.T, aggregateID, aggregateType, eventType string, data any) []byte {
	t.Helper()
	event, err := store.NewEvent(aggregateID, aggregateType, eventType, data)
	require.NoError(t, err)
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return value
}

// ============================================
// Notifier Tests
// ============================================

func TestNotifier_Email(t *testing.T) {
	logger, logs := observedLogger()
	n := NewNotifier(email.NewService("shop@example.com", logger), logger)

	err := n.Notify(context.Background(), order.Notification{
		Channel:       order.ChannelEmail,
		OrderID:       "ORD-1",
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Status:        order.StatusShipping,
		TotalAmount:   decimal.NewFromInt(20),
		Items:         []order.LineItem{{ProductID: "p1", ProductName: "Mug", Quantity: 2, Price: decimal.NewFromInt(10)}},
	})

	require.NoError(t, err)
	entries := logs.FilterMessage("email queued").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "alice@example.com", entries[0].ContextMap()["to"])
}

func TestNotifier_EmailWithoutAddress(t *testing.T) {
	n := NewNotifier(email.NewService("shop@example.com", nil), nil)

	err := n.Notify(context.Background(), order.Notification{Channel: order.ChannelEmail, OrderID: "ORD-1"})

	assert.ErrorIs(t, err, email.ErrNoRecipient)
}

func TestNotifier_InApp(t *testing.T) {
	logger, logs := observedLogger()
	n := NewNotifier(email.NewService("shop@example.com", logger), logger)

	err := n.Notify(context.Background(), order.Notification{
		Channel: order.ChannelNotification,
		OrderID: "ORD-1",
		Status:  order.StatusPending,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("in-app notification sent").Len())
	assert.Equal(t, 0, logs.FilterMessage("email queued").Len())
}

// ============================================
// Handler Tests
// ============================================

func TestHandler_StockAlertSendsEmail(t *testing.T) {
	logger, logs := observedLogger()
	h := NewHandler(email.NewService("shop@example.com", logger), "ops@example.com", logger)

	value := encode(t, "p1", inventory.AggregateType, inventory.EventStockAlertRaised, inventory.StockAlertRaised{
		ProductID:   "p1",
		ProductName: "Mug",
		Level:       inventory.LevelLowStock,
		Quantity:    3,
		MinStock:    10,
		RaisedAt:    time.Now(),
	})

	require.NoError(t, h.HandleEvent(context.Background(), []byte("p1"), value))
	entries := logs.FilterMessage("email queued").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "ops@example.com", entries[0].ContextMap()["to"])
	assert.Equal(t, "Stock alert: Mug", entries[0].ContextMap()["subject"])
}

func TestHandler_StatusChangedWithFailures(t *testing.T) {
	logger, logs := observedLogger()
	h := NewHandler(email.NewService("shop@example.com", logger), "ops@example.com", logger)

	value := encode(t, "ORD-1", order.AggregateType, order.EventOrderStatusChanged, order.OrderStatusChanged{
		OrderID: "ORD-1",
		From:    order.StatusPending,
		To:      order.StatusCancelled,
		Failed:  2,
	})

	require.NoError(t, h.HandleEvent(context.Background(), []byte("ORD-1"), value))
	assert.Equal(t, 1, logs.FilterMessage("order cancelled with unrestored stock").Len())
}

func TestHandler_IgnoresOtherEvents(t *testing.T) {
	logger, logs := observedLogger()
	h := NewHandler(email.NewService("shop@example.com", logger), "ops@example.com", logger)

	value := encode(t, "p1", inventory.AggregateType, inventory.EventAdjusted, inventory.Adjusted{ProductID: "p1"})

	require.NoError(t, h.HandleEvent(context.Background(), nil, value))
	assert.Equal(t, 0, logs.Len())
}

func TestHandler_InvalidPayload(t *testing.T) {
	h := NewHandler(email.NewService("shop@example.com", nil), "ops@example.com", nil)

	err := h.HandleEvent(context.Background(), nil, []byte("{not json"))

	assert.Error(t, err)
}
