package notification

import (
	"context"
	"encoding/json"

	"github.com/example/retail-backoffice/internal/domain/inventory"
	"github.com/example/retail-backoffice/internal/domain/order"
	"github.com/example/retail-backoffice/internal/email"
	"github.com/example/retail-backoffice/internal/infrastructure/store"
	"go.uber.org/zap"
)

// Notifier delivers order notifications to customers. Both channels are stubs:
// email is composed and logged, in-app notifications are only logged.
type Notifier struct {
	emailService *email.Service
	logger       *zap.Logger
}

func NewNotifier(emailSvc *email.Service, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{emailService: emailSvc, logger: logger.Named("notifier")}
}

// Notify implements order.Notifier
func (n *Notifier) Notify(ctx context.Context, msg order.Notification) error {
	switch msg.Channel {
	case order.ChannelNotification:
		n.logger.Info("in-app notification sent",
			zap.String("order_id", msg.OrderID),
			zap.String("customer_email", msg.CustomerEmail),
			zap.String("status", string(msg.Status)),
		)
		return nil
	default:
		items := make([]email.OrderItem, len(msg.Items))
		for i, item := range msg.Items {
			items[i] = email.OrderItem{
				ProductID: item.ProductID,
				Name:      item.ProductName,
				Quantity:  item.Quantity,
				Price:     item.Price,
			}
		}
		_, err := n.emailService.SendOrderStatus(
			msg.CustomerEmail, msg.OrderID, msg.CustomerName, string(msg.Status), msg.TotalAmount, items)
		return err
	}
}

// Handler processes change-feed events for operator alerts
type Handler struct {
	emailService *email.Service
	alertTo      string
	logger       *zap.Logger
}

// NewHandler creates a new change-feed handler; stock alerts are addressed to alertTo
func NewHandler(emailSvc *email.Service, alertTo string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		emailService: emailSvc,
		alertTo:      alertTo,
		logger:       logger.Named("alerter"),
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		h.logger.Error("failed to unmarshal event", zap.Error(err))
		return err
	}

	switch event.EventType {
	case inventory.EventStockAlertRaised:
		return h.handleStockAlert(event)
	case order.EventOrderStatusChanged:
		return h.handleStatusChanged(event)
	}
	return nil
}

func (h *Handler) handleStockAlert(event store.Event) error {
	var e inventory.StockAlertRaised
	if err := json.Unmarshal(event.Data, &e); err != nil {
		h.logger.Error("failed to unmarshal StockAlertRaised event", zap.Error(err))
		return err
	}

	h.logger.Warn("stock alert",
		zap.String("product_id", e.ProductID),
		zap.String("level", string(e.Level)),
		zap.Int("quantity", e.Quantity),
	)
	h.emailService.SendStockAlert(h.alertTo, e.ProductID, e.ProductName, string(e.Level), e.Quantity, e.MinStock)
	return nil
}

func (h *Handler) handleStatusChanged(event store.Event) error {
	var e order.OrderStatusChanged
	if err := json.Unmarshal(event.Data, &e); err != nil {
		h.logger.Error("failed to unmarshal OrderStatusChanged event", zap.Error(err))
		return err
	}

	if e.Failed > 0 {
		h.logger.Warn("order cancelled with unrestored stock",
			zap.String("order_id", e.OrderID),
			zap.Int("failed_items", e.Failed),
		)
	}
	if e.OutOfGraph {
		h.logger.Warn("order status changed outside the state graph",
			zap.String("order_id", e.OrderID),
			zap.String("from", string(e.From)),
			zap.String("to", string(e.To)),
		)
	}
	return nil
}
