package email

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNoRecipient is returned when an order has no customer email to write to
var ErrNoRecipient = errors.New("order has no customer email")

// Message is a composed email
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Service composes emails. Delivery is a stub: messages are logged, not sent.
type Service struct {
	from   string
	logger *zap.Logger
}

// NewService creates a new email service
func NewService(from string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		from:   from,
		logger: logger.Named("email"),
	}
}

// SendOrderStatus sends the current status of an order to the customer
func (s *Service) SendOrderStatus(to, orderID, customerName, status string, total decimal.Decimal, items []OrderItem) (*Message, error) {
	if to == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoRecipient, orderID)
	}
	msg := &Message{
		From:    s.from,
		To:      to,
		Subject: fmt.Sprintf("Your order %s is %s", shortID(orderID), status),
		Body:    BuildOrderStatusBody(orderID, customerName, status, total, items),
	}
	s.send(msg)
	return msg, nil
}

// SendStockAlert notifies operators that a product needs restocking
func (s *Service) SendStockAlert(to, productID, productName, level string, quantity, minStock int) *Message {
	msg := &Message{
		From:    s.from,
		To:      to,
		Subject: fmt.Sprintf("Stock alert: %s", productName),
		Body:    BuildStockAlertBody(productID, productName, level, quantity, minStock),
	}
	s.send(msg)
	return msg
}

func (s *Service) send(msg *Message) {
	s.logger.Info("email queued",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("body_bytes", len(msg.Body)),
	)
}

func shortID(orderID string) string {
	if len(orderID) > 12 {
		return orderID[:12]
	}
	return orderID
}
