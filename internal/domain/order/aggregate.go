package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const AggregateType = "Order"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipping   Status = "shipping"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

const PaymentPending = "pending"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderExists       = errors.New("order already exists")
	ErrEmptyOrder        = errors.New("order must have at least one item")
	ErrInvalidLineItem   = errors.New("line item needs a product, a positive quantity and a non-negative price")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrInvalidChannel    = errors.New("invalid notification channel")
)

// validTransitions defines allowed state transitions
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipping, StatusCancelled},
	StatusShipping:   {StatusCompleted, StatusCancelled},
	StatusCompleted:  {}, // terminal state
	StatusCancelled:  {}, // terminal state
}

// ParseStatus accepts any casing
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

func (s Status) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo checks if the order can transition to the target status.
// Staying in the same status is always allowed.
func (o *Order) CanTransitionTo(target Status) bool {
	if o.Status == target {
		return true
	}
	for _, s := range validTransitions[o.Status] {
		if s == target {
			return true
		}
	}
	return false
}

func (o *Order) transitionError(target Status) error {
	return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, o.Status, target)
}

type ShippingAddress struct {
	Address  string `json:"address"`
	City     string `json:"city"`
	District string `json:"district"`
}

// LineItem is a snapshot taken when the order is created; later catalog or stock
// changes never alter it.
type LineItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type Order struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	Items           []LineItem      `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          Status          `json:"status"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentStatus   string          `json:"payment_status"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (o Order) clone() Order {
	o.Items = append([]LineItem(nil), o.Items...)
	return o
}

// NewOrder describes an order to place. ID is optional.
type NewOrder struct {
	ID              string          `json:"id,omitempty"`
	CustomerID      string          `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	Items           []LineItem      `json:"items"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentStatus   string          `json:"payment_status"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
}

func validateItems(items []LineItem) error {
	if len(items) == 0 {
		return ErrEmptyOrder
	}
	for i, item := range items {
		if strings.TrimSpace(item.ProductID) == "" || item.Quantity <= 0 || item.Price.IsNegative() {
			return fmt.Errorf("%w: item %d", ErrInvalidLineItem, i)
		}
	}
	return nil
}

func totalOf(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// TransitionResult reports a status change and its inventory side effects.
// Warnings lists line items whose stock could not be restored on cancellation.
type TransitionResult struct {
	Order      Order      `json:"order"`
	Previous   Status     `json:"previous_status"`
	OutOfGraph bool       `json:"out_of_graph"`
	Restored   []LineItem `json:"restored"`
	Warnings   []string   `json:"warnings,omitempty"`
}

// Channel selects how a customer notification is delivered
type Channel string

const (
	ChannelEmail        Channel = "email"
	ChannelNotification Channel = "notification"
)

// ParseChannel defaults to email
func ParseChannel(s string) (Channel, error) {
	switch Channel(strings.ToLower(strings.TrimSpace(s))) {
	case "", ChannelEmail:
		return ChannelEmail, nil
	case ChannelNotification:
		return ChannelNotification, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidChannel, s)
}

// Notification is what a Notifier delivers to a customer
type Notification struct {
	Channel       Channel
	OrderID       string
	CustomerName  string
	CustomerEmail string
	Status        Status
	TotalAmount   decimal.Decimal
	Items         []LineItem
}
