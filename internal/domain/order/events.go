package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderDeleted       = "OrderDeleted"
)

type OrderCreated struct {
	OrderID       string          `json:"order_id"`
	CustomerID    string          `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Items         []LineItem      `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

type OrderStatusChanged struct {
	OrderID    string    `json:"order_id"`
	From       Status    `json:"from"`
	To         Status    `json:"to"`
	OutOfGraph bool      `json:"out_of_graph"`
	Restored   int       `json:"restored_items"`
	Failed     int       `json:"failed_items"`
	ChangedAt  time.Time `json:"changed_at"`
}

type OrderDeleted struct {
	OrderID   string    `json:"order_id"`
	Status    Status    `json:"status"`
	DeletedAt time.Time `json:"deleted_at"`
}
