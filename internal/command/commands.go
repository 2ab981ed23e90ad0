package command

import (
	"github.com/example/retail-backoffice/internal/domain/order"
	"github.com/shopspring/decimal"
)

// Product Commands
type CreateProduct struct {
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	CategoryID   string          `json:"category_id"`
	Price        decimal.Decimal `json:"price"`
	Status       string          `json:"status"`
	InitialStock int             `json:"initial_stock"`
}

type UpdateProduct struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CategoryID  string          `json:"category_id"`
	Price       decimal.Decimal `json:"price"`
	Status      string          `json:"status"`
}

type DeleteProduct struct {
	ProductID string `json:"product_id"`
}

// Inventory Commands
type AdjustStock struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Mode      string `json:"mode"`
}

type StockIn struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type StockOut struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type SetThresholds struct {
	ProductID string `json:"product_id"`
	MinStock  int    `json:"min_stock"`
	MaxStock  int    `json:"max_stock"`
}

// Order Commands
type CreateOrder struct {
	ID              string                `json:"id,omitempty"`
	CustomerID      string                `json:"customer_id"`
	CustomerName    string                `json:"customer_name"`
	CustomerEmail   string                `json:"customer_email"`
	Items           []order.LineItem      `json:"items"`
	PaymentMethod   string                `json:"payment_method"`
	PaymentStatus   string                `json:"payment_status"`
	ShippingAddress order.ShippingAddress `json:"shipping_address"`
}

type UpdateOrderStatus struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type DeleteOrder struct {
	OrderID string `json:"order_id"`
}

type SendOrderNotification struct {
	OrderID string `json:"order_id"`
	Channel string `json:"channel"`
}
