package readmodel

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStockReadModel joins a catalog product with its inventory record
type ProductStockReadModel struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	CategoryID  string          `json:"category_id"`
	Price       decimal.Decimal `json:"price"`
	Status      string          `json:"status"`
	Quantity    int             `json:"quantity"`
	MinStock    int             `json:"min_stock"`
	MaxStock    int             `json:"max_stock"`
	Level       string          `json:"level"`
	HasRecord   bool            `json:"has_record"`
	LastUpdated *time.Time      `json:"last_updated,omitempty"`
}

// StockAlertsReadModel is the alerting view of the ledger
type StockAlertsReadModel struct {
	OutOfStock []ProductStockReadModel `json:"out_of_stock"`
	LowStock   []ProductStockReadModel `json:"low_stock"`
	Stale      []string                `json:"stale"`
}

type StatusTotalReadModel struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type ProductRevenueReadModel struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// OrderStatsReadModel aggregates orders by status. Revenue counts completed orders only.
type OrderStatsReadModel struct {
	TotalOrders      int                             `json:"total_orders"`
	ByStatus         map[string]StatusTotalReadModel `json:"by_status"`
	Revenue          decimal.Decimal                 `json:"revenue"`
	CancelledAmount  decimal.Decimal                 `json:"cancelled_amount"`
	RevenueByProduct []ProductRevenueReadModel       `json:"revenue_by_product"`
}
