package inventory

import "time"

const (
	EventRecordCreated     = "InventoryRecordCreated"
	EventRecordDeleted     = "InventoryRecordDeleted"
	EventAdjusted          = "InventoryAdjusted"
	EventThresholdsChanged = "InventoryThresholdsChanged"
	EventStockAlertRaised  = "StockAlertRaised"
)

type RecordCreated struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type RecordDeleted struct {
	ProductID string    `json:"product_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

type Adjusted struct {
	ProductID  string    `json:"product_id"`
	Mode       Mode      `json:"mode"`
	Previous   int       `json:"previous_quantity"`
	Quantity   int       `json:"quantity"`
	Requested  int       `json:"requested_quantity"`
	Applied    int       `json:"applied_quantity"`
	Truncated  bool      `json:"truncated"`
	AdjustedAt time.Time `json:"adjusted_at"`
}

type ThresholdsChanged struct {
	ProductID string    `json:"product_id"`
	MinStock  int       `json:"min_stock"`
	MaxStock  int       `json:"max_stock"`
	ChangedAt time.Time `json:"changed_at"`
}

// StockAlertRaised is emitted when a record moves into low-stock or out-of-stock
type StockAlertRaised struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Level       Level     `json:"level"`
	Quantity    int       `json:"quantity"`
	MinStock    int       `json:"min_stock"`
	RaisedAt    time.Time `json:"raised_at"`
}
