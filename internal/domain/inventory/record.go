package inventory

import (
	"errors"
	"time"
)

const AggregateType = "Inventory"

const (
	DefaultMinStock = 10
	DefaultMaxStock = 1000
)

var (
	ErrNotFound         = errors.New("inventory record not found")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidMode      = errors.New("invalid adjustment mode")
	ErrInvalidThreshold = errors.New("invalid stock thresholds")
)

// Record is the stock entry of one product
type Record struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	MinStock    int       `json:"min_stock"`
	MaxStock    int       `json:"max_stock"`
	LastUpdated time.Time `json:"last_updated"`
}

// Level is the stock-alert classification of a record
type Level string

const (
	LevelOutOfStock Level = "out_of_stock"
	LevelLowStock   Level = "low_stock"
	LevelNormal     Level = "normal"
)

// Level classifies the record. Zero is always out of stock, even when MinStock is zero.
func (r Record) Level() Level {
	switch {
	case r.Quantity == 0:
		return LevelOutOfStock
	case r.Quantity <= r.MinStock:
		return LevelLowStock
	default:
		return LevelNormal
	}
}

// worseThan reports whether l is a more severe stock situation than other
func (l Level) worseThan(other Level) bool {
	return l.severity() > other.severity()
}

func (l Level) severity() int {
	switch l {
	case LevelOutOfStock:
		return 2
	case LevelLowStock:
		return 1
	default:
		return 0
	}
}

// Mode selects how Adjust applies its delta
type Mode string

const (
	ModeSet      Mode = "set"
	ModeAdd      Mode = "add"
	ModeSubtract Mode = "subtract"
)

// AdjustResult reports what an adjustment actually did.
// Truncated is set when a subtraction exceeded the available quantity and was clamped at zero.
type AdjustResult struct {
	Record    Record `json:"record"`
	Mode      Mode   `json:"mode"`
	Previous  int    `json:"previous_quantity"`
	Requested int    `json:"requested_quantity"`
	Applied   int    `json:"applied_quantity"`
	Truncated bool   `json:"truncated"`
}

// apply computes the new quantity for a validated delta
func apply(current, delta int, mode Mode) (next, applied int, truncated bool) {
	switch mode {
	case ModeSet:
		return delta, delta, false
	case ModeAdd:
		return current + delta, delta, false
	default:
		if delta > current {
			return 0, current, true
		}
		return current - delta, delta, false
	}
}

func validateDelta(current, delta int, mode Mode) error {
	const maxInt = int(^uint(0) >> 1)
	switch mode {
	case ModeSet:
		if delta < 0 {
			return ErrInvalidQuantity
		}
	case ModeAdd:
		if delta <= 0 || current > maxInt-delta {
			return ErrInvalidQuantity
		}
	case ModeSubtract:
		if delta <= 0 {
			return ErrInvalidQuantity
		}
	default:
		return ErrInvalidMode
	}
	return nil
}

func newRecord(id, productID, productName string, now time.Time) Record {
	return Record{
		ID:          id,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    0,
		MinStock:    DefaultMinStock,
		MaxStock:    DefaultMaxStock,
		LastUpdated: now,
	}
}
