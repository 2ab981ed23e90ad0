package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const AggregateType = "Product"

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductExists   = errors.New("product already exists")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrInvalidName     = errors.New("name is required")
	ErrInvalidStatus   = errors.New("invalid product status")
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CategoryID  string          `json:"category_id"`
	Price       decimal.Decimal `json:"price"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ParseStatus accepts any casing; an empty value means active
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusActive:
		return StatusActive, nil
	case StatusInactive:
		return StatusInactive, nil
	}
	return "", ErrInvalidStatus
}

// NewProduct describes a product to add to the catalog. ID is optional.
type NewProduct struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CategoryID  string          `json:"category_id"`
	Price       decimal.Decimal `json:"price"`
	Status      string          `json:"status"`
}

// ProductUpdate replaces the editable fields of a product
type ProductUpdate struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CategoryID  string          `json:"category_id"`
	Price       decimal.Decimal `json:"price"`
	Status      string          `json:"status"`
}

func validate(name string, price decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}
