package products

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("product not found")
	ErrInvalidName     = errors.New("product name is required")
	ErrInvalidQuantity = errors.New("quantity must be between 0 and 2147483647")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrInvalidMinQty   = errors.New("minimum quantity must be between 0 and 2147483647")
)

const (
	EventsQueue  = "products.events"
	EventCreated = "product_created"
	EventUpdated = "product_updated"
	EventDeleted = "product_deleted"
)

// DefaultMinQty is the low-stock threshold used when a product has none.
const DefaultMinQty = 5

type Product struct {
	ID          int64     `json:"id" example:"1"`
	Name        string    `json:"name" example:"USB-C cable"`
	Category    string    `json:"category" example:"Accessories"`
	Description string    `json:"description" example:"1m braided cable"`
	Quantity    int       `json:"quantity" example:"12"`
	MinQty      int       `json:"min_qty" example:"5"`
	Price       float64   `json:"price" example:"9.99"`
	CreatedAt   time.Time `json:"created_at" example:"2026-02-24T12:00:00Z"`
	UpdatedAt   time.Time `json:"updated_at" example:"2026-02-24T12:00:00Z"`
}

// IsLowStock reports whether the current stock is at or below the threshold.
func (p Product) IsLowStock() bool {
	return p.Quantity <= p.MinQty
}

// Value is the stock value of the product at its unit price.
func (p Product) Value() float64 {
	return float64(p.Quantity) * p.Price
}

// Input carries the writable fields of a product.
type Input struct {
	Name        string
	Category    string
	Description string
	Quantity    int
	MinQty      int
	Price       float64
}

type ProductEvent struct {
	EventType string    `json:"event_type"`
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Quantity  *int      `json:"quantity,omitempty"`
	MinQty    *int      `json:"min_qty,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
