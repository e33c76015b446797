package products

import (
	"math"
	"strings"
	"time"
)

// Record is a product row as held by the store. Numeric columns are nullable
// and may carry values written by older clients.
type Record struct {
	ID          int64
	Name        string
	Category    *string
	Description *string
	Quantity    *int64
	MinQty      *int64
	Price       *float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Normalize turns a stored record into a Product with every field set.
// Missing or negative quantities become 0, a missing or negative threshold
// becomes defaultMinQty and an unusable price becomes 0.
func Normalize(r Record, defaultMinQty int) Product {
	if defaultMinQty < 0 {
		defaultMinQty = DefaultMinQty
	}

	p := Product{
		ID:        r.ID,
		Name:      strings.TrimSpace(r.Name),
		MinQty:    defaultMinQty,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Category != nil {
		p.Category = strings.TrimSpace(*r.Category)
	}
	if r.Description != nil {
		p.Description = strings.TrimSpace(*r.Description)
	}
	if r.Quantity != nil && *r.Quantity > 0 {
		p.Quantity = int(*r.Quantity)
	}
	if r.MinQty != nil && *r.MinQty >= 0 {
		p.MinQty = int(*r.MinQty)
	}
	if r.Price != nil && !math.IsNaN(*r.Price) && !math.IsInf(*r.Price, 0) && *r.Price > 0 {
		p.Price = *r.Price
	}
	return p
}

// MaxCount is the largest quantity or threshold the INTEGER columns hold.
const MaxCount = math.MaxInt32

// Validate checks an input before it is written to the store.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrInvalidName
	}
	if in.Quantity < 0 || in.Quantity > MaxCount {
		return ErrInvalidQuantity
	}
	if in.MinQty < 0 || in.MinQty > MaxCount {
		return ErrInvalidMinQty
	}
	if in.Price < 0 || math.IsNaN(in.Price) {
		return ErrInvalidPrice
	}
	return nil
}
