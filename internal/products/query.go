package products

import "strings"

// SortOrder selects the ordering of catalog listings.
type SortOrder string

const (
	SortName     SortOrder = "name"
	SortQuantity SortOrder = "quantity"
	SortPrice    SortOrder = "price"
	SortLowStock SortOrder = "low_stock"
)

// ParseSort maps a query value to a SortOrder, falling back to SortName.
func ParseSort(raw string) SortOrder {
	switch SortOrder(strings.ToLower(strings.TrimSpace(raw))) {
	case SortQuantity:
		return SortQuantity
	case SortPrice:
		return SortPrice
	case SortLowStock, "lowstock":
		return SortLowStock
	default:
		return SortName
	}
}

// Query filters a catalog listing. Search matches name, description or
// category case-insensitively; Category must match exactly.
type Query struct {
	Search   string
	Category string
	Sort     SortOrder
}
