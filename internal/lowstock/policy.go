// Package lowstock decides which products are low on stock and whether an
// alert about them may be sent today.
package lowstock

import (
	"time"

	"stock-inventory/internal/products"
)

// Day is a calendar date in YYYY-MM-DD form. The zero value means "never".
type Day string

// DayOf returns the calendar day of t in loc. A nil loc means UTC.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	return Day(t.In(loc).Format(time.DateOnly))
}

// Gate is the once-per-day throttle state for one notification slot.
type Gate struct {
	LastNotified Day `json:"last_notified,omitempty"`
}

// Evaluate returns the low-stock products in input order.
func Evaluate(items []products.Product) []products.Product {
	low := make([]products.Product, 0)
	for _, p := range items {
		if p.IsLowStock() {
			low = append(low, p)
		}
	}
	return low
}

// ShouldNotify reports whether no alert has been sent on today yet.
func ShouldNotify(g Gate, today Day) bool {
	return g.LastNotified != today
}
