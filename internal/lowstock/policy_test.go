package lowstock

import (
	"testing"
	"time"

	"stock-inventory/internal/products"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		items   []products.Product
		wantIDs []int64
	}{
		{
			name:    "empty input",
			items:   nil,
			wantIDs: []int64{},
		},
		{
			name: "boundary is inclusive",
			items: []products.Product{
				{ID: 1, Quantity: 5, MinQty: 5},
			},
			wantIDs: []int64{1},
		},
		{
			name: "default threshold from normalization",
			items: []products.Product{
				products.Normalize(products.Record{ID: 1, Quantity: ptr[int64](5)}, products.DefaultMinQty),
				products.Normalize(products.Record{ID: 2, Quantity: ptr[int64](6)}, products.DefaultMinQty),
			},
			wantIDs: []int64{1},
		},
		{
			name: "missing quantity counts as zero",
			items: []products.Product{
				products.Normalize(products.Record{ID: 7, MinQty: ptr[int64](0)}, products.DefaultMinQty),
			},
			wantIDs: []int64{7},
		},
		{
			name: "preserves input order",
			items: []products.Product{
				{ID: 9, Quantity: 0, MinQty: 5},
				{ID: 3, Quantity: 50, MinQty: 5},
				{ID: 4, Quantity: 2, MinQty: 3},
				{ID: 1, Quantity: 10, MinQty: 10},
			},
			wantIDs: []int64{9, 4, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.items)
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("want %d items, got %d", len(tt.wantIDs), len(got))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Fatalf("item %d: want id %d, got %d", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestEvaluate_AnyOrderingKeepsSameSubset(t *testing.T) {
	items := []products.Product{
		{ID: 1, Quantity: 1, MinQty: 5},
		{ID: 2, Quantity: 9, MinQty: 5},
		{ID: 3, Quantity: 5, MinQty: 5},
	}
	reversed := []products.Product{items[2], items[1], items[0]}

	got := Evaluate(reversed)
	if len(got) != 2 || got[0].ID != 3 || got[1].ID != 1 {
		t.Fatalf("want ids [3 1], got %+v", got)
	}
}

func TestShouldNotify(t *testing.T) {
	tests := []struct {
		name  string
		gate  Gate
		today Day
		want  bool
	}{
		{name: "empty gate", gate: Gate{}, today: "2026-03-01", want: true},
		{name: "sent today", gate: Gate{LastNotified: "2026-03-01"}, today: "2026-03-01", want: false},
		{name: "sent yesterday", gate: Gate{LastNotified: "2026-02-28"}, today: "2026-03-01", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldNotify(tt.gate, tt.today); got != tt.want {
				t.Fatalf("want %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDayOf(t *testing.T) {
	ts := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)

	if got := DayOf(ts, nil); got != "2026-03-01" {
		t.Fatalf("want UTC day 2026-03-01, got %s", got)
	}

	tokyo := time.FixedZone("JST", 9*60*60)
	if got := DayOf(ts, tokyo); got != "2026-03-02" {
		t.Fatalf("want JST day 2026-03-02, got %s", got)
	}
}

func ptr[T any](v T) *T {
	return &v
}
