// Package report derives inventory health figures from a product list.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"stock-inventory/internal/lowstock"
	"stock-inventory/internal/products"
)

const (
	recentLimit       = 5
	uncategorized     = "Uncategorized"
	statusLowStock    = "Low Stock"
	statusInStock     = "In Stock"
	exportNamePattern = "inventory-report-%s.csv"
)

var csvHeader = []string{"Name", "Category", "Quantity", "Price", "Total Value", "Status"}

type Summary struct {
	TotalProducts int     `json:"total_products" example:"42"`
	TotalUnits    int     `json:"total_units" example:"1280"`
	LowStockCount int     `json:"low_stock_count" example:"3"`
	TotalValue    float64 `json:"total_value" example:"15320.50"`
}

type Dashboard struct {
	Summary  Summary            `json:"summary"`
	Recent   []products.Product `json:"recent"`
	LowStock []products.Product `json:"low_stock"`
}

type CategoryStats struct {
	Category      string  `json:"category" example:"Accessories"`
	Products      int     `json:"products" example:"7"`
	Units         int     `json:"units" example:"210"`
	Value         float64 `json:"value" example:"1830.00"`
	LowStockCount int     `json:"low_stock_count" example:"1"`
}

func Summarize(items []products.Product) Summary {
	s := Summary{TotalProducts: len(items)}
	for _, p := range items {
		s.TotalUnits += p.Quantity
		s.TotalValue += p.Value()
		if p.IsLowStock() {
			s.LowStockCount++
		}
	}
	return s
}

// BuildDashboard returns the summary, the first few products in list order
// and every low-stock product.
func BuildDashboard(items []products.Product) Dashboard {
	recent := items
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	return Dashboard{
		Summary:  Summarize(items),
		Recent:   append(make([]products.Product, 0, len(recent)), recent...),
		LowStock: lowstock.Evaluate(items),
	}
}

// ByCategory groups the list by category, sorted by category name.
func ByCategory(items []products.Product) []CategoryStats {
	index := make(map[string]*CategoryStats)
	for _, p := range items {
		name := categoryName(p)
		st, ok := index[name]
		if !ok {
			st = &CategoryStats{Category: name}
			index[name] = st
		}
		st.Products++
		st.Units += p.Quantity
		st.Value += p.Value()
		if p.IsLowStock() {
			st.LowStockCount++
		}
	}

	stats := make([]CategoryStats, 0, len(index))
	for _, st := range index {
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Category < stats[j].Category })
	return stats
}

// WriteCSV writes a header row and one row per product in list order.
func WriteCSV(w io.Writer, items []products.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, p := range items {
		status := statusInStock
		if p.IsLowStock() {
			status = statusLowStock
		}
		row := []string{
			p.Name,
			categoryName(p),
			strconv.Itoa(p.Quantity),
			strconv.FormatFloat(p.Price, 'f', 2, 64),
			strconv.FormatFloat(p.Value(), 'f', 2, 64),
			status,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for product %d: %w", p.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ExportFilename names a CSV export for the given day.
func ExportFilename(day lowstock.Day) string {
	return fmt.Sprintf(exportNamePattern, day)
}

func categoryName(p products.Product) string {
	if p.Category == "" {
		return uncategorized
	}
	return p.Category
}
