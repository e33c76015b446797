package lowstock

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"stock-inventory/internal/products"
)

// SystemName labels every alert in the outgoing template.
const SystemName = "SIMS (Stock Inventory Management System)"

const alertTimeLayout = "15:04:05"

type AlertContent struct {
	Subject    string  `json:"subject"`
	ItemCount  int     `json:"item_count"`
	ItemsList  string  `json:"items_list"`
	TotalValue float64 `json:"total_value"`
	AlertDate  string  `json:"alert_date"`
	AlertTime  string  `json:"alert_time"`
}

// ComposeAlert builds the alert body for the given low-stock items. now is
// captured as the alert date and time.
func ComposeAlert(items []products.Product, now time.Time) (AlertContent, error) {
	if len(items) == 0 {
		return AlertContent{}, ErrEmptyInput
	}

	var (
		total float64
		lines = make([]string, 0, len(items))
	)
	for _, p := range items {
		total += p.Value()
		lines = append(lines, fmt.Sprintf("%s: %d remaining (min: %d) - $%.2f each",
			p.Name, p.Quantity, p.MinQty, p.Price))
	}

	return AlertContent{
		Subject:    fmt.Sprintf("Low Stock Alert - %d Items Need Attention", len(items)),
		ItemCount:  len(items),
		ItemsList:  strings.Join(lines, "\n"),
		TotalValue: total,
		AlertDate:  now.Format(time.DateOnly),
		AlertTime:  now.Format(alertTimeLayout),
	}, nil
}

// TemplateParams flattens the alert into the parameters the email template
// expects.
func (a AlertContent) TemplateParams(recipient string) map[string]string {
	return map[string]string{
		"to_email":    recipient,
		"to_name":     displayName(recipient),
		"subject":     a.Subject,
		"item_count":  strconv.Itoa(a.ItemCount),
		"items_list":  a.ItemsList,
		"total_value": strconv.FormatFloat(a.TotalValue, 'f', 2, 64),
		"alert_date":  a.AlertDate,
		"alert_time":  a.AlertTime,
		"system_name": SystemName,
	}
}

func displayName(address string) string {
	name, _, _ := strings.Cut(address, "@")
	return name
}
