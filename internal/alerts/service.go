// Package alerts runs the low-stock notifier on behalf of the HTTP API and
// the notifications worker, one call at a time.
package alerts

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"stock-inventory/internal/lowstock"
	"stock-inventory/internal/products"
)

type ProductSource interface {
	AllProducts(ctx context.Context) ([]products.Product, error)
}

// SourceFunc adapts a plain function to ProductSource.
type SourceFunc func(ctx context.Context) ([]products.Product, error)

func (f SourceFunc) AllProducts(ctx context.Context) ([]products.Product, error) {
	return f(ctx)
}

type Notifier interface {
	AttemptNotify(ctx context.Context, items []products.Product, recipient string, today lowstock.Day) lowstock.Outcome
	SendNow(ctx context.Context, items []products.Product, recipient string) lowstock.Outcome
	Gate(ctx context.Context) (lowstock.Gate, error)
	Today() lowstock.Day
	Configured() bool
}

type Status struct {
	Today           lowstock.Day       `json:"today" example:"2026-03-01"`
	LastNotified    lowstock.Day       `json:"last_notified,omitempty" example:"2026-02-28"`
	CanNotify       bool               `json:"can_notify" example:"true"`
	EmailConfigured bool               `json:"email_configured" example:"true"`
	Recipient       string             `json:"recipient,omitempty" example:"ops@example.com"`
	LowStock        []products.Product `json:"low_stock"`
}

// Service serializes notifier calls so two triggers sharing the gate slot
// cannot both observe an unsent day.
type Service struct {
	mu        sync.Mutex
	source    ProductSource
	notifier  Notifier
	recipient string
}

func New(source ProductSource, notifier Notifier, recipient string) *Service {
	return &Service{
		source:    source,
		notifier:  notifier,
		recipient: strings.TrimSpace(recipient),
	}
}

// Check runs the gated policy over an already fetched product list.
func (s *Service) Check(ctx context.Context, items []products.Product) lowstock.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.notifier.AttemptNotify(ctx, items, s.recipient, s.notifier.Today())
}

// CheckCurrent fetches the catalog and runs the gated policy over it.
func (s *Service) CheckCurrent(ctx context.Context) (lowstock.Outcome, error) {
	items, err := s.source.AllProducts(ctx)
	if err != nil {
		return lowstock.Outcome{}, fmt.Errorf("load products: %w", err)
	}
	return s.Check(ctx, items), nil
}

// SendTest sends an alert for the current low-stock items without consulting
// or moving the gate. An empty recipient falls back to the configured one.
func (s *Service) SendTest(ctx context.Context, recipient string) (lowstock.Outcome, error) {
	items, err := s.source.AllProducts(ctx)
	if err != nil {
		return lowstock.Outcome{}, fmt.Errorf("load products: %w", err)
	}

	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		recipient = s.recipient
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.notifier.SendNow(ctx, items, recipient), nil
}

func (s *Service) Status(ctx context.Context) (Status, error) {
	items, err := s.source.AllProducts(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("load products: %w", err)
	}

	gate, err := s.notifier.Gate(ctx)
	if err != nil {
		return Status{}, err
	}

	today := s.notifier.Today()
	return Status{
		Today:           today,
		LastNotified:    gate.LastNotified,
		CanNotify:       lowstock.ShouldNotify(gate, today),
		EmailConfigured: s.notifier.Configured(),
		Recipient:       s.recipient,
		LowStock:        lowstock.Evaluate(items),
	}, nil
}
