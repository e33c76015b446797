// Package notifications turns product change events into fresh product
// lists for the low-stock alert subscribers.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"stock-inventory/internal/products"
)

type Lister interface {
	All(ctx context.Context) ([]products.Product, error)
}

// Subscriber receives the full current product list after every change.
type Subscriber func(ctx context.Context, items []products.Product)

type Watcher struct {
	lister Lister
	logger *slog.Logger

	mu          sync.Mutex
	nextID      int
	subscribers map[int]Subscriber
	order       []int
}

func NewWatcher(lister Lister, logger *slog.Logger) *Watcher {
	return &Watcher{
		lister:      lister,
		logger:      logger,
		subscribers: make(map[int]Subscriber),
	}
}

// List fetches the full product list once.
func (w *Watcher) List(ctx context.Context) ([]products.Product, error) {
	items, err := w.lister.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

// Subscribe registers fn and returns a function that removes it again.
func (w *Watcher) Subscribe(fn Subscriber) (unsubscribe func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++
	w.subscribers[id] = fn
	w.order = append(w.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()

			delete(w.subscribers, id)
			for i, v := range w.order {
				if v == id {
					w.order = append(w.order[:i], w.order[i+1:]...)
					break
				}
			}
		})
	}
}

// HandleEvent refetches the list and hands it to every subscriber in
// registration order.
func (w *Watcher) HandleEvent(ctx context.Context, event products.ProductEvent) error {
	items, err := w.List(ctx)
	if err != nil {
		return fmt.Errorf("refresh after %s: %w", event.EventType, err)
	}

	w.logger.Debug("dispatch product list",
		"event_type", event.EventType,
		"products", len(items),
	)
	w.Publish(ctx, items)
	return nil
}

// Publish hands items to every current subscriber, one after another.
func (w *Watcher) Publish(ctx context.Context, items []products.Product) {
	for _, fn := range w.snapshot() {
		fn(ctx, items)
	}
}

func (w *Watcher) snapshot() []Subscriber {
	w.mu.Lock()
	defer w.mu.Unlock()

	fns := make([]Subscriber, 0, len(w.order))
	for _, id := range w.order {
		fns = append(fns, w.subscribers[id])
	}
	return fns
}
