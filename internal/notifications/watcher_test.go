package notifications

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"stock-inventory/internal/products"
)

type stubLister struct {
	allFn func(ctx context.Context) ([]products.Product, error)
	calls int
}

func (s *stubLister) All(ctx context.Context) ([]products.Product, error) {
	s.calls++
	return s.allFn(ctx)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatcher_HandleEvent(t *testing.T) {
	catalog := []products.Product{
		{ID: 1, Name: "Cable", Quantity: 1, MinQty: 5},
		{ID: 2, Name: "Mouse", Quantity: 9, MinQty: 5},
	}
	lister := &stubLister{
		allFn: func(_ context.Context) ([]products.Product, error) {
			return catalog, nil
		},
	}
	w := NewWatcher(lister, testLogger())

	var order []string
	w.Subscribe(func(_ context.Context, items []products.Product) {
		if len(items) != 2 {
			t.Fatalf("want 2 items, got %d", len(items))
		}
		order = append(order, "first")
	})
	w.Subscribe(func(_ context.Context, _ []products.Product) {
		order = append(order, "second")
	})

	err := w.HandleEvent(context.Background(), products.ProductEvent{EventType: products.EventUpdated, ProductID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected dispatch order: %v", order)
	}
	if lister.calls != 1 {
		t.Fatalf("want 1 fetch, got %d", lister.calls)
	}
}

func TestWatcher_Unsubscribe(t *testing.T) {
	lister := &stubLister{
		allFn: func(_ context.Context) ([]products.Product, error) {
			return nil, nil
		},
	}
	w := NewWatcher(lister, testLogger())

	calls := 0
	unsubscribe := w.Subscribe(func(_ context.Context, _ []products.Product) {
		calls++
	})

	if err := w.HandleEvent(context.Background(), products.ProductEvent{EventType: products.EventCreated}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	unsubscribe()
	unsubscribe()
	if err := w.HandleEvent(context.Background(), products.ProductEvent{EventType: products.EventDeleted}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 1 {
		t.Fatalf("want 1 call, got %d", calls)
	}
}

func TestWatcher_HandleEventListError(t *testing.T) {
	errDB := errors.New("db down")
	lister := &stubLister{
		allFn: func(_ context.Context) ([]products.Product, error) {
			return nil, errDB
		},
	}
	w := NewWatcher(lister, testLogger())
	w.Subscribe(func(_ context.Context, _ []products.Product) {
		t.Fatal("subscriber must not run when the fetch fails")
	})

	err := w.HandleEvent(context.Background(), products.ProductEvent{EventType: products.EventUpdated})
	if !errors.Is(err, errDB) {
		t.Fatalf("want %v, got %v", errDB, err)
	}
}
