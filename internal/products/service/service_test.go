package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"stock-inventory/internal/products"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type mockRepo struct {
	createFn      func(ctx context.Context, in products.Input) (products.Product, error)
	getFn         func(ctx context.Context, id int64) (products.Product, error)
	updateFn      func(ctx context.Context, id int64, in products.Input) (products.Product, error)
	setQuantityFn func(ctx context.Context, id int64, quantity int) (products.Product, error)
	deleteFn      func(ctx context.Context, id int64) error
	listFn        func(ctx context.Context, q products.Query, limit, offset int) ([]products.Product, error)
	countFn       func(ctx context.Context, q products.Query) (int64, error)
	allFn         func(ctx context.Context) ([]products.Product, error)
	categoriesFn  func(ctx context.Context) ([]string, error)
}

func (m *mockRepo) Create(ctx context.Context, in products.Input) (products.Product, error) {
	return m.createFn(ctx, in)
}
func (m *mockRepo) Get(ctx context.Context, id int64) (products.Product, error) {
	return m.getFn(ctx, id)
}
func (m *mockRepo) Update(ctx context.Context, id int64, in products.Input) (products.Product, error) {
	return m.updateFn(ctx, id, in)
}
func (m *mockRepo) SetQuantity(ctx context.Context, id int64, quantity int) (products.Product, error) {
	return m.setQuantityFn(ctx, id, quantity)
}
func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	return m.deleteFn(ctx, id)
}
func (m *mockRepo) List(ctx context.Context, q products.Query, limit, offset int) ([]products.Product, error) {
	return m.listFn(ctx, q, limit, offset)
}
func (m *mockRepo) Count(ctx context.Context, q products.Query) (int64, error) {
	return m.countFn(ctx, q)
}
func (m *mockRepo) All(ctx context.Context) ([]products.Product, error) {
	return m.allFn(ctx)
}
func (m *mockRepo) Categories(ctx context.Context) ([]string, error) {
	return m.categoriesFn(ctx)
}

type mockPublisher struct {
	events []products.ProductEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, event products.ProductEvent) error {
	m.events = append(m.events, event)
	return m.err
}

func testCounters() Counters {
	return Counters{
		Created: prometheus.NewCounter(prometheus.CounterOpts{Name: "t_created", Help: "t"}),
		Updated: prometheus.NewCounter(prometheus.CounterOpts{Name: "t_updated", Help: "t"}),
		Deleted: prometheus.NewCounter(prometheus.CounterOpts{Name: "t_deleted", Help: "t"}),
	}
}

func newTestService(repo Repository, pub Publisher) *Service {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return New(repo, pub, logger, testCounters(), products.DefaultMinQty)
}

func productFromInput(id int64, in products.Input) products.Product {
	return products.Product{
		ID:          id,
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		Quantity:    in.Quantity,
		MinQty:      in.MinQty,
		Price:       in.Price,
		CreatedAt:   time.Now(),
	}
}

func defaultRepo() *mockRepo {
	return &mockRepo{
		createFn: func(_ context.Context, in products.Input) (products.Product, error) {
			return productFromInput(1, in), nil
		},
		getFn: func(_ context.Context, id int64) (products.Product, error) {
			return products.Product{ID: id, Name: "Stored"}, nil
		},
		updateFn: func(_ context.Context, id int64, in products.Input) (products.Product, error) {
			return productFromInput(id, in), nil
		},
		setQuantityFn: func(_ context.Context, id int64, quantity int) (products.Product, error) {
			return products.Product{ID: id, Name: "Stored", Quantity: quantity, MinQty: 5}, nil
		},
		deleteFn:     func(_ context.Context, _ int64) error { return nil },
		listFn:       func(_ context.Context, _ products.Query, _, _ int) ([]products.Product, error) { return nil, nil },
		countFn:      func(_ context.Context, _ products.Query) (int64, error) { return 0, nil },
		allFn:        func(_ context.Context) ([]products.Product, error) { return nil, nil },
		categoriesFn: func(_ context.Context) ([]string, error) { return []string{}, nil },
	}
}

func TestCreateProduct(t *testing.T) {
	errDB := errors.New("db down")

	tests := []struct {
		name       string
		input      products.Input
		repoErr    error
		wantErr    error
		wantName   string
		wantMinQty int
		wantEvent  string
	}{
		{
			name:       "success",
			input:      products.Input{Name: " Phone ", Quantity: 3, MinQty: 2, Price: 10},
			wantName:   "Phone",
			wantMinQty: 2,
			wantEvent:  products.EventCreated,
		},
		{
			name:       "zero threshold gets default",
			input:      products.Input{Name: "Cable", Quantity: 3},
			wantName:   "Cable",
			wantMinQty: products.DefaultMinQty,
			wantEvent:  products.EventCreated,
		},
		{
			name:    "empty name",
			input:   products.Input{Name: "   "},
			wantErr: products.ErrInvalidName,
		},
		{
			name:    "negative quantity",
			input:   products.Input{Name: "Cable", Quantity: -1},
			wantErr: products.ErrInvalidQuantity,
		},
		{
			name:    "negative price",
			input:   products.Input{Name: "Cable", Price: -1},
			wantErr: products.ErrInvalidPrice,
		},
		{
			name:    "repo error is wrapped",
			input:   products.Input{Name: "Phone"},
			repoErr: errDB,
			wantErr: errDB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := defaultRepo()
			if tt.repoErr != nil {
				repo.createFn = func(_ context.Context, _ products.Input) (products.Product, error) {
					return products.Product{}, tt.repoErr
				}
			}
			pub := &mockPublisher{}
			svc := newTestService(repo, pub)

			product, err := svc.CreateProduct(context.Background(), tt.input)

			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want error wrapping %v, got %v", tt.wantErr, err)
				}
				if len(pub.events) != 0 {
					t.Fatalf("want no events on error, got %v", pub.events)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if product.Name != tt.wantName {
				t.Fatalf("want name %q, got %q", tt.wantName, product.Name)
			}
			if product.MinQty != tt.wantMinQty {
				t.Fatalf("want min qty %d, got %d", tt.wantMinQty, product.MinQty)
			}
			if len(pub.events) != 1 || pub.events[0].EventType != tt.wantEvent {
				t.Fatalf("want event %q, got %v", tt.wantEvent, pub.events)
			}
			if pub.events[0].Quantity == nil || *pub.events[0].Quantity != tt.input.Quantity {
				t.Fatalf("want quantity snapshot in event, got %+v", pub.events[0])
			}
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	t.Run("success publishes update", func(t *testing.T) {
		pub := &mockPublisher{}
		svc := newTestService(defaultRepo(), pub)

		p, err := svc.UpdateProduct(context.Background(), 7, products.Input{Name: "Cable", Quantity: 1, MinQty: 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ID != 7 || p.Quantity != 1 {
			t.Fatalf("unexpected product %+v", p)
		}
		if len(pub.events) != 1 || pub.events[0].EventType != products.EventUpdated {
			t.Fatalf("want product_updated event, got %v", pub.events)
		}
	})

	t.Run("not found", func(t *testing.T) {
		repo := defaultRepo()
		repo.updateFn = func(_ context.Context, _ int64, _ products.Input) (products.Product, error) {
			return products.Product{}, products.ErrNotFound
		}
		svc := newTestService(repo, &mockPublisher{})

		_, err := svc.UpdateProduct(context.Background(), 7, products.Input{Name: "Cable"})
		if !errors.Is(err, products.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})
}

func TestUpdateQuantity_ClampsAtZero(t *testing.T) {
	var gotQty int
	repo := defaultRepo()
	repo.setQuantityFn = func(_ context.Context, id int64, quantity int) (products.Product, error) {
		gotQty = quantity
		return products.Product{ID: id, Quantity: quantity, MinQty: 5}, nil
	}
	pub := &mockPublisher{}
	svc := newTestService(repo, pub)

	p, err := svc.UpdateQuantity(context.Background(), 3, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQty != 0 || p.Quantity != 0 {
		t.Fatalf("want quantity clamped to 0, repo got %d", gotQty)
	}
	if len(pub.events) != 1 || pub.events[0].EventType != products.EventUpdated {
		t.Fatalf("want product_updated event, got %v", pub.events)
	}
}

func TestUpdateQuantity_RejectsOverColumnLimit(t *testing.T) {
	repo := defaultRepo()
	repo.setQuantityFn = func(_ context.Context, _ int64, _ int) (products.Product, error) {
		t.Fatal("repo must not be called for an out of range quantity")
		return products.Product{}, nil
	}
	pub := &mockPublisher{}
	svc := newTestService(repo, pub)

	_, err := svc.UpdateQuantity(context.Background(), 3, products.MaxCount+1)
	if !errors.Is(err, products.ErrInvalidQuantity) {
		t.Fatalf("want %v, got %v", products.ErrInvalidQuantity, err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("want no events, got %v", pub.events)
	}
}

func TestDeleteProduct(t *testing.T) {
	tests := []struct {
		name      string
		id        int64
		repoErr   error
		wantErr   error
		wantEvent string
	}{
		{
			name:      "success",
			id:        42,
			wantEvent: products.EventDeleted,
		},
		{
			name:    "not found",
			id:      999,
			repoErr: products.ErrNotFound,
			wantErr: products.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := defaultRepo()
			repo.deleteFn = func(_ context.Context, _ int64) error {
				return tt.repoErr
			}
			pub := &mockPublisher{}
			svc := newTestService(repo, pub)

			err := svc.DeleteProduct(context.Background(), tt.id)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(pub.events) != 1 || pub.events[0].EventType != tt.wantEvent {
				t.Fatalf("want event %q, got %v", tt.wantEvent, pub.events)
			}
		})
	}
}

func TestListProducts(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		query     products.Query
		items     []products.Product
		total     int64
		wantLen   int
		wantTotal int64
		wantLimit int
		wantOff   int
		wantQuery products.Query
	}{
		{
			name:  "page 2 with limit 2",
			page:  2,
			limit: 2,
			items: []products.Product{
				{ID: 3, Name: "C"},
				{ID: 4, Name: "D"},
			},
			total:     10,
			wantLen:   2,
			wantTotal: 10,
			wantLimit: 2,
			wantOff:   2,
		},
		{
			name:      "defaults for invalid input",
			page:      -1,
			limit:     0,
			items:     []products.Product{},
			total:     0,
			wantLen:   0,
			wantTotal: 0,
			wantLimit: 10,
			wantOff:   0,
		},
		{
			name:      "limit capped at 100",
			page:      1,
			limit:     500,
			items:     []products.Product{},
			total:     0,
			wantLen:   0,
			wantTotal: 0,
			wantLimit: 100,
			wantOff:   0,
		},
		{
			name:      "page capped so offset stays in range",
			page:      math.MaxInt,
			limit:     100,
			items:     []products.Product{},
			wantLimit: 100,
			wantOff:   (math.MaxInt32/100 - 1) * 100,
		},
		{
			name:      "filters are trimmed",
			page:      1,
			limit:     10,
			query:     products.Query{Search: "  cable ", Category: " Power ", Sort: products.SortPrice},
			items:     []products.Product{},
			wantLimit: 10,
			wantQuery: products.Query{Search: "cable", Category: "Power", Sort: products.SortPrice},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := defaultRepo()
			repo.listFn = func(_ context.Context, q products.Query, limit, offset int) ([]products.Product, error) {
				if limit != tt.wantLimit {
					t.Fatalf("want limit %d, got %d", tt.wantLimit, limit)
				}
				if offset != tt.wantOff {
					t.Fatalf("want offset %d, got %d", tt.wantOff, offset)
				}
				if q != tt.wantQuery {
					t.Fatalf("want query %+v, got %+v", tt.wantQuery, q)
				}
				return tt.items, nil
			}
			repo.countFn = func(_ context.Context, _ products.Query) (int64, error) {
				return tt.total, nil
			}

			pub := &mockPublisher{}
			svc := newTestService(repo, pub)

			items, total, err := svc.ListProducts(context.Background(), tt.query, tt.page, tt.limit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(items) != tt.wantLen {
				t.Fatalf("want %d items, got %d", tt.wantLen, len(items))
			}
			if total != tt.wantTotal {
				t.Fatalf("want total %d, got %d", tt.wantTotal, total)
			}
		})
	}
}

func TestCreateProduct_PublishFail_StillReturnsProduct(t *testing.T) {
	repo := defaultRepo()
	pub := &mockPublisher{err: errors.New("broker down")}
	counters := testCounters()
	svc := New(repo, pub, slog.New(slog.NewJSONHandler(io.Discard, nil)), counters, products.DefaultMinQty)

	product, err := svc.CreateProduct(context.Background(), products.Input{Name: "Widget"})
	if err != nil {
		t.Fatalf("expected no error despite publish failure, got: %v", err)
	}
	if product.Name != "Widget" {
		t.Fatalf("want name Widget, got %q", product.Name)
	}
	if got := testutil.ToFloat64(counters.Created); got != 1 {
		t.Fatalf("want created counter 1, got %v", got)
	}
}

func TestAllProducts_WrapsError(t *testing.T) {
	errDB := errors.New("db down")
	repo := defaultRepo()
	repo.allFn = func(_ context.Context) ([]products.Product, error) { return nil, errDB }

	_, err := newTestService(repo, &mockPublisher{}).AllProducts(context.Background())
	if !errors.Is(err, errDB) {
		t.Fatalf("want wrapped db error, got %v", err)
	}
}
