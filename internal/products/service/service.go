package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"stock-inventory/internal/products"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	// maxPage keeps (page-1)*limit inside the int32 range for any limit.
	maxPage         = math.MaxInt32 / maxPageSize
)

type Repository interface {
	Create(ctx context.Context, in products.Input) (products.Product, error)
	Get(ctx context.Context, id int64) (products.Product, error)
	Update(ctx context.Context, id int64, in products.Input) (products.Product, error)
	SetQuantity(ctx context.Context, id int64, quantity int) (products.Product, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q products.Query, limit, offset int) ([]products.Product, error)
	Count(ctx context.Context, q products.Query) (int64, error)
	All(ctx context.Context) ([]products.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

type Publisher interface {
	Publish(ctx context.Context, event products.ProductEvent) error
}

type Counters struct {
	Created prometheus.Counter
	Updated prometheus.Counter
	Deleted prometheus.Counter
}

type Service struct {
	repo          Repository
	publisher     Publisher
	logger        *slog.Logger
	counters      Counters
	defaultMinQty int
}

// New builds the catalog service. defaultMinQty replaces a zero threshold on
// create and update.
func New(repo Repository, publisher Publisher, logger *slog.Logger, counters Counters, defaultMinQty int) *Service {
	return &Service{
		repo:          repo,
		publisher:     publisher,
		logger:        logger,
		counters:      counters,
		defaultMinQty: defaultMinQty,
	}
}

func (s *Service) CreateProduct(ctx context.Context, in products.Input) (products.Product, error) {
	in, err := s.prepare(in)
	if err != nil {
		return products.Product{}, err
	}

	product, err := s.repo.Create(ctx, in)
	if err != nil {
		return products.Product{}, fmt.Errorf("repo create: %w", err)
	}

	s.publish(ctx, products.EventCreated, product)
	s.counters.Created.Inc()
	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (products.Product, error) {
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return products.Product{}, fmt.Errorf("repo get: %w", err)
	}
	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, in products.Input) (products.Product, error) {
	in, err := s.prepare(in)
	if err != nil {
		return products.Product{}, err
	}

	product, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return products.Product{}, fmt.Errorf("repo update: %w", err)
	}

	s.publish(ctx, products.EventUpdated, product)
	s.counters.Updated.Inc()
	return product, nil
}

// UpdateQuantity sets the stock count of a product. Negative values are
// stored as zero.
func (s *Service) UpdateQuantity(ctx context.Context, id int64, quantity int) (products.Product, error) {
	if quantity < 0 {
		quantity = 0
	}
	if quantity > products.MaxCount {
		return products.Product{}, products.ErrInvalidQuantity
	}

	product, err := s.repo.SetQuantity(ctx, id, quantity)
	if err != nil {
		return products.Product{}, fmt.Errorf("repo set quantity: %w", err)
	}

	s.publish(ctx, products.EventUpdated, product)
	s.counters.Updated.Inc()
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("repo delete: %w", err)
	}

	if err := s.publisher.Publish(ctx, products.ProductEvent{
		EventType: products.EventDeleted,
		ProductID: id,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		s.logger.Error("publish product_deleted event failed",
			"product_id", id,
			"error", err,
		)
	}

	s.counters.Deleted.Inc()
	return nil
}

func (s *Service) ListProducts(ctx context.Context, q products.Query, page, limit int) ([]products.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	offset := (page - 1) * limit
	q.Search = strings.TrimSpace(q.Search)
	q.Category = strings.TrimSpace(q.Category)

	items, err := s.repo.List(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repo list: %w", err)
	}

	total, err := s.repo.Count(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("repo count: %w", err)
	}

	return items, total, nil
}

// AllProducts returns the full catalog for dashboards, reports and alerts.
func (s *Service) AllProducts(ctx context.Context) ([]products.Product, error) {
	items, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo all: %w", err)
	}
	return items, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo categories: %w", err)
	}
	return categories, nil
}

func (s *Service) prepare(in products.Input) (products.Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	if in.MinQty == 0 {
		in.MinQty = s.defaultMinQty
	}
	if err := in.Validate(); err != nil {
		return products.Input{}, err
	}
	return in, nil
}

func (s *Service) publish(ctx context.Context, eventType string, p products.Product) {
	quantity, minQty := p.Quantity, p.MinQty
	if err := s.publisher.Publish(ctx, products.ProductEvent{
		EventType: eventType,
		ProductID: p.ID,
		Name:      p.Name,
		Quantity:  &quantity,
		MinQty:    &minQty,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		s.logger.Error("publish "+eventType+" event failed",
			"product_id", p.ID,
			"error", err,
		)
	}
}
