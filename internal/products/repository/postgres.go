package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"stock-inventory/internal/products"
)

const (
	healthCheckTimeout = 2 * time.Second

	productColumns = `id, name, category, description, quantity, min_qty, price, created_at, updated_at`

	filterClause = `
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%' OR category ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR category = $2)
	`
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type PostgresRepository struct {
	db            *sql.DB
	defaultMinQty int
}

// NewPostgres returns a repository that normalizes every scanned row with
// defaultMinQty as the low-stock threshold fallback.
func NewPostgres(db *sql.DB, defaultMinQty int) *PostgresRepository {
	return &PostgresRepository{db: db, defaultMinQty: defaultMinQty}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scan(s rowScanner) (products.Product, error) {
	var rec products.Record
	if err := s.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Category,
		&rec.Description,
		&rec.Quantity,
		&rec.MinQty,
		&rec.Price,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return products.Product{}, err
	}
	return products.Normalize(rec, r.defaultMinQty), nil
}

func (r *PostgresRepository) Create(ctx context.Context, in products.Input) (products.Product, error) {
	query := `
		INSERT INTO products (name, category, description, quantity, min_qty, price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + productColumns

	p, err := r.scan(r.db.QueryRowContext(ctx, query,
		in.Name, in.Category, in.Description, in.Quantity, in.MinQty, in.Price,
	))
	if err != nil {
		return products.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (products.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return products.Product{}, products.ErrNotFound
	}
	if err != nil {
		return products.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, in products.Input) (products.Product, error) {
	query := `
		UPDATE products
		SET name = $2, category = $3, description = $4, quantity = $5, min_qty = $6, price = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	p, err := r.scan(r.db.QueryRowContext(ctx, query,
		id, in.Name, in.Category, in.Description, in.Quantity, in.MinQty, in.Price,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return products.Product{}, products.ErrNotFound
	}
	if err != nil {
		return products.Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	return p, nil
}

// SetQuantity overwrites the stock count, clamping it at zero.
func (r *PostgresRepository) SetQuantity(ctx context.Context, id int64, quantity int) (products.Product, error) {
	query := `
		UPDATE products
		SET quantity = GREATEST($2, 0), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	p, err := r.scan(r.db.QueryRowContext(ctx, query, id, quantity))
	if errors.Is(err, sql.ErrNoRows) {
		return products.Product{}, products.ErrNotFound
	}
	if err != nil {
		return products.Product{}, fmt.Errorf("set quantity of product %d: %w", id, err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return products.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) List(ctx context.Context, q products.Query, limit, offset int) ([]products.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products` + filterClause +
		`ORDER BY ` + r.orderBy(q.Sort) + ` LIMIT $3 OFFSET $4`

	return r.query(ctx, query, likeEscaper.Replace(q.Search), q.Category, limit, offset)
}

// All returns the whole catalog ordered by name.
func (r *PostgresRepository) All(ctx context.Context) ([]products.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name ASC, id ASC`
	return r.query(ctx, query)
}

func (r *PostgresRepository) Count(ctx context.Context, q products.Query) (int64, error) {
	query := `SELECT COUNT(*) FROM products` + filterClause

	var total int64
	if err := r.db.QueryRowContext(ctx, query, likeEscaper.Replace(q.Search), q.Category).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

func (r *PostgresRepository) Categories(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT category
		FROM products
		WHERE category IS NOT NULL AND category <> ''
		ORDER BY category
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	list := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	return r.db.PingContext(ctx)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]products.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	list := make([]products.Product, 0)
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) orderBy(sort products.SortOrder) string {
	switch sort {
	case products.SortQuantity:
		return `COALESCE(quantity, 0) DESC, id ASC`
	case products.SortPrice:
		return `COALESCE(price, 0) DESC, id ASC`
	case products.SortLowStock:
		return fmt.Sprintf(`(COALESCE(quantity, 0) <= COALESCE(min_qty, %d)) DESC, name ASC, id ASC`, r.defaultMinQty)
	default:
		return `name ASC, id ASC`
	}
}
