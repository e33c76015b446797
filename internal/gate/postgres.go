package gate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stock-inventory/internal/lowstock"
)

// Postgres keeps one gate slot per row of alert_gates. It is the durable
// store used when no Redis URL is configured.
type Postgres struct {
	db   *sql.DB
	slot string
}

func NewPostgres(db *sql.DB, slot string) *Postgres {
	return &Postgres{db: db, slot: slot}
}

func (p *Postgres) Get(ctx context.Context) (lowstock.Day, error) {
	query := `SELECT to_char(last_notified, 'YYYY-MM-DD') FROM alert_gates WHERE slot = $1`

	var day string
	err := p.db.QueryRowContext(ctx, query, p.slot).Scan(&day)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get gate %s: %w", p.slot, err)
	}
	return lowstock.Day(day), nil
}

func (p *Postgres) Set(ctx context.Context, day lowstock.Day) error {
	query := `
		INSERT INTO alert_gates (slot, last_notified)
		VALUES ($1, $2::date)
		ON CONFLICT (slot) DO UPDATE
		SET last_notified = EXCLUDED.last_notified, updated_at = NOW()
	`

	if _, err := p.db.ExecContext(ctx, query, p.slot, string(day)); err != nil {
		return fmt.Errorf("set gate %s: %w", p.slot, err)
	}
	return nil
}

func (p *Postgres) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	return p.db.PingContext(ctx)
}
