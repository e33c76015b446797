package gate

import (
	"context"
	"database/sql"

	"stock-inventory/internal/lowstock"
)

type Store interface {
	lowstock.GateStore
	Health() error
}

// Open returns a Redis-backed slot when url is set and a Postgres-backed one
// in db otherwise. Both survive restarts and are shared between processes.
// The returned close func is never nil.
func Open(ctx context.Context, url, slot string, db *sql.DB) (Store, func() error, error) {
	if url == "" {
		return NewPostgres(db, slot), func() error { return nil }, nil
	}

	rdb, err := Connect(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	return NewRedis(rdb, slot), rdb.Close, nil
}
