// Package gate persists the day of the last low-stock alert.
package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stock-inventory/internal/lowstock"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix          = "lowstock:last_notified:"
	healthCheckTimeout = 2 * time.Second
)

// Redis keeps one gate slot in a Redis string key.
type Redis struct {
	rdb *redis.Client
	key string
}

func NewRedis(rdb *redis.Client, slot string) *Redis {
	return &Redis{rdb: rdb, key: keyPrefix + slot}
}

// Connect parses a redis:// URL and verifies the server is reachable.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func (r *Redis) Get(ctx context.Context) (lowstock.Day, error) {
	val, err := r.rdb.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", r.key, err)
	}
	return lowstock.Day(val), nil
}

func (r *Redis) Set(ctx context.Context, day lowstock.Day) error {
	if err := r.rdb.Set(ctx, r.key, string(day), 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", r.key, err)
	}
	return nil
}

func (r *Redis) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	return r.rdb.Ping(ctx).Err()
}
