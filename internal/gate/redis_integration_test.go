//go:build integration

package gate

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	rdb, err := Connect(ctx, fmt.Sprintf("redis://%s:%s/0", host, port.Port()))
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	return rdb
}

func TestRedis_GetSet(t *testing.T) {
	rdb := setupTestRedis(t)
	ctx := context.Background()

	t.Run("empty slot reads as never", func(t *testing.T) {
		g := NewRedis(rdb, "empty")
		day, err := g.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if day != "" {
			t.Fatalf("want empty day, got %q", day)
		}
	})

	t.Run("set overwrites previous day", func(t *testing.T) {
		g := NewRedis(rdb, "ops")
		if err := g.Set(ctx, "2026-03-01"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := g.Set(ctx, "2026-03-02"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		day, _ := g.Get(ctx)
		if day != "2026-03-02" {
			t.Fatalf("want 2026-03-02, got %q", day)
		}
	})

	t.Run("slots are independent", func(t *testing.T) {
		a := NewRedis(rdb, "a")
		b := NewRedis(rdb, "b")
		_ = a.Set(ctx, "2026-03-01")
		day, _ := b.Get(ctx)
		if day != "" {
			t.Fatalf("want slot b empty, got %q", day)
		}
	})

	t.Run("health", func(t *testing.T) {
		if err := NewRedis(rdb, "x").Health(); err != nil {
			t.Fatalf("health check failed: %v", err)
		}
	})
}
