package gate

import (
	"context"
	"sync"

	"stock-inventory/internal/lowstock"
)

// Memory is an in-process gate slot for tests. It does not survive restarts
// and is not shared between processes, so Open never returns it.
type Memory struct {
	mu  sync.Mutex
	day lowstock.Day
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(_ context.Context) (lowstock.Day, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.day, nil
}

func (m *Memory) Set(_ context.Context, day lowstock.Day) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.day = day
	return nil
}

func (m *Memory) Health() error { return nil }
