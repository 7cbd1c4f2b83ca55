// Package storage holds the durable key/value backends used for cart
// snapshots.
package storage

import (
	"context"
	"sync"

	"github.com/example/storefront/internal/domain"
)

type Memory struct {
	mu    sync.RWMutex
	store map[string]string
}

func NewMemory() *Memory {
	return &Memory{store: make(map[string]string)}
}

func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.store[key]
	return v, ok, nil
}

func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.store[key] = value
	m.mu.Unlock()
	return nil
}

var _ domain.Storage = (*Memory)(nil)
