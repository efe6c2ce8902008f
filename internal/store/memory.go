package store

import (
	"context"
	"sync"

	"github.com/TimurManjosov/gotiers/internal/rules"
)

// MemoryStore is an in-memory implementation of the Store interface.
// It uses RWMutex for thread-safe concurrent access.
// This implementation is suitable for development, testing, or tables seeded at startup.
type MemoryStore struct {
	mu    sync.RWMutex
	rules []rules.Rule
}

// NewMemoryStore creates a new in-memory store seeded with rows.
func NewMemoryStore(rows ...rules.Rule) *MemoryStore {
	return &MemoryStore{rules: cloneRules(rows)}
}

// ListRules returns a copy of the stored rules.
func (m *MemoryStore) ListRules(ctx context.Context) ([]rules.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneRules(m.rules), nil
}

// ReplaceRules stores a copy of rows.
func (m *MemoryStore) ReplaceRules(ctx context.Context, rows []rules.Rule) error {
	next := cloneRules(rows)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = next
	return nil
}

// Close is a no-op for MemoryStore as there are no resources to release.
func (m *MemoryStore) Close() error {
	return nil
}
