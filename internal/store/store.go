package store

import (
	"context"

	"github.com/TimurManjosov/gotiers/internal/rules"
)

// Store defines the interface for rule table persistence.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// ListRules returns every rule in table order, disabled rules included.
	// Returns an empty slice if the table is empty.
	ListRules(ctx context.Context) ([]rules.Rule, error)

	// ReplaceRules swaps the whole table for rows, preserving their order.
	// Readers observe either the old or the new table, never a mix.
	ReplaceRules(ctx context.Context, rows []rules.Rule) error

	// Close releases any resources held by the store.
	// After Close is called, the store should not be used.
	Close() error
}

// cloneRules returns a copy of rows that is never nil.
func cloneRules(rows []rules.Rule) []rules.Rule {
	out := make([]rules.Rule, len(rows))
	copy(out, rows)
	return out
}
