package store

import (
	"context"
	"fmt"

	mydb "github.com/TimurManjosov/gotiers/internal/db"
)

// NewStore creates a new store based on the given store type.
// Supported types: "memory", "tsv", "postgres". source is the table file
// path for "tsv" and the DSN for "postgres"; it is ignored for "memory".
func NewStore(ctx context.Context, storeType, source string) (Store, error) {
	switch storeType {
	case "memory":
		return NewMemoryStore(), nil
	case "tsv":
		return NewTSVStore(source)
	case "postgres":
		pool, err := mydb.NewPool(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		return NewPostgresStore(pool), nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeType)
	}
}
