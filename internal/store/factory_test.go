package store

import (
	"context"
	"strings"
	"testing"

	"github.com/TimurManjosov/gotiers/internal/testutil"
)

func TestNewStore_Memory(t *testing.T) {
	ctx := context.Background()
	st, err := NewStore(ctx, "memory", "")
	if err != nil {
		t.Fatalf("NewStore('memory') failed: %v", err)
	}
	defer st.Close()

	if err := st.ReplaceRules(ctx, testutil.SampleRules()); err != nil {
		t.Fatalf("ReplaceRules failed: %v", err)
	}
	rows, err := st.ListRules(ctx)
	if err != nil {
		t.Fatalf("ListRules failed: %v", err)
	}
	if len(rows) != len(testutil.SampleRules()) {
		t.Errorf("Expected %d rules, got %d", len(testutil.SampleRules()), len(rows))
	}
}

func TestNewStore_TSV(t *testing.T) {
	st, err := NewStore(context.Background(), "tsv", testutil.WriteSampleTSV(t))
	if err != nil {
		t.Fatalf("NewStore('tsv') failed: %v", err)
	}
	if _, ok := st.(*TSVStore); !ok {
		t.Fatalf("Expected *TSVStore, got %T", st)
	}
}

func TestNewStore_UnsupportedType(t *testing.T) {
	_, err := NewStore(context.Background(), "invalid-type", "")
	if err == nil {
		t.Fatal("Expected error for unsupported store type")
	}
	expectedMsg := "unsupported store type: invalid-type"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}
}

func TestNewStore_PostgresWithInvalidDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "postgres", "invalid-dsn")
	if err == nil {
		t.Fatal("Expected error for invalid DSN")
	}
	if !strings.Contains(err.Error(), "failed to create postgres pool") {
		t.Errorf("Expected pool creation error, got: %v", err)
	}
}
