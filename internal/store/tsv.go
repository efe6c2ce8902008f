package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TimurManjosov/gotiers/internal/loader"
	"github.com/TimurManjosov/gotiers/internal/rules"
)

// TSVStore keeps the rule table in a tab-separated file. The file is read on
// every ListRules call so edits made by curators are picked up on reload.
type TSVStore struct {
	path string
}

// NewTSVStore returns a store over the table file at path. The file must exist.
func NewTSVStore(path string) (*TSVStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("missing input tsv file %s: %w", path, err)
	}
	return &TSVStore{path: path}, nil
}

// Path returns the table file location.
func (s *TSVStore) Path() string {
	return s.path
}

// ListRules reads and schema-checks the table file.
func (s *TSVStore) ListRules(ctx context.Context) ([]rules.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return loader.LoadTSVFile(s.path)
}

// ReplaceRules rewrites the table file. The new content is written to a
// temporary file in the same directory and renamed over the old one.
func (s *TSVStore) ReplaceRules(ctx context.Context, rows []rules.Rule) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tiers-*.tsv")
	if err != nil {
		return fmt.Errorf("failed to create temp table: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := loader.WriteTSV(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace table: %w", err)
	}
	return nil
}

// Close is a no-op; the file is not held open.
func (s *TSVStore) Close() error {
	return nil
}
