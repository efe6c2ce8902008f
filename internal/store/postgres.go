package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TimurManjosov/gotiers/internal/rules"
)

// Schema creates the rule table. position keeps the curated row order, which
// first-match classification depends on.
const Schema = `
CREATE TABLE IF NOT EXISTS tier_rules (
	position            integer PRIMARY KEY,
	gene                text    NOT NULL,
	exon                text    NOT NULL DEFAULT '',
	intron              text    NOT NULL DEFAULT '',
	alteration          text    NOT NULL DEFAULT '',
	alteration_comments text    NOT NULL DEFAULT '',
	consequence         text    NOT NULL DEFAULT '',
	hgvsp               text    NOT NULL DEFAULT '',
	exclusion_criteria  text    NOT NULL DEFAULT '',
	escat               text    NOT NULL DEFAULT '',
	treatments          text    NOT NULL DEFAULT '',
	treatment_lines     text    NOT NULL DEFAULT '',
	comments            text    NOT NULL DEFAULT '',
	clinical_trials     text    NOT NULL DEFAULT '',
	tier                text    NOT NULL DEFAULT '',
	automatized         boolean NOT NULL DEFAULT true,
	skip                boolean NOT NULL DEFAULT false,
	version             text    NOT NULL DEFAULT '',
	date                text    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS tier_rules_gene_idx ON tier_rules (gene, position);
`

const tierRulesTable = "tier_rules"

// ruleColumns lists the database columns in rules.Rule field order so rows
// scan with pgx.RowToStructByPos.
var ruleColumns = []string{
	"gene",
	"exon",
	"intron",
	"alteration",
	"alteration_comments",
	"consequence",
	"hgvsp",
	"exclusion_criteria",
	"escat",
	"treatments",
	"treatment_lines",
	"comments",
	"clinical_trials",
	"tier",
	"automatized",
	"skip",
	"version",
	"date",
}

var listRulesSQL = "SELECT " + strings.Join(ruleColumns, ", ") + " FROM " + tierRulesTable + " ORDER BY position"

// PostgresStore is a PostgreSQL implementation of the Store interface.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Pool returns the underlying connection pool.
func (p *PostgresStore) Pool() *pgxpool.Pool {
	return p.pool
}

// EnsureSchema creates the rule table if it does not exist.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// ListRules retrieves every rule in table order.
func (p *PostgresStore) ListRules(ctx context.Context) ([]rules.Rule, error) {
	rows, err := p.pool.Query(ctx, listRulesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[rules.Rule])
	if err != nil {
		return nil, fmt.Errorf("failed to scan rules: %w", err)
	}
	return cloneRules(out), nil
}

// ReplaceRules deletes the stored table and bulk-copies rows in one transaction.
func (p *PostgresStore) ReplaceRules(ctx context.Context, rows []rules.Rule) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM "+tierRulesTable); err != nil {
		return fmt.Errorf("failed to clear rules: %w", err)
	}

	columns := append([]string{"position"}, ruleColumns...)
	_, err = tx.CopyFrom(ctx, pgx.Identifier{tierRulesTable}, columns, pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		return ruleValues(i, rows[i]), nil
	}))
	if err != nil {
		return fmt.Errorf("failed to copy rules: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rules: %w", err)
	}
	return nil
}

// Close closes the database connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

// ruleValues returns the COPY values for r at the given position.
func ruleValues(position int, r rules.Rule) []any {
	return []any{
		int32(position),
		r.Gene,
		r.Exon,
		r.Intron,
		r.Alteration,
		r.AlterationComments,
		r.Consequence,
		r.HGVSp,
		r.ExclusionCriteria,
		r.ESCAT,
		r.Treatments,
		r.TreatmentLines,
		r.Comments,
		r.ClinicalTrials,
		r.Tier,
		r.Automatized,
		r.Skip,
		r.Version,
		r.Date,
	}
}
