package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/TimurManjosov/gotiers/internal/cli"
	"github.com/TimurManjosov/gotiers/internal/client"
	"github.com/TimurManjosov/gotiers/internal/engine"
	"github.com/TimurManjosov/gotiers/internal/rules"
	"github.com/TimurManjosov/gotiers/internal/store"
)

// source is where commands read rules from: a local table or a server.
type source interface {
	Classify(ctx context.Context, q engine.Query) (engine.Result, error)
	Genes(ctx context.Context) ([]string, error)
	Rules(ctx context.Context, gene string) ([]rules.Rule, error)
	All(ctx context.Context) ([]rules.Rule, error)
}

func openSource(ctx context.Context) (source, error) {
	p, err := cli.ResolveProfile(profile, baseURL, apiKey)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	if p != nil {
		log.Debug().Str("base_url", p.BaseURL).Msg("using remote server")
		return remoteSource{c: client.NewClient(p.BaseURL, p.APIKey)}, nil
	}

	log.Debug().Str("table", tablePath).Msg("using local table")
	st, err := store.NewTSVStore(tablePath)
	if err != nil {
		return nil, err
	}
	rows, err := st.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	table := engine.NewTable(rows)
	return localSource{table: table, classifier: engine.NewClassifier(table)}, nil
}

type localSource struct {
	table      *engine.Table
	classifier *engine.Classifier
}

func (s localSource) Classify(_ context.Context, q engine.Query) (engine.Result, error) {
	return s.classifier.Classify(q)
}

func (s localSource) Genes(context.Context) ([]string, error) {
	return s.table.Genes(), nil
}

func (s localSource) Rules(_ context.Context, gene string) ([]rules.Rule, error) {
	rows := s.table.Rules(gene)
	if rows == nil {
		return nil, fmt.Errorf("gene %s has no rules", gene)
	}
	return rows, nil
}

func (s localSource) All(context.Context) ([]rules.Rule, error) {
	return s.table.All(), nil
}

type remoteSource struct {
	c *client.Client
}

func (s remoteSource) Classify(ctx context.Context, q engine.Query) (engine.Result, error) {
	return s.c.Classify(ctx, q)
}

func (s remoteSource) Genes(ctx context.Context) ([]string, error) {
	return s.c.Genes(ctx)
}

func (s remoteSource) Rules(ctx context.Context, gene string) ([]rules.Rule, error) {
	return s.c.Rules(ctx, gene)
}

// All reassembles the table gene by gene. Rule order within a gene is kept.
func (s remoteSource) All(ctx context.Context) ([]rules.Rule, error) {
	genes, err := s.c.Genes(ctx)
	if err != nil {
		return nil, err
	}
	var out []rules.Rule
	for _, g := range genes {
		rows, err := s.c.Rules(ctx, g)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch rules for %s: %w", g, err)
		}
		out = append(out, rows...)
	}
	return out, nil
}
