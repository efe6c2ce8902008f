package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimurManjosov/gotiers/internal/api"
	"github.com/TimurManjosov/gotiers/internal/engine"
	"github.com/TimurManjosov/gotiers/internal/snapshot"
	"github.com/TimurManjosov/gotiers/internal/store"
	"github.com/TimurManjosov/gotiers/internal/testutil"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	srv := api.NewServer(store.NewMemoryStore(testutil.SampleRules()...), "admin", api.Options{AllowDowngrade: true})
	require.NoError(t, srv.RebuildSnapshot(context.Background()))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return NewClient(ts.URL+"/", "admin")
}

func TestClassify(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	res, err := c.Classify(ctx, engine.Query{Gene: "KRAS", Alteration: "SNV", Exon: "2", HGVSp: "p.G12D", Consequence: "missense_variant"})
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, "3", res.Tier)

	res, err = c.Classify(ctx, engine.Query{Gene: "TP53", Alteration: "SNV"})
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Equal(t, engine.ReasonGeneNotFound, res.Reason)

	_, err = c.Classify(ctx, engine.Query{Gene: "TP53", Alteration: "SNV", ForceGene: true})
	assert.True(t, errors.Is(err, engine.ErrMissingGene), "got %v", err)

	_, err = c.Classify(ctx, engine.Query{Gene: "EGFR", Alteration: "Banana"})
	assert.True(t, errors.Is(err, engine.ErrInvalidAlteration), "got %v", err)
}

func TestGenesRulesAndTable(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	genes, err := c.Genes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"EGFR", "KRAS", "ERBB2", "ALK"}, genes)

	rows, err := c.Rules(ctx, "EGFR")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = c.Rules(ctx, "TP53")
	assert.True(t, IsNotFound(err))

	meta, err := c.Table(ctx)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Load().ETag, meta.ETag)
}

func TestReload(t *testing.T) {
	c := newTestClient(t)

	resp, err := c.Reload(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, 6, resp.Rules)

	c.APIKey = "wrong"
	_, err = c.Reload(context.Background())
	var ae *APIError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusForbidden, ae.Status)
	assert.Equal(t, api.ErrCodeForbidden, ae.Code)
}
