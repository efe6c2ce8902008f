package loader

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimurManjosov/gotiers/internal/engine"
	"github.com/TimurManjosov/gotiers/internal/rules"
	"github.com/TimurManjosov/gotiers/internal/testutil"
)

func TestReadTSV_Sample(t *testing.T) {
	rows, err := ReadTSV(strings.NewReader(testutil.SampleTSV))
	require.NoError(t, err)
	require.Len(t, rows, testutil.SampleRuleCount)

	first := rows[0]
	assert.Equal(t, "EGFR", first.Gene)
	assert.Equal(t, "21", first.Exon)
	assert.Equal(t, "L858R", first.HGVSp, "p. prefix is stripped on load")
	assert.Equal(t, "Osimertinib", first.Treatments)
	assert.True(t, first.Automatized)
	assert.False(t, first.Skip)

	assert.Equal(t, "G12C", rows[4].ExclusionCriteria)
	assert.False(t, rows[9].Automatized, "BRAF V600K is not automatized")
	assert.True(t, rows[10].Skip, "ALK fusion is skipped")
}

func TestReadTSV_ColumnSubset(t *testing.T) {
	in := "Gene\tAlteration\tTier\nERBB2\tAmplification\t1\nTP53\tMutation\n"
	rows, err := ReadTSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "1", rows[0].Tier)
	assert.True(t, rows[0].Automatized, "absent Automatized column defaults to enabled")
	assert.False(t, rows[0].Skip)
	assert.Equal(t, "", rows[1].Tier, "short row pads with empty cells")
}

func TestReadTSV_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "unknown column", in: "Gene\tChromosome\tTier\nEGFR\t7\t1\n"},
		{name: "duplicate column", in: "Gene\tTier\tTier\nEGFR\t1\t2\n"},
		{name: "missing gene column", in: "Alteration\tTier\nSNV\t1\n"},
		{name: "row wider than header", in: "Gene\tTier\nEGFR\t1\textra\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTSV(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTSVSchema), "got %v", err)
		})
	}
}

func TestReadTSV_EmptyAndBlankLines(t *testing.T) {
	rows, err := ReadTSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = ReadTSV(strings.NewReader("\ufeffGene\tTier\n\nEGFR\t1\n\t\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "EGFR", rows[0].Gene)
}

func TestLoadTSVFile(t *testing.T) {
	path := testutil.WriteSampleTSV(t)
	rows, err := LoadTSVFile(path)
	require.NoError(t, err)
	assert.Len(t, rows, testutil.SampleRuleCount)

	_, err = LoadTSVFile(filepath.Join(t.TempDir(), "missing.tsv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestWriteTSV_Roundtrip(t *testing.T) {
	rows, err := ReadTSV(strings.NewReader(testutil.SampleTSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, rows))

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, len(rules.Columns), len(strings.Split(header, "\t")))

	again, err := ReadTSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, again)
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, "1.0.0", testutil.SampleRules()))
	assert.Contains(t, buf.String(), "version: 1.0.0")
	assert.Contains(t, buf.String(), "exclusion_criteria: G12C")

	rows, err := ReadYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleRules(), rows)
}

func TestReadYAML_AutomatizedDefaultsToEnabled(t *testing.T) {
	in := `rules:
  - gene: EGFR
    exon: "21"
    alteration: Mutation
    hgvsp: p.L858R
    tier: "1"
  - gene: BRAF
    alteration: SNV
    hgvsp: V600K
    tier: "2"
    automatized: false
`
	rows, err := ReadYAML(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Automatized, "absent automatized key keeps the rule enabled")
	assert.True(t, rows[0].Enabled())
	assert.False(t, rows[1].Automatized, "explicit false disables the rule")

	res, err := engine.NewClassifier(engine.NewTable(rows)).Classify(engine.Query{
		Gene: "EGFR", Alteration: "SNV", Exon: "21", HGVSp: "L858R",
	})
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, "1", res.Tier)

	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, rows))
	again, err := ReadTSV(&buf)
	require.NoError(t, err)
	assert.True(t, again[0].Automatized, "import writes the rule as automatized")
	assert.False(t, again[1].Automatized)
}

func TestReadYAML_Validation(t *testing.T) {
	in := `rules:
  - gene: EGFR
    alteration: Mutation
    hgvsp: p.L858R
    tier: "1"
    automatized: true
  - gene: ""
    alteration: SNV
    tier: "2"
`
	_, err := ReadYAML(strings.NewReader(in))
	require.Error(t, err)
	assert.True(t, errors.Is(err, rules.ErrInvalidRule))
	assert.Contains(t, err.Error(), "rule 1")

	rows, err := ReadYAML(strings.NewReader(strings.SplitN(in, "  - gene: \"\"", 2)[0]))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "L858R", rows[0].HGVSp)

	_, err = ReadYAML(strings.NewReader("rules:\n  - gene: EGFR\n    colour: red\n"))
	assert.Error(t, err, "unknown fields are rejected")

	rows, err = ReadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
