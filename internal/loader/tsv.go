// Package loader reads and writes rule tables.
//
// The tab-separated table file is the source of truth curated by the
// molecular tumour board; YAML is offered for review and import/export.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/TimurManjosov/gotiers/internal/rules"
)

// ErrInvalidTSVSchema is returned when a table header carries a column outside
// the rule schema, or a row does not fit its header.
var ErrInvalidTSVSchema = errors.New("invalid tsv schema")

// LoadTSVFile reads the rule table at path.
func LoadTSVFile(path string) ([]rules.Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("missing input tsv file %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ReadTSV parses a tab-separated rule table. The first line is the header;
// any subset of rules.Columns is accepted as long as Gene is present.
// Missing trailing cells read as empty.
func ReadTSV(r io.Reader) ([]rules.Rule, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []rules.Rule{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	out := []rules.Rule{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if isBlank(record) {
			continue
		}
		if len(record) > len(columns) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d", ErrInvalidTSVSchema, line, len(record), len(columns))
		}

		// Automatized defaults to YES when the cell is absent.
		rule := rules.Rule{Automatized: true}
		for i, c := range columns {
			if i < len(record) {
				rule.SetField(c, record[i])
			}
		}
		rule.HGVSp = strings.TrimPrefix(rule.HGVSp, "p.")
		out = append(out, rule)
	}
	return out, nil
}

func parseHeader(header []string) ([]rules.Column, error) {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	columns := make([]rules.Column, len(header))
	seen := make(map[rules.Column]bool, len(header))
	for i, name := range header {
		c, err := rules.ParseColumn(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTSVSchema, err)
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidTSVSchema, name)
		}
		seen[c] = true
		columns[i] = c
	}

	if !seen[rules.ColGene] {
		return nil, fmt.Errorf("%w: missing required column %q", ErrInvalidTSVSchema, rules.ColGene)
	}
	return columns, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if f != "" {
			return false
		}
	}
	return true
}

// WriteTSV writes rows with the full schema header.
func WriteTSV(w io.Writer, rows []rules.Rule) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	header := make([]string, len(rules.Columns))
	for i, c := range rules.Columns {
		header[i] = string(c)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(rules.Columns))
	for _, r := range rows {
		for i, c := range rules.Columns {
			record[i] = r.Field(c)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row for %s: %w", r.Gene, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
