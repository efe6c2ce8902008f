package engine

import "github.com/TimurManjosov/gotiers/internal/rules"

// Table is the rule table grouped by gene. It is immutable once built:
// accessors hand out copies, so a Table can be shared between goroutines.
type Table struct {
	rows   []rules.Rule
	byGene map[string][]rules.Rule
	genes  []string
}

// NewTable groups rows by gene, preserving their relative order. Disabled
// rules are kept so the full table can be inspected; Classify skips them.
func NewTable(rows []rules.Rule) *Table {
	t := &Table{
		rows:   make([]rules.Rule, len(rows)),
		byGene: make(map[string][]rules.Rule),
	}
	copy(t.rows, rows)

	for _, r := range t.rows {
		if _, seen := t.byGene[r.Gene]; !seen {
			t.genes = append(t.genes, r.Gene)
		}
		t.byGene[r.Gene] = append(t.byGene[r.Gene], r)
	}
	return t
}

// Len returns the number of rules, disabled ones included.
func (t *Table) Len() int {
	return len(t.rows)
}

// Has reports whether gene has at least one rule.
func (t *Table) Has(gene string) bool {
	_, ok := t.byGene[gene]
	return ok
}

// Genes returns the genes in order of first appearance.
func (t *Table) Genes() []string {
	out := make([]string, len(t.genes))
	copy(out, t.genes)
	return out
}

// Rules returns the rules stored for gene in table order.
func (t *Table) Rules(gene string) []rules.Rule {
	stored := t.byGene[gene]
	if stored == nil {
		return nil
	}
	out := make([]rules.Rule, len(stored))
	copy(out, stored)
	return out
}

// All returns every rule in load order.
func (t *Table) All() []rules.Rule {
	out := make([]rules.Rule, len(t.rows))
	copy(out, t.rows)
	return out
}

// EnabledCount returns the number of rules that take part in matching.
func (t *Table) EnabledCount() int {
	n := 0
	for _, r := range t.rows {
		if r.Enabled() {
			n++
		}
	}
	return n
}
