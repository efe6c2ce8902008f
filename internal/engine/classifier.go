package engine

import (
	"fmt"

	"github.com/TimurManjosov/gotiers/internal/rules"
)

// Classifier assigns clinical tiers to variants from a rule table.
// It never mutates the table and is safe for concurrent use.
type Classifier struct {
	table *Table
}

// NewClassifier returns a Classifier over t.
func NewClassifier(t *Table) *Classifier {
	if t == nil {
		t = NewTable(nil)
	}
	return &Classifier{table: t}
}

// Table returns the rule table the classifier reads from.
func (c *Classifier) Table() *Table {
	return c.table
}

// Classify returns the tier of the first enabled rule of q.Gene that the
// variant satisfies. The alteration class is validated before the gene is
// looked up. An unknown gene yields no tier, or ErrMissingGene when
// q.ForceGene is set.
func (c *Classifier) Classify(q Query) (Result, error) {
	if _, err := rules.ParseAlterationClass(q.Alteration); err != nil {
		return noTier(ReasonNoMatch), err
	}

	candidates, ok := c.table.byGene[q.Gene]
	if !ok {
		if q.ForceGene {
			return noTier(ReasonGeneNotFound), fmt.Errorf("%w: gene %s not found in rule table", ErrMissingGene, q.Gene)
		}
		return noTier(ReasonGeneNotFound), nil
	}

	v := newVariant(q)
	for i, r := range candidates {
		if !r.Enabled() {
			continue
		}
		if eligible(v, r) {
			return Result{Tier: r.Tier, Matched: true, Reason: ReasonRuleMatch, RuleIndex: i}, nil
		}
	}
	return noTier(ReasonNoMatch), nil
}

// Tier is a shorthand for Classify that returns the tier and whether one was found.
func (c *Classifier) Tier(q Query) (string, bool, error) {
	res, err := c.Classify(q)
	if err != nil {
		return "", false, err
	}
	return res.Tier, res.Matched, nil
}
