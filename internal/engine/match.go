package engine

import (
	"strings"

	"github.com/TimurManjosov/gotiers/internal/rules"
)

// Check updates the eligibility of one candidate rule for a variant.
// Checks run in a fixed order and each receives the verdict of the previous ones.
type Check interface {
	Apply(eligible bool, v variant, r rules.Rule) bool
}

var checks = []Check{
	alterationCheck{},
	intronCheck{},
	exonCheck{},
	consequenceCheck{},
	hgvspCheck{},
}

// eligible runs every check against r, starting from true.
func eligible(v variant, r rules.Rule) bool {
	ok := true
	for _, c := range checks {
		ok = c.Apply(ok, v, r)
	}
	return ok
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

type alterationCheck struct{}

func (alterationCheck) Apply(ok bool, v variant, r rules.Rule) bool {
	if r.Alteration == string(rules.AlterationMutation) {
		return ok
	}
	if !containsFold(r.Alteration, v.alteration) {
		return false
	}
	return ok
}

// intronCheck compares the query intron with the rule's Intron cell taken as
// a whole. A cell listing several introns ("13,14") therefore never matches a
// single-intron query; the verdict replaces the earlier ones.
type intronCheck struct{}

func (intronCheck) Apply(ok bool, v variant, r rules.Rule) bool {
	if v.intron == "" {
		return ok
	}
	return r.Intron == v.intron
}

// exonCheck requires an exact exon match. A rule that names an exon never
// matches a variant without one.
type exonCheck struct{}

func (exonCheck) Apply(ok bool, v variant, r rules.Rule) bool {
	if v.exon != "" {
		if v.exon != r.Exon {
			return false
		}
		return ok
	}
	if r.Exon != "" {
		return false
	}
	return ok
}

// consequenceCheck requires every comma-separated query term to appear in the
// rule's Consequence cell. "&"-joined VEP terms are compared as one term.
type consequenceCheck struct{}

func (consequenceCheck) Apply(ok bool, v variant, r rules.Rule) bool {
	if v.consequence == "" || r.Consequence == "" {
		return ok
	}
	for _, term := range strings.Split(v.consequence, ",") {
		if !containsFold(r.Consequence, term) {
			return false
		}
	}
	return ok
}

type hgvspCheck struct{}

func (hgvspCheck) Apply(ok bool, v variant, r rules.Rule) bool {
	if v.hgvsp == "" {
		return ok
	}
	hgvsp := strings.TrimPrefix(v.hgvsp, proteinPrefix)

	switch decideHGVSp(ok, hgvsp, r) {
	case hgvspAccept:
		return true
	case hgvspReject:
		return false
	default:
		return ok
	}
}

// hgvspOutcome is the effect of the protein-change check on eligibility.
type hgvspOutcome int

const (
	hgvspKeep hgvspOutcome = iota
	hgvspAccept
	hgvspReject
)

// eligibility is the state a decision row applies to.
type eligibility int

const (
	anyState eligibility = iota
	whenEligible
	whenIneligible
)

type hgvspRow struct {
	exclusion bool
	state     eligibility
	when      func(hgvsp string, r rules.Rule) bool
	outcome   hgvspOutcome
}

func always(string, rules.Rule) bool { return true }

// hgvspTable is scanned top to bottom; the first row whose mode, state and
// predicate all match decides the outcome.
//
// In exclusion mode the rule's HGVSp is a family prefix ("G12") and the
// exclusion cell names the one change the family does not cover ("G12C").
// Outside exclusion mode an exact protein match does not rescue a rule that
// an earlier check already rejected.
var hgvspTable = []hgvspRow{
	{exclusion: true, state: anyState, when: func(h string, r rules.Rule) bool { return h == r.ExclusionCriteria }, outcome: hgvspReject},
	{exclusion: true, state: anyState, when: func(h string, r rules.Rule) bool { return !strings.Contains(h, r.HGVSp) }, outcome: hgvspReject},
	{exclusion: true, state: anyState, when: always, outcome: hgvspKeep},

	{exclusion: false, state: whenEligible, when: func(_ string, r rules.Rule) bool { return r.HGVSp == "" }, outcome: hgvspKeep},
	{exclusion: false, state: whenEligible, when: func(h string, r rules.Rule) bool { return strings.Contains(h, r.HGVSp) }, outcome: hgvspAccept},
	{exclusion: false, state: whenEligible, when: always, outcome: hgvspReject},

	{exclusion: false, state: whenIneligible, when: func(h string, r rules.Rule) bool { return h == r.HGVSp }, outcome: hgvspReject},
	{exclusion: false, state: whenIneligible, when: always, outcome: hgvspReject},
}

func decideHGVSp(ok bool, hgvsp string, r rules.Rule) hgvspOutcome {
	exclusion := r.ExclusionCriteria != ""
	for _, row := range hgvspTable {
		if row.exclusion != exclusion {
			continue
		}
		if (row.state == whenEligible && !ok) || (row.state == whenIneligible && ok) {
			continue
		}
		if row.when(hgvsp, r) {
			return row.outcome
		}
	}
	return hgvspKeep
}
