package engine

// Reason explains how a classification was reached.
type Reason string

const (
	ReasonRuleMatch    Reason = "RULE_MATCH"
	ReasonNoMatch      Reason = "NO_MATCH"
	ReasonGeneNotFound Reason = "GENE_NOT_FOUND"
)

// Query describes one annotated variant. Optional fields are empty when the
// annotation has no value; the "." placeholder is treated the same way.
type Query struct {
	Gene        string `json:"gene"`
	Alteration  string `json:"alteration"`
	Exon        string `json:"exon,omitempty"`
	Intron      string `json:"intron,omitempty"`
	Consequence string `json:"consequence,omitempty"`
	HGVSp       string `json:"hgvsp,omitempty"`
	ForceGene   bool   `json:"forceGene,omitempty"`
}

// Result is the outcome of Classify. Matched is false for the "no tier" outcome.
type Result struct {
	Tier      string `json:"tier,omitempty"`
	Matched   bool   `json:"matched"`
	Reason    Reason `json:"reason"`
	RuleIndex int    `json:"ruleIndex"`
}

// noTier builds the "no tier" result for the given reason.
func noTier(reason Reason) Result {
	return Result{Reason: reason, RuleIndex: -1}
}
