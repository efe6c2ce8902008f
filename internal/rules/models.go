package rules

// AlterationClass is the structural type of a genomic variant.
type AlterationClass string

// Supported alteration classes. Mutation doubles as a wildcard when it appears
// on the rule side of a match.
const (
	AlterationSNV           AlterationClass = "SNV"
	AlterationMNV           AlterationClass = "MNV"
	AlterationInsertion     AlterationClass = "Insertion"
	AlterationDeletion      AlterationClass = "Deletion"
	AlterationFusion        AlterationClass = "Fusion"
	AlterationAmplification AlterationClass = "Amplification"
	AlterationLoss          AlterationClass = "Loss"
	AlterationMutation      AlterationClass = "Mutation"
	AlterationSV            AlterationClass = "SV"
)

// AlterationClasses lists every accepted alteration class in table order.
var AlterationClasses = []AlterationClass{
	AlterationSNV,
	AlterationMNV,
	AlterationInsertion,
	AlterationDeletion,
	AlterationFusion,
	AlterationAmplification,
	AlterationLoss,
	AlterationMutation,
	AlterationSV,
}

// Column is one column of the rule table file.
type Column string

// The rule table schema. A table file may carry any subset of these columns.
const (
	ColGene               Column = "Gene"
	ColExon               Column = "Exon"
	ColIntron             Column = "Intron"
	ColAlteration         Column = "Alteration"
	ColAlterationComments Column = "Alteration Comments"
	ColConsequence        Column = "Consequence"
	ColHGVSp              Column = "HGVSp"
	ColExclusionCriteria  Column = "Exclusion Criteria"
	ColESCAT              Column = "ESCAT"
	ColTreatments         Column = "Treatments"
	ColTreatmentLines     Column = "Treatment Lines"
	ColComments           Column = "Comments"
	ColClinicalTrials     Column = "Clinical Trials"
	ColTier               Column = "Tier"
	ColAutomatized        Column = "Automatized"
	ColSkip               Column = "Skip"
	ColVersion            Column = "Version"
	ColDate               Column = "Date"
)

// Columns is the full schema in canonical file order.
var Columns = []Column{
	ColGene,
	ColExon,
	ColIntron,
	ColAlteration,
	ColAlterationComments,
	ColConsequence,
	ColHGVSp,
	ColExclusionCriteria,
	ColESCAT,
	ColTreatments,
	ColTreatmentLines,
	ColComments,
	ColClinicalTrials,
	ColTier,
	ColAutomatized,
	ColSkip,
	ColVersion,
	ColDate,
}

// Flag values used by the Automatized and Skip columns.
const (
	FlagYes = "YES"
	FlagNo  = "NO"
)

// Rule is one row of the curated actionable-alteration table.
//
// Alteration is kept as the raw column text: a rule may name several classes
// in one cell ("Insertion/Deletion") and the matcher checks containment.
type Rule struct {
	Gene               string `json:"gene" yaml:"gene"`
	Exon               string `json:"exon,omitempty" yaml:"exon,omitempty"`
	Intron             string `json:"intron,omitempty" yaml:"intron,omitempty"`
	Alteration         string `json:"alteration" yaml:"alteration"`
	AlterationComments string `json:"alterationComments,omitempty" yaml:"alteration_comments,omitempty"`
	Consequence        string `json:"consequence,omitempty" yaml:"consequence,omitempty"`
	HGVSp              string `json:"hgvsp,omitempty" yaml:"hgvsp,omitempty"`
	ExclusionCriteria  string `json:"exclusionCriteria,omitempty" yaml:"exclusion_criteria,omitempty"`
	ESCAT              string `json:"escat,omitempty" yaml:"escat,omitempty"`
	Treatments         string `json:"treatments,omitempty" yaml:"treatments,omitempty"`
	TreatmentLines     string `json:"treatmentLines,omitempty" yaml:"treatment_lines,omitempty"`
	Comments           string `json:"comments,omitempty" yaml:"comments,omitempty"`
	ClinicalTrials     string `json:"clinicalTrials,omitempty" yaml:"clinical_trials,omitempty"`
	Tier               string `json:"tier" yaml:"tier"`
	Automatized        bool   `json:"automatized" yaml:"automatized"`
	Skip               bool   `json:"skip" yaml:"skip"`
	Version            string `json:"version,omitempty" yaml:"version,omitempty"`
	Date               string `json:"date,omitempty" yaml:"date,omitempty"`
}

// Enabled reports whether the rule takes part in automated matching.
func (r Rule) Enabled() bool {
	return r.Automatized && !r.Skip
}

// Field returns the table-file text of column c.
func (r Rule) Field(c Column) string {
	switch c {
	case ColGene:
		return r.Gene
	case ColExon:
		return r.Exon
	case ColIntron:
		return r.Intron
	case ColAlteration:
		return r.Alteration
	case ColAlterationComments:
		return r.AlterationComments
	case ColConsequence:
		return r.Consequence
	case ColHGVSp:
		return r.HGVSp
	case ColExclusionCriteria:
		return r.ExclusionCriteria
	case ColESCAT:
		return r.ESCAT
	case ColTreatments:
		return r.Treatments
	case ColTreatmentLines:
		return r.TreatmentLines
	case ColComments:
		return r.Comments
	case ColClinicalTrials:
		return r.ClinicalTrials
	case ColTier:
		return r.Tier
	case ColAutomatized:
		return FormatFlag(r.Automatized)
	case ColSkip:
		return FormatFlag(r.Skip)
	case ColVersion:
		return r.Version
	case ColDate:
		return r.Date
	}
	return ""
}

// SetField assigns the table-file text v to column c. Unknown columns are ignored.
func (r *Rule) SetField(c Column, v string) {
	switch c {
	case ColGene:
		r.Gene = v
	case ColExon:
		r.Exon = v
	case ColIntron:
		r.Intron = v
	case ColAlteration:
		r.Alteration = v
	case ColAlterationComments:
		r.AlterationComments = v
	case ColConsequence:
		r.Consequence = v
	case ColHGVSp:
		r.HGVSp = v
	case ColExclusionCriteria:
		r.ExclusionCriteria = v
	case ColESCAT:
		r.ESCAT = v
	case ColTreatments:
		r.Treatments = v
	case ColTreatmentLines:
		r.TreatmentLines = v
	case ColComments:
		r.Comments = v
	case ColClinicalTrials:
		r.ClinicalTrials = v
	case ColTier:
		r.Tier = v
	case ColAutomatized:
		r.Automatized = ParseAutomatized(v)
	case ColSkip:
		r.Skip = ParseSkip(v)
	case ColVersion:
		r.Version = v
	case ColDate:
		r.Date = v
	}
}

// ParseAutomatized reads the Automatized column. Only an explicit "NO"
// disables a rule.
func ParseAutomatized(v string) bool {
	return v != FlagNo
}

// ParseSkip reads the Skip column. Only an explicit "YES" skips a rule.
func ParseSkip(v string) bool {
	return v == FlagYes
}

// FormatFlag renders a boolean column value.
func FormatFlag(b bool) string {
	if b {
		return FlagYes
	}
	return FlagNo
}
