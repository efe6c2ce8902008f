package engine

import "strings"

const (
	missingPlaceholder = "."
	proteinPrefix      = "p."
)

// normalize maps the annotation placeholder "." to empty and strips the
// HGVS protein prefix. Other values pass through unchanged.
func normalize(v string) string {
	if v == missingPlaceholder {
		return ""
	}
	return strings.TrimPrefix(v, proteinPrefix)
}

// variant is a Query after normalization.
type variant struct {
	alteration  string
	exon        string
	intron      string
	consequence string
	hgvsp       string
}

func newVariant(q Query) variant {
	return variant{
		alteration:  q.Alteration,
		exon:        normalize(q.Exon),
		intron:      normalize(q.Intron),
		consequence: normalize(q.Consequence),
		hgvsp:       normalize(q.HGVSp),
	}
}
