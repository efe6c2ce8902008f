package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Sentinel errors returned by ParseAlterationClass, ParseColumn and ValidateRule.
var (
	ErrInvalidAlteration = errors.New("invalid alteration")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrInvalidRule       = errors.New("invalid rule")
	ErrInvalidVersion    = errors.New("invalid version")
)

// ParseAlterationClass returns the AlterationClass named by s. The comparison
// is exact: annotation pipelines emit the canonical spelling.
func ParseAlterationClass(s string) (AlterationClass, error) {
	switch c := AlterationClass(s); c {
	case AlterationSNV,
		AlterationMNV,
		AlterationInsertion,
		AlterationDeletion,
		AlterationFusion,
		AlterationAmplification,
		AlterationLoss,
		AlterationMutation,
		AlterationSV:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q, accepted alteration classes are %s", ErrInvalidAlteration, s, joinClasses())
}

// ParseColumn returns the schema Column named by s.
func ParseColumn(s string) (Column, error) {
	for _, c := range Columns {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q not found between: %s", ErrUnknownColumn, s, joinColumns())
}

// ValidateRule performs row-level checks on a rule.
// It is a pure function: it never mutates r and has no side effects.
func ValidateRule(r Rule) error {
	if strings.TrimSpace(r.Gene) == "" {
		return fmt.Errorf("%w: gene must not be empty", ErrInvalidRule)
	}

	if r.Enabled() && strings.TrimSpace(r.Tier) == "" {
		return fmt.Errorf("%w: %s: automatized rule must have a tier", ErrInvalidRule, r.Gene)
	}

	if !mentionsKnownClass(r.Alteration) {
		return fmt.Errorf("%w: %s: alteration %q names no known alteration class", ErrInvalidRule, r.Gene, r.Alteration)
	}

	if r.Version != "" {
		if _, err := ParseVersion(r.Version); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidRule, r.Gene, err)
		}
	}

	return nil
}

// ParseVersion parses a table version cell. Short forms such as "1" or "v1.2"
// are accepted.
func ParseVersion(v string) (*semver.Version, error) {
	ver, err := semver.NewVersion(strings.TrimSpace(v))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidVersion, v, err)
	}
	return ver, nil
}

// mentionsKnownClass uses the same case-insensitive containment the matcher
// applies, so a rule that passes here can be reached by some query.
func mentionsKnownClass(alteration string) bool {
	lower := strings.ToLower(alteration)
	for _, c := range AlterationClasses {
		if strings.Contains(lower, strings.ToLower(string(c))) {
			return true
		}
	}
	return false
}

func joinClasses() string {
	names := make([]string, len(AlterationClasses))
	for i, c := range AlterationClasses {
		names[i] = string(c)
	}
	return strings.Join(names, ",")
}

func joinColumns() string {
	names := make([]string, len(Columns))
	for i, c := range Columns {
		names[i] = string(c)
	}
	return strings.Join(names, ",")
}
