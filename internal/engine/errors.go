package engine

import (
	"errors"

	"github.com/TimurManjosov/gotiers/internal/rules"
)

// Sentinel errors returned by Classify.
var (
	// ErrInvalidAlteration is rules.ErrInvalidAlteration so that either
	// package's sentinel matches with errors.Is.
	ErrInvalidAlteration = rules.ErrInvalidAlteration
	ErrMissingGene       = errors.New("missing gene")
)
