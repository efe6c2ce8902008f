package api

import (
	"github.com/TimurManjosov/gotiers/internal/engine"
	"github.com/TimurManjosov/gotiers/internal/rules"
	"github.com/TimurManjosov/gotiers/internal/snapshot"
)

// ClassifyRequest is the request payload for POST /v1/classify.
type ClassifyRequest struct {
	Variants []engine.Query `json:"variants"`
}

// ClassifyResponse is the response payload for both classify endpoints.
type ClassifyResponse struct {
	Results []ClassifyResult `json:"results"`
	ETag    string           `json:"etag"`
	Version string           `json:"version,omitempty"`
}

// ClassifyResult is the outcome for one variant. Error is set instead of the
// tier fields when the variant could not be classified.
type ClassifyResult struct {
	Variant   engine.Query  `json:"variant"`
	Tier      string        `json:"tier,omitempty"`
	Matched   bool          `json:"matched"`
	Reason    engine.Reason `json:"reason,omitempty"`
	RuleIndex int           `json:"ruleIndex"`
	Error     *ItemError    `json:"error,omitempty"`
}

// ItemError describes why a single variant of a batch failed.
type ItemError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// GenesResponse is the response payload for GET /v1/genes.
type GenesResponse struct {
	Genes []string `json:"genes"`
	ETag  string   `json:"etag"`
}

// RulesResponse is the response payload for GET /v1/genes/{gene}/rules.
type RulesResponse struct {
	Gene  string       `json:"gene"`
	Rules []rules.Rule `json:"rules"`
}

// TableResponse is the response payload for GET /v1/table.
type TableResponse = snapshot.Snapshot

// ReloadResponse is the response payload for POST /v1/table/reload.
type ReloadResponse struct {
	OK      bool   `json:"ok"`
	ETag    string `json:"etag"`
	Version string `json:"version,omitempty"`
	Rules   int    `json:"rules"`
	Changed bool   `json:"changed"`
}
