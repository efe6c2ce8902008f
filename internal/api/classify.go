package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/TimurManjosov/gotiers/internal/engine"
	"github.com/TimurManjosov/gotiers/internal/snapshot"
	"github.com/TimurManjosov/gotiers/internal/telemetry"
)

const (
	maxClassifyBody     = 1 << 20
	maxClassifyVariants = 1000
)

// handleClassifyGET handles GET /v1/classify with the variant in query parameters.
func (s *Server) handleClassifyGET(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	forceGene, err := queryBool(query.Get("force_gene"))
	if err != nil {
		BadRequestErrorWithFields(w, r, ErrCodeBadRequest, "invalid query parameter",
			map[string]string{"force_gene": "must be a boolean"})
		return
	}

	q := engine.Query{
		Gene:        strings.TrimSpace(query.Get("gene")),
		Alteration:  strings.TrimSpace(query.Get("alteration")),
		Exon:        query.Get("exon"),
		Intron:      query.Get("intron"),
		Consequence: query.Get("consequence"),
		HGVSp:       query.Get("hgvsp"),
		ForceGene:   forceGene,
	}
	if fields := missingFields(q); len(fields) > 0 {
		BadRequestErrorWithFields(w, r, ErrCodeMissingField, "missing required query parameters", fields)
		return
	}

	snap := snapshot.Load()
	res, err := classify(snap, q)
	if err != nil {
		DomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ClassifyResponse{
		Results: []ClassifyResult{toResult(q, res)},
		ETag:    snap.ETag,
		Version: snap.Version,
	})
}

// handleClassify handles POST /v1/classify. Invalid variants are reported
// per item; the batch itself only fails on a malformed body.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxClassifyBody)

	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RequestTooLargeError(w, r, "request body too large")
			return
		}
		BadRequestError(w, r, ErrCodeInvalidJSON, "invalid JSON")
		return
	}
	if len(req.Variants) == 0 {
		BadRequestErrorWithFields(w, r, ErrCodeMissingField, "at least one variant is required",
			map[string]string{"variants": "required"})
		return
	}
	if len(req.Variants) > maxClassifyVariants {
		RequestTooLargeError(w, r, "too many variants in one request")
		return
	}

	// one snapshot for the whole batch
	snap := snapshot.Load()
	results := make([]ClassifyResult, len(req.Variants))
	for i, q := range req.Variants {
		if fields := missingFields(q); len(fields) > 0 {
			results[i] = ClassifyResult{Variant: q, RuleIndex: -1, Error: &ItemError{
				Code:    ErrCodeMissingField,
				Message: "gene and alteration are required",
			}}
			continue
		}
		res, err := classify(snap, q)
		if err != nil {
			_, code := errorStatus(err)
			results[i] = ClassifyResult{Variant: q, RuleIndex: -1, Error: &ItemError{Code: code, Message: err.Error()}}
			continue
		}
		results[i] = toResult(q, res)
	}

	writeJSON(w, http.StatusOK, ClassifyResponse{Results: results, ETag: snap.ETag, Version: snap.Version})
}

func classify(snap *snapshot.Snapshot, q engine.Query) (engine.Result, error) {
	res, err := snap.Classifier().Classify(q)
	if err != nil {
		telemetry.Classifications.WithLabelValues("ERROR").Inc()
		return res, err
	}
	telemetry.Classifications.WithLabelValues(string(res.Reason)).Inc()
	return res, nil
}

func missingFields(q engine.Query) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(q.Gene) == "" {
		fields["gene"] = "required"
	}
	if strings.TrimSpace(q.Alteration) == "" {
		fields["alteration"] = "required"
	}
	return fields
}

func toResult(q engine.Query, res engine.Result) ClassifyResult {
	return ClassifyResult{
		Variant:   q,
		Tier:      res.Tier,
		Matched:   res.Matched,
		Reason:    res.Reason,
		RuleIndex: res.RuleIndex,
	}
}
