package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/TimurManjosov/gotiers/internal/rules"
)

// SampleTSV is a small rule table in the curated file format. It carries a
// disabled rule, a skipped rule and an exclusion-mode rule.
const SampleTSV = "Gene\tExon\tIntron\tAlteration\tAlteration Comments\tConsequence\tHGVSp\tExclusion Criteria\tESCAT\tTreatments\tTreatment Lines\tComments\tClinical Trials\tTier\tAutomatized\tSkip\tVersion\tDate\n" +
	"EGFR\t21\t\tMutation\tL858R\tmissense_variant\tp.L858R\t\tIA\tOsimertinib\t1L\t\t\t1\tYES\tNO\t1.0.0\t2024-01-10\n" +
	"EGFR\t19\t\tDeletion\tExon 19 deletions\tinframe_deletion\t\t\tIA\tOsimertinib\t1L\t\t\t1\tYES\tNO\t1.0.0\t2024-01-10\n" +
	"EGFR\t20\t\tInsertion\tExon 20 insertions\tinframe_insertion\tins\t\tIIB\tAmivantamab\t2L\t\t\t2\tYES\tNO\t1.0.0\t2024-01-10\n" +
	"KRAS\t2\t\tSNV\tG12C\tmissense_variant\tG12C\t\tIA\tSotorasib\t2L\t\t\t1\tYES\tNO\t1.0.0\t2024-01-10\n" +
	"KRAS\t2\t\tSNV\tCodon 12/13 except G12C\tmissense_variant\tG1\tG12C\tIIIA\t\t\t\t\t3\tYES\tNO\t1.0.0\t2024-01-10\n" +
	"MET\t\t13\tMutation\tExon 14 skipping\tintron_variant,splice_acceptor_variant\t\t\tIA\tCapmatinib\t1L\t\t\t1\tYES\tNO\t1.0.0\t2024-01-10\n" +
	"MET\t14\t\tMutation\tExon 14 skipping\tsplice_region_variant,splice_donor_variant\t\t\tIA\tCapmatinib\t1L\t\t\t1\tYES\tNO\t1.0.0\t2024-01-10\n" +
	"ERBB2\t\t\tAmplification\t\t\t\t\tIA\tTrastuzumab\t1L\t\t\t1\tYES\tNO\t1.0.0\t2024-01-10\n" +
	"BRAF\t15\t\tSNV\tV600E\tmissense_variant\tV600E\t\tIA\tDabrafenib\t1L\t\t\t1\tYES\tNO\t1.1.0\t2024-03-02\n" +
	"BRAF\t15\t\tSNV\tV600K under review\tmissense_variant\tV600K\t\tIB\t\t\t\t\t2\tNO\tNO\t1.1.0\t2024-03-02\n" +
	"ALK\t\t\tFusion\tPending curation\t\t\t\tIA\tAlectinib\t1L\t\t\t1\tYES\tYES\t1.1.0\t2024-03-02\n"

// SampleRuleCount is the number of rows in SampleTSV.
const SampleRuleCount = 11

// SampleRules returns a rule set equivalent in spirit to SampleTSV, built in code.
func SampleRules() []rules.Rule {
	return []rules.Rule{
		{Gene: "EGFR", Exon: "21", Alteration: "Mutation", Consequence: "missense_variant", HGVSp: "L858R", Tier: "1", Automatized: true, Version: "1.0.0"},
		{Gene: "EGFR", Exon: "19", Alteration: "Deletion", Consequence: "inframe_deletion", Tier: "1", Automatized: true, Version: "1.0.0"},
		{Gene: "KRAS", Exon: "2", Alteration: "SNV", Consequence: "missense_variant", HGVSp: "G12C", Tier: "1", Automatized: true, Version: "1.0.0"},
		{Gene: "KRAS", Exon: "2", Alteration: "SNV", Consequence: "missense_variant", HGVSp: "G1", ExclusionCriteria: "G12C", Tier: "3", Automatized: true, Version: "1.0.0"},
		{Gene: "ERBB2", Alteration: "Amplification", Tier: "1", Automatized: true, Version: "1.0.0"},
		{Gene: "ALK", Alteration: "Fusion", Tier: "1", Automatized: true, Skip: true, Version: "1.0.0"},
	}
}

// WriteSampleTSV writes SampleTSV into a temporary directory and returns its path.
func WriteSampleTSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiers.tsv")
	if err := os.WriteFile(path, []byte(SampleTSV), 0o644); err != nil {
		t.Fatalf("write sample table: %v", err)
	}
	return path
}

// HTTPRequest is a helper for making test HTTP requests.
type HTTPRequest struct {
	Method  string
	Path    string
	Body    string
	Headers map[string]string
}

// Do executes the HTTP request and returns the response recorder.
func (r *HTTPRequest) Do(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if r.Body != "" {
		body = bytes.NewBufferString(r.Body)
	}
	req := httptest.NewRequest(r.Method, r.Path, body)
	if r.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}
