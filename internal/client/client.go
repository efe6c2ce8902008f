// Package client is an HTTP client for the tier classification API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/TimurManjosov/gotiers/internal/api"
	"github.com/TimurManjosov/gotiers/internal/engine"
	"github.com/TimurManjosov/gotiers/internal/loader"
	"github.com/TimurManjosov/gotiers/internal/rules"
	"github.com/TimurManjosov/gotiers/internal/snapshot"
)

// Client is an HTTP client for the tiers API
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a structured error returned by the server. It unwraps to the
// matching domain error so callers can use errors.Is across the wire.
type APIError struct {
	Status  int
	Code    api.ErrorCode
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("API error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API error (status %d, %s): %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Code {
	case api.ErrCodeInvalidAlteration:
		return engine.ErrInvalidAlteration
	case api.ErrCodeMissingGene:
		return engine.ErrMissingGene
	case api.ErrCodeInvalidTSVSchema:
		return loader.ErrInvalidTSVSchema
	case api.ErrCodeVersionConflict:
		return snapshot.ErrVersionDowngrade
	default:
		return nil
	}
}

// Classify classifies one variant.
func (c *Client) Classify(ctx context.Context, q engine.Query) (engine.Result, error) {
	results, err := c.ClassifyBatch(ctx, []engine.Query{q})
	if err != nil {
		return engine.Result{RuleIndex: -1}, err
	}
	if len(results) != 1 {
		return engine.Result{RuleIndex: -1}, fmt.Errorf("expected 1 result, got %d", len(results))
	}

	r := results[0]
	if r.Error != nil {
		return engine.Result{RuleIndex: -1}, &APIError{Status: http.StatusOK, Code: r.Error.Code, Message: r.Error.Message}
	}
	return engine.Result{Tier: r.Tier, Matched: r.Matched, Reason: r.Reason, RuleIndex: r.RuleIndex}, nil
}

// ClassifyBatch classifies several variants against one snapshot. Per-variant
// failures are reported in the results, not as an error.
func (c *Client) ClassifyBatch(ctx context.Context, qs []engine.Query) ([]api.ClassifyResult, error) {
	var resp api.ClassifyResponse
	if err := c.do(ctx, http.MethodPost, "/v1/classify", api.ClassifyRequest{Variants: qs}, false, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Genes lists the genes of the served table.
func (c *Client) Genes(ctx context.Context) ([]string, error) {
	var resp api.GenesResponse
	if err := c.do(ctx, http.MethodGet, "/v1/genes", nil, false, &resp); err != nil {
		return nil, err
	}
	return resp.Genes, nil
}

// Rules lists the rules of gene, disabled ones included.
func (c *Client) Rules(ctx context.Context, gene string) ([]rules.Rule, error) {
	var resp api.RulesResponse
	if err := c.do(ctx, http.MethodGet, "/v1/genes/"+url.PathEscape(gene)+"/rules", nil, false, &resp); err != nil {
		return nil, err
	}
	return resp.Rules, nil
}

// Table returns the metadata of the served snapshot.
func (c *Client) Table(ctx context.Context) (*api.TableResponse, error) {
	var resp api.TableResponse
	if err := c.do(ctx, http.MethodGet, "/v1/table", nil, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reload asks the server to reload the table from its store. Requires the admin key.
func (c *Client) Reload(ctx context.Context) (*api.ReloadResponse, error) {
	var resp api.ReloadResponse
	if err := c.do(ctx, http.MethodPost, "/v1/table/reload", nil, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, in any, admin bool, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin && c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)

	var er api.ErrorResponse
	if err := json.Unmarshal(bodyBytes, &er); err != nil || er.Code == "" {
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(bodyBytes))}
	}
	return &APIError{Status: resp.StatusCode, Code: er.Code, Message: er.Message}
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}
