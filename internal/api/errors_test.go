package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TimurManjosov/gotiers/internal/engine"
	"github.com/TimurManjosov/gotiers/internal/loader"
	"github.com/TimurManjosov/gotiers/internal/snapshot"
)

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(http.StatusBadRequest, ErrCodeInvalidAlteration, "Invalid alteration class").
		WithFields(map[string]string{"alteration": "unknown class"}).
		WithRequestID("req-123")

	if resp.Error != "Bad Request" {
		t.Errorf("Expected Error 'Bad Request', got '%s'", resp.Error)
	}
	if resp.Code != ErrCodeInvalidAlteration {
		t.Errorf("Expected Code ErrCodeInvalidAlteration, got '%s'", resp.Code)
	}
	if resp.Fields["alteration"] != "unknown class" {
		t.Errorf("Expected field error for alteration, got %v", resp.Fields)
	}
	if resp.RequestID != "req-123" {
		t.Errorf("Expected RequestID 'req-123', got '%s'", resp.RequestID)
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter, r *http.Request)
		status int
		code   ErrorCode
	}{
		{
			name:   "bad request",
			write:  func(w http.ResponseWriter, r *http.Request) { BadRequestError(w, r, ErrCodeInvalidJSON, "Invalid JSON") },
			status: http.StatusBadRequest, code: ErrCodeInvalidJSON,
		},
		{
			name:   "unauthorized",
			write:  func(w http.ResponseWriter, r *http.Request) { UnauthorizedError(w, r, "Missing authentication") },
			status: http.StatusUnauthorized, code: ErrCodeUnauthorized,
		},
		{
			name:   "forbidden",
			write:  func(w http.ResponseWriter, r *http.Request) { ForbiddenError(w, r, "Invalid token") },
			status: http.StatusForbidden, code: ErrCodeForbidden,
		},
		{
			name:   "internal",
			write:  func(w http.ResponseWriter, r *http.Request) { InternalError(w, r, "boom") },
			status: http.StatusInternalServerError, code: ErrCodeInternal,
		},
		{
			name:   "not found",
			write:  func(w http.ResponseWriter, r *http.Request) { NotFoundError(w, r, ErrCodeNotFound, "Gene not found") },
			status: http.StatusNotFound, code: ErrCodeNotFound,
		},
		{
			name:   "too large",
			write:  func(w http.ResponseWriter, r *http.Request) { RequestTooLargeError(w, r, "Request body exceeds limit") },
			status: http.StatusRequestEntityTooLarge, code: ErrCodeRequestTooLarge,
		},
		{
			name:   "rate limited",
			write:  RateLimitedError,
			status: http.StatusTooManyRequests, code: ErrCodeRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/v1/classify", nil)
			tt.write(w, r)

			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
			}

			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Code != tt.code {
				t.Errorf("Expected Code %s, got '%s'", tt.code, resp.Code)
			}
		})
	}
}

func TestDomainError(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		code    ErrorCode
		message string
	}{
		{err: fmt.Errorf("%w: Banana", engine.ErrInvalidAlteration), status: http.StatusBadRequest, code: ErrCodeInvalidAlteration},
		{err: fmt.Errorf("%w: gene TP53", engine.ErrMissingGene), status: http.StatusNotFound, code: ErrCodeMissingGene},
		{err: fmt.Errorf("load: %w", loader.ErrInvalidTSVSchema), status: http.StatusUnprocessableEntity, code: ErrCodeInvalidTSVSchema},
		{err: fmt.Errorf("%w: 1.0.0 < 2.0.0", snapshot.ErrVersionDowngrade), status: http.StatusConflict, code: ErrCodeVersionConflict},
		{err: errors.New("connection refused"), status: http.StatusInternalServerError, code: ErrCodeInternal, message: "internal error"},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/v1/table/reload", nil)
		DomainError(w, r, tt.err)

		if w.Code != tt.status {
			t.Errorf("%v: expected status %d, got %d", tt.err, tt.status, w.Code)
		}
		var resp ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Code != tt.code {
			t.Errorf("%v: expected code %s, got %s", tt.err, tt.code, resp.Code)
		}
		want := tt.message
		if want == "" {
			want = tt.err.Error()
		}
		if resp.Message != want {
			t.Errorf("expected message %q, got %q", want, resp.Message)
		}
	}
}
