// Package api exposes tier classification and rule table management over HTTP.
package api

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/TimurManjosov/gotiers/internal/logging"
	"github.com/TimurManjosov/gotiers/internal/snapshot"
	"github.com/TimurManjosov/gotiers/internal/store"
	"github.com/TimurManjosov/gotiers/internal/telemetry"
)

// Options tunes a Server.
type Options struct {
	RateLimitPerIP int           // requests per minute per client IP, 0 disables
	AllowDowngrade bool          // accept reloads that lower the table version
	RequestTimeout time.Duration // per-request timeout for non-streaming routes
}

type Server struct {
	store       store.Store
	adminAPIKey string
	opts        Options
	log         zerolog.Logger
}

func NewServer(st store.Store, adminKey string, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}
	return &Server{store: st, adminAPIKey: adminKey, opts: opts, log: logging.For("api")}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.accessLog, middleware.Recoverer)
	r.Use(telemetry.Middleware)
	if s.opts.RateLimitPerIP > 0 {
		r.Use(httprate.Limit(
			s.opts.RateLimitPerIP, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(RateLimitedError),
		))
	}

	// health
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// long-lived, so outside the request timeout
	r.Get("/v1/table/stream", s.handleStream)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))

		r.Get("/v1/classify", s.handleClassifyGET)
		r.Post("/v1/classify", s.handleClassify)

		r.Get("/v1/genes", s.handleGenes)
		r.Get("/v1/genes/{gene}/rules", s.handleGeneRules)

		r.Get("/v1/table", s.handleTable)
		r.Post("/v1/table/reload", s.authAdmin(s.handleReload))
	})

	return r
}

// RebuildSnapshot loads the table from the store and swaps the atomic snapshot.
// The previous snapshot stays current when loading or the version check fails.
func (s *Server) RebuildSnapshot(ctx context.Context) error {
	rows, err := s.store.ListRules(ctx)
	if err != nil {
		telemetry.TableReloads.WithLabelValues(telemetry.ReloadFailed).Inc()
		return fmt.Errorf("load rule table: %w", err)
	}

	snap := snapshot.Build(rows)
	if err := snapshot.Update(snap, s.opts.AllowDowngrade); err != nil {
		telemetry.TableReloads.WithLabelValues(telemetry.ReloadRejected).Inc()
		return err
	}

	telemetry.TableReloads.WithLabelValues(telemetry.ReloadOK).Inc()
	telemetry.RulesLoaded.Set(float64(snap.Rules))
	s.log.Info().
		Str("etag", snap.ETag).
		Str("version", snap.Version).
		Str("load_id", snap.LoadID).
		Int("rules", snap.Rules).
		Int("enabled", snap.Enabled).
		Int("genes", snap.Genes).
		Msg("rule table loaded")
	return nil
}

// ---- middleware ----

func (s *Server) authAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		got := bearerToken(r)
		if got == "" {
			UnauthorizedError(w, r, "missing bearer token")
			return
		}
		// constant-time compare
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.adminAPIKey)) != 1 {
			ForbiddenError(w, r, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	}
}
