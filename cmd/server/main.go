package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/TimurManjosov/gotiers/internal/api"
	"github.com/TimurManjosov/gotiers/internal/config"
	mydb "github.com/TimurManjosov/gotiers/internal/db"
	"github.com/TimurManjosov/gotiers/internal/loader"
	"github.com/TimurManjosov/gotiers/internal/logging"
	"github.com/TimurManjosov/gotiers/internal/snapshot"
	"github.com/TimurManjosov/gotiers/internal/store"
	"github.com/TimurManjosov/gotiers/internal/telemetry"
	"github.com/TimurManjosov/gotiers/internal/watch"
	"github.com/TimurManjosov/gotiers/internal/webhook"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.NewStore(ctx, cfg.StoreType, cfg.Source())
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer st.Close()

	if pg, ok := st.(*store.PostgresStore); ok {
		if err := preparePostgres(ctx, pg, cfg.TablePath); err != nil {
			return err
		}
	}

	telemetry.Init()

	// initial snapshot
	srvAPI := api.NewServer(st, cfg.AdminAPIKey, api.Options{
		RateLimitPerIP: cfg.RateLimitPerIP,
		AllowDowngrade: cfg.AllowDowngrade,
	})
	if err := srvAPI.RebuildSnapshot(ctx); err != nil {
		return fmt.Errorf("load rule table: %w", err)
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srvAPI.Router(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 0, // table stream is long-lived
		IdleTimeout:  60 * time.Second,
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// only changes after the initial load are announced
	if len(cfg.WebhookURLs) > 0 {
		dispatcher := webhook.NewDispatcher(cfg.WebhookURLs, webhook.Options{
			Secret:     cfg.WebhookSecret,
			Timeout:    cfg.WebhookTimeout,
			MaxRetries: cfg.WebhookMaxRetries,
		})
		dispatcher.Start()
		defer dispatcher.Close()
		g.Go(func() error {
			dispatcher.Forward(gctx)
			return nil
		})
		log.Info().Int("targets", len(cfg.WebhookURLs)).Msg("webhook notifications enabled")
	}

	if cfg.WatchTable {
		if ts, ok := st.(*store.TSVStore); ok {
			w, err := watch.New(ts.Path(), cfg.WatchDebounce, srvAPI.RebuildSnapshot)
			if err != nil {
				return err
			}
			g.Go(func() error { return w.Run(gctx) })
		} else {
			log.Warn().Str("store", cfg.StoreType).Msg("WATCH_TABLE only applies to the tsv store, ignoring")
		}
	}

	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreType).Str("etag", snapshot.Load().ETag).Msg("listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
		if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	// graceful shutdown once a signal arrives or a listener fails
	g.Go(func() error {
		<-gctx.Done()
		ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShut)
		_ = metricsSrv.Shutdown(ctxShut)
		return nil
	})

	err = g.Wait()
	log.Info().Msg("stopped")
	return err
}

// preparePostgres checks connectivity, creates the schema and seeds an empty
// rule table from the TSV file when one is present.
func preparePostgres(ctx context.Context, pg *store.PostgresStore, seedPath string) error {
	if err := mydb.Ping(ctx, pg.Pool(), 5*time.Second); err != nil {
		return err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	existing, err := pg.ListRules(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 || seedPath == "" {
		return nil
	}
	if _, err := os.Stat(seedPath); err != nil {
		return nil
	}

	rows, err := loader.LoadTSVFile(seedPath)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if err := pg.ReplaceRules(ctx, rows); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	log.Info().Str("path", seedPath).Int("rules", len(rows)).Msg("seeded rule table")
	return nil
}
