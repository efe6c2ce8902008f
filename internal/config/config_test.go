package config

import (
	"errors"
	"testing"
	"time"
)

var configKeys = []string{
	"APP_ENV", "APP_HTTP_ADDR", "METRICS_ADDR", "STORE_TYPE", "TIERS_TSV", "DB_DSN",
	"ADMIN_API_KEY", "RATE_LIMIT_PER_IP", "LOG_LEVEL", "LOG_FORMAT", "WATCH_TABLE",
	"WATCH_DEBOUNCE", "ALLOW_DOWNGRADE", "WEBHOOK_URLS", "WEBHOOK_SECRET", "WEBHOOK_TIMEOUT",
	"WEBHOOK_MAX_RETRIES",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AppEnv != "dev" {
		t.Errorf("Expected AppEnv='dev', got '%s'", cfg.AppEnv)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("Expected HTTPAddr=':8080', got '%s'", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("Expected MetricsAddr=':9090', got '%s'", cfg.MetricsAddr)
	}
	if cfg.StoreType != StoreTSV {
		t.Errorf("Expected StoreType='tsv', got '%s'", cfg.StoreType)
	}
	if cfg.TablePath != "tiers.tsv" {
		t.Errorf("Expected TablePath='tiers.tsv', got '%s'", cfg.TablePath)
	}
	if cfg.LogFormat != "console" || cfg.LogLevel != "info" {
		t.Errorf("Expected console/info logging, got %s/%s", cfg.LogFormat, cfg.LogLevel)
	}
	if cfg.WatchTable || cfg.AllowDowngrade {
		t.Errorf("Expected watch and downgrade off by default")
	}
	if cfg.WatchDebounce != 500*time.Millisecond {
		t.Errorf("Expected WatchDebounce=500ms, got %v", cfg.WatchDebounce)
	}
	if len(cfg.WebhookURLs) != 0 || cfg.WebhookTimeout != 5*time.Second || cfg.WebhookMaxRetries != 3 {
		t.Errorf("unexpected webhook defaults: %v %v %d", cfg.WebhookURLs, cfg.WebhookTimeout, cfg.WebhookMaxRetries)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_HTTP_ADDR", ":9999")
	t.Setenv("STORE_TYPE", "postgres")
	t.Setenv("DB_DSN", "postgres://localhost/tiers")
	t.Setenv("RATE_LIMIT_PER_IP", "200")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("WATCH_TABLE", "true")
	t.Setenv("WATCH_DEBOUNCE", "2s")
	t.Setenv("ALLOW_DOWNGRADE", "true")
	t.Setenv("WEBHOOK_URLS", "https://a.example/hook, ,http://b.example/hook")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AppEnv != "test" {
		t.Errorf("Expected AppEnv='test', got '%s'", cfg.AppEnv)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("Expected HTTPAddr=':9999', got '%s'", cfg.HTTPAddr)
	}
	if cfg.RateLimitPerIP != 200 {
		t.Errorf("Expected RateLimitPerIP=200, got %d", cfg.RateLimitPerIP)
	}
	if cfg.Source() != "postgres://localhost/tiers" {
		t.Errorf("Expected DSN as store source, got '%s'", cfg.Source())
	}
	if !cfg.WatchTable || cfg.WatchDebounce != 2*time.Second || !cfg.AllowDowngrade {
		t.Errorf("watch/downgrade overrides not applied: %+v", cfg)
	}
	if len(cfg.WebhookURLs) != 2 || cfg.WebhookURLs[1] != "http://b.example/hook" {
		t.Errorf("Expected two webhook URLs, got %v", cfg.WebhookURLs)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			AppEnv:      "dev",
			HTTPAddr:    ":8080",
			MetricsAddr: ":9090",
			StoreType:   StoreTSV,
			TablePath:   "tiers.tsv",
			AdminAPIKey: defaultAdminKey,
			LogLevel:    "info",
			LogFormat:   "console",
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "memory store", mutate: func(c *Config) { c.StoreType = StoreMemory; c.TablePath = "" }},
		{name: "unknown store", mutate: func(c *Config) { c.StoreType = "redis" }, field: "STORE_TYPE"},
		{name: "tsv without path", mutate: func(c *Config) { c.TablePath = "" }, field: "TIERS_TSV"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.StoreType = StorePostgres }, field: "DB_DSN"},
		{name: "empty http addr", mutate: func(c *Config) { c.HTTPAddr = "" }, field: "APP_HTTP_ADDR"},
		{name: "empty metrics addr", mutate: func(c *Config) { c.MetricsAddr = "" }, field: "METRICS_ADDR"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "chatty" }, field: "LOG_LEVEL"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, field: "LOG_FORMAT"},
		{name: "negative debounce", mutate: func(c *Config) { c.WatchTable = true; c.WatchDebounce = -time.Second }, field: "WATCH_DEBOUNCE"},
		{name: "webhook url", mutate: func(c *Config) { c.WebhookURLs = []string{"https://hooks.example/tiers"} }},
		{name: "relative webhook url", mutate: func(c *Config) { c.WebhookURLs = []string{"/hook"} }, field: "WEBHOOK_URLS"},
		{name: "negative webhook retries", mutate: func(c *Config) { c.WebhookMaxRetries = -1 }, field: "WEBHOOK_MAX_RETRIES"},
		{name: "default key in prod", mutate: func(c *Config) { c.AppEnv = "prod" }, field: "ADMIN_API_KEY"},
		{name: "custom key in prod", mutate: func(c *Config) { c.AppEnv = "production"; c.AdminAPIKey = "s3cret" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.field == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var ve ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, ve.Field)
			}
		})
	}
}
