// Package telemetry holds the Prometheus collectors exported on the metrics server.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	httpDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	Classifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tier_classifications_total",
			Help: "Variant classifications by outcome reason",
		},
		[]string{"reason"},
	)
	RulesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tier_rules_loaded",
		Help: "Number of rules in the current snapshot",
	})
	TableReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tier_table_reloads_total",
			Help: "Rule table reload attempts by status",
		},
		[]string{"status"},
	)
	SSEClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sse_clients",
		Help: "Number of currently connected table stream clients",
	})
	WebhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Webhook deliveries by outcome",
		},
		[]string{"status"},
	)
)

// Reload statuses recorded in TableReloads.
const (
	ReloadOK       = "ok"
	ReloadFailed   = "failed"
	ReloadRejected = "rejected"
)

// Delivery outcomes recorded in WebhookDeliveries.
const (
	DeliveryOK      = "ok"
	DeliveryFailed  = "failed"
	DeliveryDropped = "dropped"
)

// Collectors returns every collector owned by this package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{httpReqs, httpDur, Classifications, RulesLoaded, TableReloads, SSEClients, WebhookDeliveries}
}

// Init registers the collectors with the default registry.
func Init() {
	prometheus.MustRegister(Collectors()...)
}

// Middleware records request count and latency per chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		// the pattern is only complete once routing has finished
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		httpReqs.WithLabelValues(route, r.Method, strconv.Itoa(ww.status)).Inc()
		httpDur.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
