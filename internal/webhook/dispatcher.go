package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/gotiers/internal/logging"
	"github.com/TimurManjosov/gotiers/internal/snapshot"
	"github.com/TimurManjosov/gotiers/internal/telemetry"
)

const (
	// queueSize is the buffer size for the event queue
	queueSize = 100

	// maxResponseBodySize limits how much of the response body we log (1KB)
	maxResponseBodySize = 1024
)

// Request headers set on every delivery.
const (
	HeaderSignature = "X-Tiers-Signature"
	HeaderEvent     = "X-Tiers-Event"
	HeaderDelivery  = "X-Tiers-Delivery"
)

// Options tune delivery.
type Options struct {
	Secret     string        // HMAC key; deliveries are unsigned when empty
	Timeout    time.Duration // per attempt
	MaxRetries int           // attempts after the first
	Backoff    time.Duration // first retry delay, doubled per attempt
}

// DefaultOptions returns the delivery settings used when none are configured.
func DefaultOptions() Options {
	return Options{
		Timeout:    5 * time.Second,
		MaxRetries: 3,
		Backoff:    time.Second,
	}
}

// Dispatcher delivers events to a fixed list of URLs from a single worker.
type Dispatcher struct {
	urls   []string
	opts   Options
	client *http.Client
	log    zerolog.Logger
	queue  chan Event
	done   chan struct{}
	closed int32 // atomic flag to prevent double-close
}

// NewDispatcher creates a dispatcher for urls. Call Start before Dispatch.
func NewDispatcher(urls []string, opts Options) *Dispatcher {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = def.Backoff
	}
	return &Dispatcher{
		urls:   append([]string(nil), urls...),
		opts:   opts,
		client: &http.Client{},
		log:    logging.For("webhook"),
		queue:  make(chan Event, queueSize),
		done:   make(chan struct{}),
	}
}

// Start begins processing events from the queue
func (d *Dispatcher) Start() {
	go d.worker()
}

// Close stops accepting events and waits for queued deliveries to finish.
// Close is safe to call multiple times.
func (d *Dispatcher) Close() error {
	if !atomic.CompareAndSwapInt32(&d.closed, 0, 1) {
		return nil
	}
	close(d.queue)
	<-d.done
	return nil
}

// Dispatch queues an event without blocking. A full queue drops the event.
func (d *Dispatcher) Dispatch(event Event) {
	if atomic.LoadInt32(&d.closed) == 1 {
		return
	}
	select {
	case d.queue <- event:
		d.log.Debug().Str("event", event.Type).Str("id", event.ID).Int("queued", len(d.queue)).Msg("event queued")
	default:
		telemetry.WebhookDeliveries.WithLabelValues(telemetry.DeliveryDropped).Inc()
		d.log.Error().Str("event", event.Type).Str("id", event.ID).Int("queue_size", queueSize).Msg("queue full, dropping event")
	}
}

// Forward dispatches a table.reloaded event for every snapshot update until
// ctx is cancelled.
func (d *Dispatcher) Forward(ctx context.Context) {
	ch, unsub := snapshot.Subscribe()
	defer unsub()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			d.Dispatch(NewTableEvent(ev, time.Now()))
		}
	}
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for event := range d.queue {
		payload, err := json.Marshal(event)
		if err != nil {
			d.log.Error().Err(err).Str("id", event.ID).Msg("failed to marshal event payload")
			continue
		}
		for _, url := range d.urls {
			d.deliverWithRetry(url, event, payload)
		}
	}
}

// deliverWithRetry posts payload to url, retrying with exponential backoff.
func (d *Dispatcher) deliverWithRetry(url string, event Event, payload []byte) bool {
	log := d.log.With().Str("url", url).Str("event", event.Type).Str("id", event.ID).Logger()
	attempts := d.opts.MaxRetries + 1

	for attempt := 0; attempt < attempts; attempt++ {
		start := time.Now()
		status, err := d.deliver(url, event, payload)
		elapsed := time.Since(start)

		if err == nil {
			telemetry.WebhookDeliveries.WithLabelValues(telemetry.DeliveryOK).Inc()
			log.Info().Int("status", status).Dur("duration", elapsed).Int("attempt", attempt+1).Msg("delivery succeeded")
			return true
		}

		if attempt+1 < attempts {
			backoff := d.opts.Backoff << attempt
			log.Warn().Err(err).Int("attempt", attempt+1).Int("attempts", attempts).Dur("retry_in", backoff).Msg("delivery failed")
			time.Sleep(backoff)
			continue
		}
		telemetry.WebhookDeliveries.WithLabelValues(telemetry.DeliveryFailed).Inc()
		log.Error().Err(err).Int("attempts", attempts).Msg("delivery failed permanently")
	}
	return false
}

// deliver makes one POST attempt. Non-2xx responses are errors.
func (d *Dispatcher) deliver(url string, event Event, payload []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, event.Type)
	req.Header.Set(HeaderDelivery, event.ID)
	if d.opts.Secret != "" {
		req.Header.Set(HeaderSignature, ComputeHMAC(payload, d.opts.Secret))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
		return resp.StatusCode, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
