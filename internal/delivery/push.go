// Package delivery pushes the generated feed to an external endpoint on a
// schedule, for platforms that ingest feeds rather than pulling them.
package delivery

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/storefeed/feed-service/internal/feed"
)

var (
	pushesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_pushes_total",
		Help: "Total number of outbound feed pushes by status",
	}, []string{"status"})

	pushDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feed_push_duration_seconds",
		Help:    "Duration of outbound feed pushes",
		Buckets: prometheus.DefBuckets,
	})
)

// Config holds settings for outbound feed delivery
type Config struct {
	EndpointURL string
	AuthToken   string
	Format      string
	Timeout     time.Duration
}

// Pusher builds the feed and POSTs it to the configured endpoint.
type Pusher struct {
	cfg    Config
	gen    *feed.Generator
	client *http.Client
	logger zerolog.Logger
}

// NewPusher creates a new feed pusher
func NewPusher(cfg Config, gen *feed.Generator, logger zerolog.Logger) *Pusher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Pusher{
		cfg:    cfg,
		gen:    gen,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With().Str("component", "delivery").Logger(),
	}
}

// Push builds the feed once and delivers it. A failed push is reported to the
// caller and retried on the next scheduled run, never within the same run.
func (p *Pusher) Push(ctx context.Context) error {
	attemptID := uuid.NewString()
	started := time.Now()

	rows := p.gen.BuildFeed(ctx)
	payload, contentType := feed.Serialize(rows, p.cfg.Format)

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.EndpointURL, bytes.NewReader(payload))
	if err != nil {
		pushesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("building push request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Delivery-Attempt", attemptID)
	if p.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.AuthToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		pushesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("pushing feed to %s: %w", p.cfg.EndpointURL, err)
	}
	defer resp.Body.Close()

	pushDuration.Observe(time.Since(started).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		pushesTotal.WithLabelValues("rejected").Inc()
		return fmt.Errorf("feed push rejected with status %d", resp.StatusCode)
	}

	pushesTotal.WithLabelValues("success").Inc()
	p.logger.Info().
		Str("attempt_id", attemptID).
		Int("rows", len(rows)).
		Int("bytes", len(payload)).
		Dur("duration", time.Since(started)).
		Msg("Feed pushed")
	return nil
}
