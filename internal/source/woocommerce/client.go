// Package woocommerce reads published products from a WooCommerce store over
// the wc/v3 REST API and adapts them to the feed's source model.
package woocommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the store does not know the requested entity.
var ErrNotFound = errors.New("not found")

const apiBase = "/wp-json/wc/v3"

// ClientConfig holds WooCommerce REST API client settings
type ClientConfig struct {
	BaseURL           string
	ConsumerKey       string
	ConsumerSecret    string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxRetries        int
}

// Client is a rate-limited wc/v3 REST client with retry on transient errors.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBackoff   time.Duration
}

// NewClient creates a new WooCommerce REST client
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = 5
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:      rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		maxRetries:   cfg.MaxRetries,
		retryBackoff: time.Second,
	}
}

// get performs an authenticated GET against the wc/v3 API and decodes the
// JSON response into out. Retries on 429 and 5xx with linear backoff.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("consumer_key", c.consumerKey)
	query.Set("consumer_secret", c.consumerSecret)
	reqURL := c.baseURL + apiBase + path + "?" + query.Encode()

	var lastStatus int
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, time.Duration(attempt)*c.retryBackoff); err != nil {
				return err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("building request for %s: %w", path, err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "feed-service/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("decoding %s response: %w", path, err)
			}
			return nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastStatus = resp.StatusCode

		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("woocommerce %s: %w", path, ErrNotFound)
		}
		if !retryableStatus(resp.StatusCode) {
			return fmt.Errorf("woocommerce %s: unexpected status %d", path, resp.StatusCode)
		}
	}

	if lastErr != nil {
		return fmt.Errorf("woocommerce %s failed after %d attempts: %w", path, c.maxRetries+1, lastErr)
	}
	return fmt.Errorf("woocommerce %s failed after %d attempts: last status %d", path, c.maxRetries+1, lastStatus)
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
