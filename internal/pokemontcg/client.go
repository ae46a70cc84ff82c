// Package pokemontcg is a rate-limited client for the Pokemon TCG API
// (api.pokemontcg.io/v2). All requests flow through one bounded retry loop
// that paces itself with a shared token bucket, so overlapping sync runs
// still respect the upstream rate limit globally.
package pokemontcg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/drewfoos/pokeshelf/backend/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.pokemontcg.io/v2"

	defaultTimeout      = 30 * time.Second
	defaultMaxRetries   = 3
	defaultRetryWait    = time.Second
	defaultRPS          = 2
	defaultBurst        = 1
	defaultSetCacheSize = 256
)

var (
	// ErrMalformedResponse marks an empty or undecodable 2xx body.
	ErrMalformedResponse = errors.New("pokemontcg: malformed response body")
	// ErrRateLimited marks a request that exhausted its retry budget on 429s.
	ErrRateLimited = errors.New("pokemontcg: rate limited by upstream")
	// ErrNotFound marks a 404 for a requested resource.
	ErrNotFound = errors.New("pokemontcg: resource not found")
)

// APIError carries the structured message of a non-2xx upstream response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pokemontcg: upstream returned status %d: %s", e.StatusCode, e.Message)
}

// rateLimitError carries a server-provided Retry-After through the retry loop.
type rateLimitError struct {
	retryAfter time.Duration
}

func (e *rateLimitError) Error() string {
	if e.retryAfter > 0 {
		return fmt.Sprintf("pokemontcg: rate limited by upstream (retry after %v)", e.retryAfter)
	}
	return "pokemontcg: rate limited by upstream"
}

func (e *rateLimitError) Unwrap() error { return ErrRateLimited }

type Config struct {
	BaseURL           string
	APIKey            string
	MaxRetries        int
	RetryWait         time.Duration
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	maxRetries int
	retryWait  time.Duration
	setCache   *lru.Cache[string, Set]
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = defaultRetryWait
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}

	// The cache error only triggers on size <= 0
	setCache, _ := lru.New[string, Set](defaultSetCacheSize)

	return &Client{
		httpClient: cfg.HTTPClient,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		maxRetries: cfg.MaxRetries,
		retryWait:  cfg.RetryWait,
		setCache:   setCache,
	}
}

// get issues a GET against an endpoint and decodes the JSON body into out.
// Transient failures (transport errors, 429) are retried inside a bounded
// loop; other upstream errors return immediately.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryWait
	bo.MaxElapsedTime = 0 // the attempt counter is the budget, not wall clock

	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		body, retryable, err := c.do(ctx, reqURL)
		if err == nil {
			if len(bytes.TrimSpace(body)) == 0 {
				return fmt.Errorf("%w: empty body from %s", ErrMalformedResponse, endpoint)
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("%w: decoding %s: %v", ErrMalformedResponse, endpoint, err)
			}
			return nil
		}
		if !retryable {
			return err
		}

		lastErr = err
		if attempt >= c.maxRetries {
			return fmt.Errorf("pokemontcg: giving up on %s after %d attempts: %w", endpoint, attempt+1, lastErr)
		}

		delay := bo.NextBackOff()
		var rl *rateLimitError
		if errors.As(err, &rl) && rl.retryAfter > 0 {
			delay = rl.retryAfter
		}

		metrics.UpstreamRetriesTotal.Inc()
		log.Printf("Pokemon TCG client: retrying %s in %v (attempt %d/%d): %v",
			endpoint, delay, attempt+1, c.maxRetries, err)

		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
	}
}

// do performs a single attempt. retryable reports whether the caller's retry
// loop may try again.
func (c *Client) do(ctx context.Context, reqURL string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("pokemontcg: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	// Unauthenticated calls are allowed, just throttled harder upstream
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, true, fmt.Errorf("pokemontcg: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.UpstreamRequestsTotal.WithLabelValues("rate_limited").Inc()
		return nil, true, &rateLimitError{retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UpstreamRequestsTotal.WithLabelValues("error").Inc()
		msg := upstreamErrorMessage(body)
		if resp.StatusCode == http.StatusNotFound {
			return nil, false, fmt.Errorf("%w: %s", ErrNotFound, msg)
		}
		return nil, false, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if readErr != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, true, fmt.Errorf("pokemontcg: failed to read response body: %w", readErr)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues("ok").Inc()
	return body, false, nil
}

// upstreamErrorMessage extracts the structured error message from a non-2xx
// body, falling back to the raw text.
func upstreamErrorMessage(body []byte) string {
	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	if msg := string(bytes.TrimSpace(body)); msg != "" {
		return msg
	}
	return "no error detail provided"
}

// parseRetryAfter converts a Retry-After header (seconds) to a duration.
// Returns 0 when absent or unparseable.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
