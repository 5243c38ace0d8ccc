// Package client provides the GitHub REST client used by the sampler. Each
// call performs exactly one HTTP round trip; there is no retry layer.
package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/gh-repo-sampler/pkg/cache"
	"github.com/Sternrassler/gh-repo-sampler/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"

	// DefaultAPIVersion is sent as X-GitHub-Api-Version.
	DefaultAPIVersion = "2022-11-28"

	// SearchResource is the rate limit bucket GitHub reports for search calls.
	SearchResource = "search"

	acceptHeader = "application/vnd.github+json"

	// maxBodyBytes bounds a single response body. A full search page is well
	// below this.
	maxBodyBytes = 16 << 20
)

var (
	githubRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "github_requests_total",
		Help: "Total GitHub requests by endpoint and status",
	}, []string{"endpoint", "status"})

	githubRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "github_request_duration_seconds",
		Help:    "GitHub request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	githubErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "github_errors_total",
		Help: "Total GitHub errors by class",
	}, []string{"class"})
)

// Config holds the client configuration.
type Config struct {
	// BaseURL of the REST API. Defaults to DefaultBaseURL.
	BaseURL string

	// User-Agent header (REQUIRED by GitHub)
	// Format: "AppName/Version (contact)"
	UserAgent string

	// Token is used when a call does not carry its own token. Empty means
	// unauthenticated requests.
	Token string

	// APIVersion is sent as X-GitHub-Api-Version. Defaults to DefaultAPIVersion.
	APIVersion string

	// Timeout bounds a whole Get, limiter wait included.
	Timeout time.Duration

	// Outbound token bucket. RequestsPerSecond 0 disables it.
	RequestsPerSecond float64
	Burst             int

	// Redis enables the ETag cache and shares rate limit state between
	// instances. Optional.
	Redis *redis.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(redis *redis.Client, userAgent string) Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		UserAgent:         userAgent,
		APIVersion:        DefaultAPIVersion,
		Timeout:           10 * time.Second,
		RequestsPerSecond: 0.5,
		Burst:             5,
		Redis:             redis,
	}
}

// Client is the GitHub REST client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	tracker    *ratelimit.Tracker
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// New creates a new GitHub client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}
	if cfg.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("requests_per_second must be >= 0 (got %g)", cfg.RequestsPerSecond)
	}
	if cfg.RequestsPerSecond > 0 && cfg.Burst < 1 {
		return nil, fmt.Errorf("burst must be >= 1 when rate limiting (got %d)", cfg.Burst)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}

	logger := log.With().Str("component", "github-client").Logger()

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		config:     cfg,
		logger:     logger,
	}

	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}

	var store ratelimit.Store
	if cfg.Redis != nil {
		store = ratelimit.NewRedisStore(cfg.Redis)
		c.cache = cache.NewManager(cfg.Redis)
	}
	c.tracker = ratelimit.NewTracker(store, logger)

	return c, nil
}

// Get performs a single GET against path with the given query parameters.
// token overrides Config.Token when non-empty. A non-2xx status is not an
// error: the status and body are returned for the caller to classify. err is
// non-nil only when no response was obtained, and is then a *TransportError.
// Config.Timeout covers the limiter wait and the round trip together.
func (c *Client) Get(ctx context.Context, path string, params url.Values, token string) (int, []byte, error) {
	endpoint := path
	start := time.Now()
	defer func() {
		githubRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	if token == "" {
		token = c.config.Token
	}
	tokenID := TokenID(token)

	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	// Wait returns at once when the reservation would outlast the deadline.
	callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(callCtx); err != nil {
			return 0, nil, c.transportFailure(endpoint, "wait", target, err)
		}
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, &TransportError{Op: "build", URL: target, Err: err}
	}

	cacheKey := cache.Key{Endpoint: path, Query: params, TokenID: tokenID}
	var cached *cache.Entry
	if c.cache != nil {
		cached, err = c.cache.Get(ctx, cacheKey)
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
		if cache.AddConditionalHeaders(req, cached) {
			cache.ConditionalRequestsSent.Inc()
			c.logger.Debug().
				Str("endpoint", endpoint).
				Str("etag", cached.ETag).
				Msg("Making conditional request")
		}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", c.config.APIVersion)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("query", params.Get("q")).
		Str("page", params.Get("page")).
		Bool("authenticated", token != "").
		Msg("Executing GitHub request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, c.transportFailure(endpoint, "do", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, c.transportFailure(endpoint, "read", target, err)
	}

	if err := c.tracker.UpdateFromHeaders(ctx, tokenID, resp.Header); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
	}

	status := resp.StatusCode
	githubRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()

	switch {
	case status == http.StatusNotModified && cached != nil:
		cache.NotModifiedResponses.Inc()
		c.logger.Debug().Str("endpoint", endpoint).Msg("304 Not Modified - using cache")
		if err := c.cache.Refresh(ctx, cacheKey, cached, cache.ExpiresAt(resp.Header, time.Now())); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to refresh cache entry")
		}
		return http.StatusOK, cached.Body, nil

	case status == http.StatusOK && c.cache != nil:
		entry := cache.NewEntry(status, resp.Header, body, time.Now())
		if entry.HasValidators() {
			if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to cache response")
			}
		}
	}

	if class := ClassifyStatus(status); class != "" {
		githubErrorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", status).
			Str("error_class", string(class)).
			Msg("GitHub request error")
	}

	return status, body, nil
}

func (c *Client) transportFailure(endpoint, op, target string, err error) error {
	githubErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
	githubRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
	c.logger.Error().Err(err).Str("endpoint", endpoint).Str("op", op).Msg("GitHub request failed")
	return &TransportError{Op: op, URL: target, Err: err}
}

// RateLimitState returns the last observed search rate limit for token, or
// for Config.Token when token is empty.
func (c *Client) RateLimitState(ctx context.Context, token string) (*ratelimit.State, error) {
	if token == "" {
		token = c.config.Token
	}
	return c.tracker.State(ctx, SearchResource, TokenID(token))
}

// TokenID identifies a token in cache and rate limit keys without storing it.
func TokenID(token string) string {
	if token == "" {
		return "anon"
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

// Close releases resources. The Redis client is owned by the caller.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
