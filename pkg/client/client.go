// Package client provides a generic HTTP client for offset-paginated list
// APIs with rate limiting, response caching, retries, and error handling.
// It produces the single-page fetchers the pagination package drives; the
// retry policy lives here, so the Paginator always sees an already-retried
// fetch.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mhelbich/listpager/pkg/cache"
	"github.com/mhelbich/listpager/pkg/ratelimit"
)

// Prometheus metrics for list API requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listpager_requests_total",
		Help: "Total list API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "listpager_request_duration_seconds",
		Help:    "List API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listpager_errors_total",
		Help: "Total list API errors by class",
	}, []string{"class"})
)

// Client is an HTTP client for one upstream list API.
type Client struct {
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the upstream API root, e.g. "https://gamma-api.example.com".
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout per HTTP request.
	Timeout time.Duration

	// Rate limiting
	EnableRateLimiting bool
	RequestsPerSecond  float64
	BurstCapacity      int
	RateLimitPerHost   bool

	// Caching. Redis is required only when EnableResponseCaching is set.
	Redis                 *redis.Client
	EnableResponseCaching bool
	CacheTTL              time.Duration

	// Retry. Zero values select the per-error-class defaults.
	MaxRetries     int
	InitialBackoff time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL, userAgent string) Config {
	return Config{
		BaseURL:            baseURL,
		UserAgent:          userAgent,
		Timeout:            30 * time.Second,
		EnableRateLimiting: true,
		RequestsPerSecond:  5.0,
		BurstCapacity:      10,
		RateLimitPerHost:   true,
		CacheTTL:           60 * time.Second,
	}
}

// New creates a new list API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.EnableResponseCaching && cfg.Redis == nil {
		return nil, fmt.Errorf("redis client is required when response caching is enabled")
	}

	logger := log.With().Str("component", "list-client").Logger()

	var limiter *ratelimit.Limiter
	if cfg.EnableRateLimiting {
		limiter = ratelimit.NewLimiter(cfg.RequestsPerSecond, cfg.BurstCapacity, cfg.RateLimitPerHost, logger)
	}

	var cacheManager *cache.Manager
	if cfg.EnableResponseCaching {
		cacheManager = cache.NewManager(cfg.Redis)
		if cfg.CacheTTL <= 0 {
			cfg.CacheTTL = 60 * time.Second
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		cache:      cacheManager,
		config:     cfg,
		logger:     logger,
	}, nil
}

// Get performs a GET against an endpoint path with query parameters and
// returns the response body. This is the core request method: it gates on
// the rate limiter, consults the response cache, executes with retry and
// backoff, and classifies failures.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	reqURL := c.buildURL(endpoint, params)

	// Step 1: Rate limit gate
	if c.limiter != nil {
		if err := c.limiter.Acquire(ctx, reqURL); err != nil {
			c.logger.Warn().
				Str("endpoint", endpoint).
				Err(err).
				Msg("Request blocked by rate limiter")
			requestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	// Step 2: Check cache
	cacheKey := cache.Key{Endpoint: endpoint, Query: params}
	if c.cache != nil {
		entry, err := c.cache.Get(ctx, cacheKey)
		if err != nil && err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
		if entry != nil {
			c.logger.Debug().Str("endpoint", endpoint).Msg("Serving page from cache")
			return entry.Body, nil
		}
	}

	// Step 3: Execute with retry
	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("url", reqURL).
		Msg("Executing list request")

	var body []byte
	var errClass ErrorClass

	retryErr := retryWithBackoff(ctx, c.retryConfigFor, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
			errClass = classify(0, err)
			errorsTotal.WithLabelValues(string(errClass)).Inc()
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return &APIError{ErrorClass: errClass, Message: "request failed", Err: err}
		}
		defer resp.Body.Close()

		requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode >= 400 {
			errClass = classify(resp.StatusCode, nil)
			errorsTotal.WithLabelValues(string(errClass)).Inc()
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("List request error")
			return &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Message:    resp.Status,
			}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			errClass = ErrorClassNetwork
			errorsTotal.WithLabelValues(string(errClass)).Inc()
			return &APIError{ErrorClass: errClass, Message: "read response body", Err: err}
		}
		return nil
	}, func(err error) ErrorClass {
		return errClass
	})
	if retryErr != nil {
		return nil, retryErr
	}

	// Step 4: Update cache on success
	if c.cache != nil {
		entry := cache.NewEntry(body, c.config.CacheTTL)
		if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		} else {
			c.logger.Debug().
				Str("endpoint", endpoint).
				Dur("ttl", entry.TTL()).
				Msg("Cached page response")
		}
	}

	return body, nil
}

// retryConfigFor picks the per-class retry configuration, with the client
// config overriding attempt count and initial backoff when set.
func (c *Client) retryConfigFor(errorClass ErrorClass) RetryConfig {
	cfg := RetryConfigForErrorClass(errorClass)
	if c.config.MaxRetries > 0 {
		cfg.MaxAttempts = c.config.MaxRetries
	}
	if c.config.InitialBackoff > 0 {
		cfg.InitialBackoff = c.config.InitialBackoff
	}
	return cfg
}

func (c *Client) buildURL(endpoint string, params url.Values) string {
	base := strings.TrimRight(c.config.BaseURL, "/")
	path := "/" + strings.TrimLeft(endpoint, "/")
	if len(params) == 0 {
		return base + path
	}
	return base + path + "?" + params.Encode()
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
