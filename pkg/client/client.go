// Package client provides the HTTP client for the listing API with error
// classification, optional page caching, and request metrics.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"animeharvest/pkg/cache"
	"animeharvest/pkg/logging"
)

// Prometheus metrics for listing API requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvest_requests_total",
		Help: "Total listing API requests by status",
	}, []string{"status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "harvest_request_duration_seconds",
		Help:    "Listing API request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvest_errors_total",
		Help: "Total listing API errors by class",
	}, []string{"class"})
)

// DefaultBaseURL is the public listing endpoint.
const DefaultBaseURL = "https://api.jikan.moe/v4/anime"

// DefaultTimeout bounds one page request.
const DefaultTimeout = 10 * time.Second

// Config holds the client configuration.
type Config struct {
	// BaseURL is the listing endpoint; pages are fetched as BaseURL?page=N.
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout per page request.
	Timeout time.Duration

	// Redis enables the optional page cache when non-nil.
	Redis *redis.Client

	// CacheTTL is how long fetched page bodies stay cached.
	CacheTTL time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   DefaultTimeout,
		CacheTTL:  cache.DefaultTTL,
	}
}

// Client fetches single listing pages. It owns one HTTP client for the
// run's lifetime; there is no per-request reconnection.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager // nil when caching is disabled
	config     Config
	logger     zerolog.Logger
}

// New creates a new listing API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	logger := logging.NewLogger("api-client")

	var pageCache *cache.Manager
	if cfg.Redis != nil {
		pageCache = cache.NewManager(cfg.Redis, cfg.CacheTTL)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:  pageCache,
		config: cfg,
		logger: logger,
	}, nil
}

// GetPage fetches one listing page and returns its raw body.
//
// Non-2xx statuses and transport failures return an *APIError carrying the
// error class; the caller decides whether and how to retry. A cached body is
// returned without touching the network.
func (c *Client) GetPage(ctx context.Context, page int) ([]byte, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(startTime).Seconds())
	}()

	cacheKey := cache.Key{Endpoint: c.config.BaseURL, Page: page}

	if c.cache != nil {
		entry, err := c.cache.Get(ctx, cacheKey)
		if err == nil {
			c.logger.Debug().
				Int("page", page).
				Time("fetched_at", entry.FetchedAt).
				Msg("Page served from cache")
			requestsTotal.WithLabelValues("cache_hit").Inc()
			return entry.Body, nil
		}
		if err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Int("page", page).Msg("Cache get error")
		}
	}

	url := fmt.Sprintf("%s?page=%d", c.config.BaseURL, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Int("page", page).Msg("HTTP request failed")
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues("network_error").Inc()
		return nil, &APIError{
			Page:       page,
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errClass := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(errClass)).Inc()

		c.logger.Warn().
			Int("page", page).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Listing API request error")

		return nil, &APIError{
			Page:       page,
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{
			Page:       page,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, cacheKey, body); err != nil {
			c.logger.Warn().Err(err).Int("page", page).Msg("Failed to cache page")
		} else {
			c.logger.Debug().Int("page", page).Msg("Cached page body")
		}
	}

	return body, nil
}

// classifyStatus categorizes an HTTP status for observability and retry
// decisions.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// BaseURL returns the configured listing endpoint.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Close closes the client and releases resources. The HTTP client's idle
// connections are dropped so the run's session does not outlive it.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
