package fetcher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"animeharvest/pkg/client"
	"animeharvest/pkg/extract"
	"animeharvest/pkg/logging"
)

// Prometheus metrics for the fetch loop.
var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvest_pages_fetched_total",
		Help: "Total pages fetched and extracted successfully",
	})

	pagesSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvest_pages_skipped_total",
		Help: "Total pages skipped after exhausting retries",
	})

	recordsExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvest_records_extracted_total",
		Help: "Total records extracted across all pages",
	})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvest_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "harvest_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvest_retry_exhausted_total",
		Help: "Total number of pages that exhausted their retry budget",
	})
)

// progressLogInterval controls how often FetchRange emits a progress line.
const progressLogInterval = 50

// Config holds the fetch loop configuration.
type Config struct {
	// MaxRetries is the total attempts per page, shared between rate-limit
	// and transient failures.
	MaxRetries int

	// Delay is the steady-state pause between two pages. It is independent
	// of the backoff sleeps used on error.
	Delay time.Duration

	// BackoffUnit is the base unit for exponential backoff: attempt n
	// (0-indexed) sleeps 2^n units. Production uses one second.
	BackoffUnit time.Duration

	// PageSize is the fixed item count per page used for sequence IDs.
	PageSize int
}

// DefaultConfig returns the default fetch loop configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		Delay:       500 * time.Millisecond,
		BackoffUnit: 1 * time.Second,
		PageSize:    extract.PageSize,
	}
}

// PageClient fetches the raw body of a single listing page.
type PageClient interface {
	GetPage(ctx context.Context, page int) ([]byte, error)
}

// Fetcher retrieves page ranges from the listing API and accumulates
// normalized records.
type Fetcher struct {
	client PageClient
	config Config
	logger zerolog.Logger

	// sleep is swapped out in tests to assert backoff timing without
	// real waiting.
	sleep func(ctx context.Context, d time.Duration) bool
}

// New creates a new fetcher.
func New(pageClient PageClient, cfg Config) *Fetcher {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BackoffUnit <= 0 {
		cfg.BackoffUnit = 1 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = extract.PageSize
	}

	return &Fetcher{
		client: pageClient,
		config: cfg,
		logger: logging.NewLogger("fetcher"),
		sleep:  blockingSleep,
	}
}

// FetchPage fetches one page with per-page retry and backoff.
//
// Returns (records, true) on success, (nil, false) once the retry budget is
// exhausted or the context is cancelled. Failures never escape as errors:
// an exhausted page is an absence, not a fault of the run.
func (f *Fetcher) FetchPage(ctx context.Context, page int) ([]extract.Record, bool) {
	for attempt := 0; attempt < f.config.MaxRetries; attempt++ {
		body, err := f.client.GetPage(ctx, page)
		if err == nil {
			var raw extract.RawPage
			if decodeErr := json.Unmarshal(body, &raw); decodeErr != nil {
				f.logger.Warn().
					Err(decodeErr).
					Int("page", page).
					Int("attempt", attempt+1).
					Msg("Failed to decode page body")
				// Unparseable body counts as a transient failure.
				if attempt < f.config.MaxRetries-1 {
					if !f.pause(ctx, f.backoff(attempt), client.ErrorClassNetwork) {
						return nil, false
					}
				}
				continue
			}

			records := extract.ExtractPage(raw, page, f.config.PageSize)
			if attempt > 0 {
				f.logger.Info().
					Int("page", page).
					Int("attempt", attempt+1).
					Msg("Page succeeded after retry")
			}
			return records, true
		}

		if client.IsRateLimited(err) {
			// Rate limited: always back off and retry, even on the final
			// attempt. The budget is shared with transient failures.
			wait := f.backoff(attempt)
			f.logger.Warn().
				Int("page", page).
				Int("attempt", attempt+1).
				Dur("backoff", wait).
				Msg("Rate limited, backing off")
			if !f.pause(ctx, wait, client.ErrorClassRateLimit) {
				return nil, false
			}
			continue
		}

		errClass := client.ClassOf(err)
		f.logger.Warn().
			Err(err).
			Int("page", page).
			Int("attempt", attempt+1).
			Str("error_class", string(errClass)).
			Msg("Page attempt failed")

		if attempt < f.config.MaxRetries-1 {
			if !f.pause(ctx, f.backoff(attempt), errClass) {
				return nil, false
			}
		}
	}

	retryExhaustedTotal.Inc()
	f.logger.Warn().
		Int("page", page).
		Int("max_retries", f.config.MaxRetries).
		Msg("Retry attempts exhausted, page skipped")

	return nil, false
}

// FetchRange fetches pages startPage..endPage inclusive, strictly
// sequentially, and returns the accumulated records.
//
// Exhausted pages are skipped without affecting already accumulated
// records; an entirely failed run returns an empty slice, never an error.
func (f *Fetcher) FetchRange(ctx context.Context, startPage, endPage int) []extract.Record {
	start := time.Now()
	records := make([]extract.Record, 0, (endPage-startPage+1)*f.config.PageSize)
	fetched := 0

	f.logger.Info().
		Int("start_page", startPage).
		Int("end_page", endPage).
		Msg("Starting page fetch")

	for page := startPage; page <= endPage; page++ {
		pageRecords, ok := f.FetchPage(ctx, page)
		if ok {
			records = append(records, pageRecords...)
			fetched++
			pagesFetchedTotal.Inc()
			recordsExtractedTotal.Add(float64(len(pageRecords)))

			f.logger.Debug().
				Int("page", page).
				Int("records", len(pageRecords)).
				Msg("Page fetched")
		} else {
			pagesSkippedTotal.Inc()
		}

		if ctx.Err() != nil {
			f.logger.Warn().
				Int("page", page).
				Int("records", len(records)).
				Msg("Fetch cancelled, returning partial result")
			return records
		}

		if fetched > 0 && fetched%progressLogInterval == 0 {
			f.logger.Info().
				Int("fetched", fetched).
				Int("page", page).
				Int("end_page", endPage).
				Int("records", len(records)).
				Msg("Fetch progress")
		}

		// Politeness throttle between pages, not after the last one.
		if page < endPage {
			if !f.sleep(ctx, f.config.Delay) {
				f.logger.Warn().
					Int("page", page).
					Int("records", len(records)).
					Msg("Fetch cancelled during delay, returning partial result")
				return records
			}
		}
	}

	f.logger.Info().
		Int("pages_fetched", fetched).
		Int("pages_total", endPage-startPage+1).
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return records
}

// backoff returns the exponential backoff duration for a 0-indexed attempt:
// 1, 2, 4 units for attempts 0, 1, 2.
func (f *Fetcher) backoff(attempt int) time.Duration {
	return f.config.BackoffUnit * time.Duration(1<<attempt)
}

// pause sleeps for a backoff duration, recording retry metrics. Returns
// false if the context was cancelled during the sleep.
func (f *Fetcher) pause(ctx context.Context, d time.Duration, errClass client.ErrorClass) bool {
	retriesTotal.WithLabelValues(string(errClass)).Inc()
	retryBackoffSeconds.WithLabelValues(string(errClass)).Observe(d.Seconds())
	return f.sleep(ctx, d)
}

// blockingSleep blocks for d with context cancellation support.
func blockingSleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
