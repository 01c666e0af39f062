// Package metrics provides the central Prometheus registry reference for
// the harvester. All metrics are defined in their respective packages
// (client, fetcher, cache) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the harvester.
// All metrics are automatically registered via promauto in their
// respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - harvest_requests_total{status} (Counter): Requests by HTTP status (plus "cache_hit", "network_error")
//   - harvest_request_duration_seconds (Histogram): Page request duration
//   - harvest_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Fetch Loop Metrics (pkg/fetcher):
//   - harvest_pages_fetched_total (Counter): Pages fetched and extracted successfully
//   - harvest_pages_skipped_total (Counter): Pages skipped after exhausting retries
//   - harvest_records_extracted_total (Counter): Records accumulated across all pages
//   - harvest_retries_total{error_class} (Counter): Retry attempts by error class
//   - harvest_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - harvest_retry_exhausted_total (Counter): Pages that exhausted their retry budget
//
// Cache Metrics (pkg/cache):
//   - harvest_cache_hits_total{layer="redis"} (Counter): Page cache hits
//   - harvest_cache_misses_total (Counter): Page cache misses
//   - harvest_cache_size_bytes{layer="redis"} (Gauge): Cache size in bytes
//   - harvest_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Skipped page ratio (gap pressure)
//   rate(harvest_pages_skipped_total[5m]) /
//   (rate(harvest_pages_fetched_total[5m]) + rate(harvest_pages_skipped_total[5m]))
//
//   # Rate limit pressure
//   rate(harvest_retries_total{error_class="rate_limit"}[5m])
//
//   # P95 page request latency
//   histogram_quantile(0.95, rate(harvest_request_duration_seconds_bucket[5m]))
//
//   # Cache hit rate
//   sum(rate(harvest_cache_hits_total[5m])) /
//   (sum(rate(harvest_cache_hits_total[5m])) + sum(rate(harvest_cache_misses_total[5m])))
