// Package metrics provides the centralized Prometheus metrics registry for
// the listpager client. All metrics are defined in their respective packages
// (pagination, client, cache, ratelimit) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the listpager client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Pagination Metrics (pkg/pagination):
//   - listpager_pages_fetched_total{mode} (Counter): Pages fetched by retrieval mode
//     (fetch_all, fetch_page, iter_pages)
//   - listpager_items_returned_total{mode} (Counter): Items surfaced to callers by mode
//   - listpager_cap_truncations_total (Counter): Retrievals truncated at the result cap
//
// Request Metrics (pkg/client):
//   - listpager_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - listpager_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - listpager_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - listpager_retries_total{error_class} (Counter): Retry attempts by error class
//   - listpager_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - listpager_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Cache Metrics (pkg/cache):
//   - listpager_cache_hits_total (Counter): Page cache hits
//   - listpager_cache_misses_total (Counter): Page cache misses
//   - listpager_cache_writes_total (Counter): Page responses written to cache
//   - listpager_cache_errors_total{operation} (Counter): Cache operation errors
//
// Rate Limit Metrics (pkg/ratelimit):
//   - listpager_ratelimit_waits_total (Counter): Requests that waited for a token
//   - listpager_ratelimit_wait_seconds (Histogram): Time spent waiting for a token
//   - listpager_ratelimit_cancels_total (Counter): Token waits abandoned by cancellation
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(listpager_cache_hits_total[5m])) /
//   (sum(rate(listpager_cache_hits_total[5m])) + sum(rate(listpager_cache_misses_total[5m])))
//
//   # Pages per retrieval mode
//   sum by (mode) (rate(listpager_pages_fetched_total[5m]))
//
//   # Request Error Rate
//   rate(listpager_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(listpager_request_duration_seconds_bucket[5m]))
