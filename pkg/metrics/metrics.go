// Package metrics provides centralized Prometheus metrics registry for the
// nutrition lookup service. All metrics are defined in their respective
// packages (lookup, ninjas, quota) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the service.
// All metrics are automatically registered via promauto in their respective
// packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Lookup Metrics (pkg/lookup):
//   - nutrition_lookups_total{outcome} (Counter): Lookups by outcome
//     (found, not_found, unavailable, invalid, error)
//   - nutrition_lookup_duration_seconds (Histogram): End-to-end lookup duration
//   - nutrition_cache_hits_total (Counter): Lookups served from the local store
//   - nutrition_cache_misses_total (Counter): Lookups that missed the local store
//
// Provider Metrics (pkg/ninjas):
//   - nutrition_provider_requests_total{status} (Counter): Provider requests by HTTP status
//   - nutrition_provider_request_duration_seconds (Histogram): Provider request duration
//   - nutrition_provider_errors_total{class} (Counter): Provider errors by class
//     (quota, server, client, network)
//   - nutrition_provider_retries_total (Counter): Retry attempts
//   - nutrition_provider_retry_exhausted_total (Counter): Lookups that exhausted max retries
//
// Quota Metrics (pkg/quota):
//   - nutrition_quota_daily_calls (Gauge): Provider calls recorded today
//   - nutrition_quota_monthly_calls (Gauge): Provider calls recorded this month
//   - nutrition_quota_blocks_total (Counter): Lookups blocked by the monthly ceiling
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(nutrition_cache_hits_total[5m])) /
//   (sum(rate(nutrition_cache_hits_total[5m])) + sum(rate(nutrition_cache_misses_total[5m])))
//
//   # Monthly Quota Headroom
//   nutrition_quota_monthly_calls
//
//   # Degraded Lookup Rate
//   rate(nutrition_lookups_total{outcome="unavailable"}[5m])
//
//   # P95 Lookup Latency
//   histogram_quantile(0.95, rate(nutrition_lookup_duration_seconds_bucket[5m]))
