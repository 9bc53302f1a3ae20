// Package lookup implements the food lookup orchestrator: local cache
// first, then a quota-gated, retried provider call whose result is
// persisted for future lookups.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nblkmal/nutrition-hub/pkg/ninjas"
	"github.com/nblkmal/nutrition-hub/pkg/quota"
	"github.com/nblkmal/nutrition-hub/pkg/slug"
	"github.com/nblkmal/nutrition-hub/pkg/storage"
	"github.com/nblkmal/nutrition-hub/pkg/validate"
)

// Prometheus metrics for lookup operations.
var (
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nutrition_lookups_total",
		Help: "Total food lookups by outcome",
	}, []string{"outcome"})

	lookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nutrition_lookup_duration_seconds",
		Help:    "Food lookup duration in seconds",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10},
	})

	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nutrition_cache_hits_total",
		Help: "Total lookups served from the local store",
	})

	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nutrition_cache_misses_total",
		Help: "Total lookups that missed the local store",
	})
)

// Outcome tags the three steady-state results a lookup can produce.
type Outcome string

const (
	// OutcomeFound means nutrition data was returned, from cache or from
	// a fresh provider fetch.
	OutcomeFound Outcome = "found"

	// OutcomeNotFound means the provider confirmed zero matches.
	OutcomeNotFound Outcome = "not_found"

	// OutcomeUnavailable means the lookup was degraded by quota: either
	// the local monthly ceiling or a provider-side 429. Callers cannot
	// distinguish the two, and need not.
	OutcomeUnavailable Outcome = "unavailable"
)

// Extra lookupsTotal labels for lookups that terminate without a
// steady-state outcome. Together with the Outcome constants these enumerate
// the metric's full label set.
const (
	labelInvalid = "invalid"
	labelError   = "error"
)

// Result is the tagged outcome of a lookup. Food is set only for
// OutcomeFound.
type Result struct {
	Outcome Outcome
	Food    *storage.Food
}

// Store is the cache persistence consumed by the orchestrator.
type Store interface {
	FoodBySlug(ctx context.Context, foodSlug string) (*storage.Food, error)
	InsertFoodIfAbsent(ctx context.Context, food *storage.Food) error
}

// Fetcher performs the retried provider call.
type Fetcher interface {
	FetchWithRetry(ctx context.Context, query string) ([]ninjas.Item, error)
}

// QuotaGate is the admission and accounting interface of the quota ledger.
type QuotaGate interface {
	AllowCall(ctx context.Context) (bool, error)
	RecordCall(ctx context.Context, endpoint string)
}

// MetricsRecorder appends per-lookup search metrics.
type MetricsRecorder interface {
	Record(ctx context.Context, query, foodSlug string, cacheHit bool, responseTimeMs int64)
}

// Config holds orchestrator options.
type Config struct {
	// RecordBillableFailures also records a quota call for non-retryable
	// provider failures (4xx, malformed body) that did reach the provider
	// and may be billable. Off by default; a 429 is never recorded either
	// way.
	RecordBillableFailures bool
}

// Service orchestrates cache, quota, provider, and metrics for one lookup
// at a time. Many lookups may run concurrently; all side effects are
// additive or insert-if-absent, so concurrent duplicates converge.
type Service struct {
	store   Store
	fetcher Fetcher
	quota   QuotaGate
	metrics MetricsRecorder
	config  Config
	logger  zerolog.Logger
}

// NewService creates a lookup orchestrator.
func NewService(store Store, fetcher Fetcher, gate QuotaGate, metrics MetricsRecorder, cfg Config) *Service {
	return &Service{
		store:   store,
		fetcher: fetcher,
		quota:   gate,
		metrics: metrics,
		config:  cfg,
		logger:  log.With().Str("component", "lookup").Logger(),
	}
}

// Lookup resolves a raw query to nutrition data.
//
// Steady-state outcomes are returned in Result; a *ValidationError is
// returned for bad input, and any other error is an infrastructure or
// provider failure the caller should surface as such.
func (s *Service) Lookup(ctx context.Context, rawQuery string) (Result, error) {
	start := time.Now()
	defer func() {
		lookupDuration.Observe(time.Since(start).Seconds())
	}()

	// Step 1: validate before touching cache or quota.
	v := validate.Query(rawQuery)
	if !v.Valid {
		lookupsTotal.WithLabelValues(labelInvalid).Inc()
		return Result{}, &ValidationError{Reasons: v.Reasons}
	}
	query := v.Query

	// Step 2: normalize to the cache key.
	foodSlug := slug.Make(query)

	// Step 3: cache check. A hit never touches the quota ledger or the
	// provider.
	food, err := s.store.FoodBySlug(ctx, foodSlug)
	switch {
	case err == nil:
		cacheHitsTotal.Inc()
		lookupsTotal.WithLabelValues(string(OutcomeFound)).Inc()
		s.metrics.Record(ctx, query, foodSlug, true, elapsedMs(start))
		return Result{Outcome: OutcomeFound, Food: food}, nil
	case !errors.Is(err, storage.ErrNotFound):
		lookupsTotal.WithLabelValues(labelError).Inc()
		return Result{}, fmt.Errorf("cache check for %q: %w", foodSlug, err)
	}
	cacheMissesTotal.Inc()

	// Step 4: quota gate before any outbound call.
	allowed, err := s.quota.AllowCall(ctx)
	if err != nil {
		lookupsTotal.WithLabelValues(labelError).Inc()
		return Result{}, fmt.Errorf("quota check: %w", err)
	}
	if !allowed {
		s.logger.Warn().
			Str("query", query).
			Str("slug", foodSlug).
			Msg("Quota exceeded, cache miss not served")
		lookupsTotal.WithLabelValues(string(OutcomeUnavailable)).Inc()
		s.metrics.Record(ctx, query, foodSlug, false, elapsedMs(start))
		return Result{Outcome: OutcomeUnavailable}, nil
	}

	// Step 5: fetch from the provider with retry.
	items, err := s.fetcher.FetchWithRetry(ctx, query)
	if err != nil {
		return s.handleFetchError(ctx, query, foodSlug, start, err)
	}

	// Step 6: the provider confirmed zero matches. The 2xx still reached
	// the provider and counts against quota.
	if len(items) == 0 {
		s.quota.RecordCall(ctx, quota.EndpointNutrition)
		lookupsTotal.WithLabelValues(string(OutcomeNotFound)).Inc()
		s.metrics.Record(ctx, query, foodSlug, false, elapsedMs(start))
		return Result{Outcome: OutcomeNotFound}, nil
	}

	// Step 7: persist the first item exactly once and re-read the stored
	// row so every concurrent duplicate lookup returns the winner's data.
	food = foodFromItem(items[0], foodSlug)
	if err := s.store.InsertFoodIfAbsent(ctx, food); err != nil {
		lookupsTotal.WithLabelValues(labelError).Inc()
		return Result{}, fmt.Errorf("persist %q: %w", foodSlug, err)
	}

	stored, err := s.store.FoodBySlug(ctx, foodSlug)
	if err != nil {
		lookupsTotal.WithLabelValues(labelError).Inc()
		return Result{}, fmt.Errorf("read back %q after insert: %w", foodSlug, err)
	}

	s.quota.RecordCall(ctx, quota.EndpointNutrition)
	lookupsTotal.WithLabelValues(string(OutcomeFound)).Inc()
	s.metrics.Record(ctx, query, foodSlug, false, elapsedMs(start))

	s.logger.Info().
		Str("query", query).
		Str("slug", foodSlug).
		Msg("Cached nutrition data from provider")

	return Result{Outcome: OutcomeFound, Food: stored}, nil
}

// handleFetchError maps provider failures to the surface contract: a 429
// degrades to Unavailable, everything else propagates typed. No cache entry
// is written on any failure.
func (s *Service) handleFetchError(ctx context.Context, query, foodSlug string, start time.Time, err error) (Result, error) {
	if ninjas.IsQuotaExceeded(err) {
		s.logger.Warn().
			Str("query", query).
			Str("slug", foodSlug).
			Msg("Provider rate limited, degrading lookup")
		lookupsTotal.WithLabelValues(string(OutcomeUnavailable)).Inc()
		s.metrics.Record(ctx, query, foodSlug, false, elapsedMs(start))
		return Result{Outcome: OutcomeUnavailable}, nil
	}

	// A 4xx or malformed body did reach the provider and may be billable.
	if s.config.RecordBillableFailures && ninjas.Classify(err) == ninjas.ErrorClassClient {
		s.quota.RecordCall(ctx, quota.EndpointNutrition)
	}

	s.logger.Error().
		Err(err).
		Str("operation", "Lookup").
		Str("query", query).
		Str("slug", foodSlug).
		Msg("Provider fetch failed")
	lookupsTotal.WithLabelValues(labelError).Inc()

	return Result{}, fmt.Errorf("fetch nutrition for %q: %w", query, err)
}

// foodFromItem maps a provider item to a cache entry. Negative quantities
// are clamped to zero; nutrient values are stored per 100g as the provider
// reports them.
func foodFromItem(item ninjas.Item, foodSlug string) *storage.Food {
	serving := item.ServingSizeG
	if serving <= 0 {
		serving = storage.DefaultServingSizeG
	}
	return &storage.Food{
		Name:                item.Name,
		Slug:                foodSlug,
		ServingSizeG:        serving,
		Calories:            clampNonNegative(item.Calories),
		ProteinG:            clampNonNegative(item.ProteinG),
		CarbohydratesTotalG: clampNonNegative(item.CarbohydratesTotalG),
		FatTotalG:           clampNonNegative(item.FatTotalG),
		FatSaturatedG:       clampNonNegative(item.FatSaturatedG),
		FiberG:              clampNonNegative(item.FiberG),
		SugarG:              clampNonNegative(item.SugarG),
		SodiumMg:            clampNonNegative(item.SodiumMg),
		PotassiumMg:         clampNonNegative(item.PotassiumMg),
		CholesterolMg:       clampNonNegative(item.CholesterolMg),
		DataSource:          storage.SourceExternalAPI,
	}
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
