// Package stats records per-lookup search metrics and aggregates them into
// cache performance statistics.
package stats

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Metric is a single lookup record, appended per search attempt.
type Metric struct {
	// Query is the raw (trimmed) search query.
	Query string

	// Slug is the normalized cache key derived from Query.
	Slug string

	// CacheHit indicates whether the lookup was served from the local store.
	CacheHit bool

	// ResponseTimeMs is the measured lookup latency in milliseconds.
	ResponseTimeMs int64
}

// Aggregate is the windowed rollup computed by the store.
type Aggregate struct {
	Hits         int64
	Misses       int64
	AvgLatencyMs float64
}

// Stats is the caller-facing cache performance summary.
type Stats struct {
	TotalLookups        int64   `json:"totalLookups"`
	CacheHits           int64   `json:"cacheHits"`
	CacheMisses         int64   `json:"cacheMisses"`
	CacheHitRate        float64 `json:"cacheHitRate"`
	AverageResponseTime float64 `json:"averageResponseTimeMs"`
}

// Store is the persistence interface consumed by the recorder.
type Store interface {
	AppendSearchMetric(ctx context.Context, m Metric) error
	SearchStatsSince(ctx context.Context, since time.Time) (Aggregate, error)
}

// Recorder appends search metrics and computes today's cache statistics.
type Recorder struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewRecorder creates a search metrics recorder.
func NewRecorder(store Store, logger zerolog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Record appends one lookup metric. It never surfaces an error to the
// caller: a metrics write failure must not fail the lookup itself.
func (r *Recorder) Record(ctx context.Context, query, foodSlug string, cacheHit bool, responseTimeMs int64) {
	m := Metric{
		Query:          query,
		Slug:           foodSlug,
		CacheHit:       cacheHit,
		ResponseTimeMs: responseTimeMs,
	}

	if err := r.store.AppendSearchMetric(ctx, m); err != nil {
		r.logger.Error().
			Err(err).
			Str("query", query).
			Str("slug", foodSlug).
			Bool("cache_hit", cacheHit).
			Msg("Failed to append search metric")
	}
}

// Today returns aggregated cache performance for the current calendar day.
// Rates and averages are 0 when no lookups were recorded.
func (r *Recorder) Today(ctx context.Context) (Stats, error) {
	now := r.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	agg, err := r.store.SearchStatsSince(ctx, midnight)
	if err != nil {
		return Stats{}, err
	}

	total := agg.Hits + agg.Misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(agg.Hits) / float64(total) * 100
	}

	return Stats{
		TotalLookups:        total,
		CacheHits:           agg.Hits,
		CacheMisses:         agg.Misses,
		CacheHitRate:        hitRate,
		AverageResponseTime: agg.AvgLatencyMs,
	}, nil
}
