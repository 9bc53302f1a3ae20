package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for quota tracking.
var (
	quotaDailyCalls = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nutrition_quota_daily_calls",
		Help: "Number of provider API calls recorded today",
	})

	quotaMonthlyCalls = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nutrition_quota_monthly_calls",
		Help: "Number of provider API calls recorded this calendar month",
	})

	quotaBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nutrition_quota_blocks_total",
		Help: "Total lookups blocked because the monthly quota was exceeded",
	})
)

// Store is the persistence interface consumed by the ledger.
// Usage records are append-only; counts are computed at read time.
type Store interface {
	AppendUsageLog(ctx context.Context, endpoint string) error
	CountUsageSince(ctx context.Context, since time.Time) (int64, error)
}

// Ledger persists one record per provider call and answers admission checks
// against the configured ceilings.
type Ledger struct {
	store  Store
	limits Limits
	logger zerolog.Logger
	now    func() time.Time
}

// NewLedger creates a quota ledger over the given store.
func NewLedger(store Store, limits Limits, logger zerolog.Logger) *Ledger {
	if limits.Daily <= 0 || limits.Monthly <= 0 {
		limits = DefaultLimits()
	}
	return &Ledger{
		store:  store,
		limits: limits,
		logger: logger,
		now:    time.Now,
	}
}

// RecordCall appends one usage record for the given endpoint. It never
// surfaces an error: an unrecorded call is logged loudly instead of failing
// the lookup that triggered it. Crossing the monthly warning threshold logs
// a warning; crossing the ceiling logs an error.
func (l *Ledger) RecordCall(ctx context.Context, endpoint string) {
	if err := l.store.AppendUsageLog(ctx, endpoint); err != nil {
		l.logger.Error().
			Err(err).
			Str("endpoint", endpoint).
			Msg("Failed to record API usage - quota counts may undercount")
		return
	}

	status, err := l.Status(ctx)
	if err != nil {
		l.logger.Warn().Err(err).Msg("Failed to compute quota status after recording call")
		return
	}

	switch {
	case status.MonthlyExceeded:
		l.logger.Error().
			Int64("monthly_calls", status.MonthlyCalls).
			Int("monthly_limit", status.MonthlyLimit).
			Msg("Provider API monthly quota EXCEEDED - outbound calls will be blocked")
	case status.MonthlyWarning:
		l.logger.Warn().
			Int64("monthly_calls", status.MonthlyCalls).
			Str("monthly_usage", fmt.Sprintf("%.1f%%", status.MonthlyPercentage*100)).
			Msg("Provider API monthly quota above warning threshold")
	}
}

// Status computes the current usage snapshot. The daily window starts at
// local midnight, the monthly window at day 1 00:00 of the current month.
func (l *Ledger) Status(ctx context.Context) (Status, error) {
	now := l.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	daily, err := l.store.CountUsageSince(ctx, dayStart)
	if err != nil {
		return Status{}, fmt.Errorf("count daily usage: %w", err)
	}

	monthly, err := l.store.CountUsageSince(ctx, monthStart)
	if err != nil {
		return Status{}, fmt.Errorf("count monthly usage: %w", err)
	}

	quotaDailyCalls.Set(float64(daily))
	quotaMonthlyCalls.Set(float64(monthly))

	return newStatus(daily, monthly, l.limits), nil
}

// AllowCall reports whether an outbound provider call is admitted. Only the
// monthly ceiling is a hard gate; the daily count is informational, which
// allows short bursts within a day while still bounding monthly spend.
func (l *Ledger) AllowCall(ctx context.Context) (bool, error) {
	status, err := l.Status(ctx)
	if err != nil {
		return false, fmt.Errorf("quota status: %w", err)
	}

	if status.MonthlyExceeded {
		l.logger.Warn().
			Int64("monthly_calls", status.MonthlyCalls).
			Int("monthly_limit", status.MonthlyLimit).
			Msg("Blocking provider call - monthly quota exceeded")
		quotaBlocksTotal.Inc()
		return false, nil
	}

	return true, nil
}
