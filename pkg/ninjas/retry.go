package ninjas

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for retry operations.
var (
	providerRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nutrition_provider_retries_total",
		Help: "Total number of provider retry attempts",
	})

	providerRetryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nutrition_provider_retry_exhausted_total",
		Help: "Total number of times provider retry attempts were exhausted",
	})
)

// FetchWithRetry wraps Fetch with bounded exponential backoff.
//
// Up to MaxAttempts calls are made with fixed delays between them
// (1s, 2s, 4s with the default configuration). Only server errors are
// retried; every other classification propagates on first occurrence.
// The backoff sleeps via the context so a cancelled lookup stops waiting
// immediately and unrelated concurrent lookups are never blocked.
func (c *Client) FetchWithRetry(ctx context.Context, query string) ([]Item, error) {
	var lastErr error
	delay := c.config.InitialDelay

	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		items, err := c.Fetch(ctx, query)
		if err == nil {
			if attempt > 1 {
				c.logger.Info().
					Str("query", query).
					Int("attempt", attempt).
					Msg("Provider request succeeded after retry")
			}
			return items, nil
		}

		lastErr = err

		if !shouldRetry(Classify(err)) {
			return nil, err
		}

		if attempt >= c.config.MaxAttempts {
			break
		}

		providerRetriesTotal.Inc()
		c.logger.Info().
			Str("query", query).
			Int("attempt", attempt).
			Int("max_attempts", c.config.MaxAttempts).
			Dur("delay", delay).
			Msg("Retrying provider request after backoff")

		select {
		case <-ctx.Done():
			c.logger.Warn().
				Str("query", query).
				Int("attempt", attempt).
				Msg("Context cancelled during retry backoff")
			return nil, fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * c.config.Multiplier)
	}

	providerRetryExhaustedTotal.Inc()
	c.logger.Error().
		Str("operation", "FetchWithRetry").
		Str("query", query).
		Int("attempts", c.config.MaxAttempts).
		Msg("Provider retry attempts exhausted")

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, c.config.MaxAttempts, lastErr)
}
