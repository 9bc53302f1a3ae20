// Package warm pre-populates the food cache by running lookups for a list
// of names through a bounded worker pool.
package warm

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nblkmal/nutrition-hub/pkg/lookup"
)

// Looker is the lookup surface consumed by the warmer.
type Looker interface {
	Lookup(ctx context.Context, rawQuery string) (lookup.Result, error)
}

// Config holds warmer configuration.
type Config struct {
	// MaxConcurrency is the maximum number of parallel lookups. Each miss
	// costs one quota call, so keep this small.
	MaxConcurrency int

	// Timeout per lookup.
	Timeout time.Duration
}

// DefaultConfig returns a conservative configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        30 * time.Second,
	}
}

// Summary counts outcomes of a warm run.
type Summary struct {
	Found       int
	NotFound    int
	Unavailable int
	Failed      int
}

// Warmer runs lookups for a name list with bounded concurrency.
type Warmer struct {
	svc    Looker
	config Config
}

// NewWarmer creates a cache warmer.
func NewWarmer(svc Looker, config Config) *Warmer {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Warmer{
		svc:    svc,
		config: config,
	}
}

// Run warms the cache for every name. The first Unavailable outcome cancels
// the remaining work: once quota is exhausted, every further miss would be
// degraded too.
func (w *Warmer) Run(parent context.Context, names []string) (Summary, error) {
	start := time.Now()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	queue := make(chan string, len(names))
	for _, name := range names {
		queue <- name
	}
	close(queue)

	var (
		mu      sync.Mutex
		summary Summary
		wg      sync.WaitGroup
	)

	for i := 0; i < w.config.MaxConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range queue {
				if ctx.Err() != nil {
					return
				}

				lookupCtx, lookupCancel := context.WithTimeout(ctx, w.config.Timeout)
				result, err := w.svc.Lookup(lookupCtx, name)
				lookupCancel()

				mu.Lock()
				switch {
				case err != nil:
					summary.Failed++
					log.Warn().Err(err).Str("name", name).Msg("Warm lookup failed")
				case result.Outcome == lookup.OutcomeFound:
					summary.Found++
				case result.Outcome == lookup.OutcomeNotFound:
					summary.NotFound++
				case result.Outcome == lookup.OutcomeUnavailable:
					summary.Unavailable++
					log.Warn().Str("name", name).Msg("Quota exhausted, stopping warm run")
					cancel()
				}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	log.Info().
		Int("found", summary.Found).
		Int("not_found", summary.NotFound).
		Int("unavailable", summary.Unavailable).
		Int("failed", summary.Failed).
		Dur("duration", time.Since(start)).
		Msg("Cache warm run complete")

	// Stopping early on quota exhaustion is a designed outcome, not an
	// error; only a cancelled parent context surfaces.
	return summary, parent.Err()
}
