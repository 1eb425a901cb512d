package redis

import (
	"context"
	"errors"

	"github.com/compita-hub/compita-metrics-hub/internal/domain/metrics"
	"github.com/compita-hub/compita-metrics-hub/pkg/circuitbreaker"
	"github.com/compita-hub/compita-metrics-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GUARDED CACHE
// ══════════════════════════════════════════════════════════════════════════════

// GuardedCache wraps a RecordCache with a circuit breaker. While Redis is
// down the breaker fails fast and readers go straight to the archive instead
// of waiting out timeouts on every request.
type GuardedCache struct {
	inner   metrics.RecordCache
	breaker *circuitbreaker.CircuitBreaker
}

// NewGuardedCache creates a GuardedCache around inner.
func NewGuardedCache(inner metrics.RecordCache, log *logger.Logger) *GuardedCache {
	if log == nil {
		log = logger.Nop()
	}

	breaker := circuitbreaker.CacheBreaker(func(name string, from, to circuitbreaker.State) {
		log.Warn("cache breaker state changed",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	})

	return &GuardedCache{inner: inner, breaker: breaker}
}

// PutRun stores the run's records unless the breaker is open.
func (g *GuardedCache) PutRun(ctx context.Context, folder string, records []metrics.CompositeMetricsRecord) error {
	return g.execute(ctx, func(ctx context.Context) error {
		return g.inner.PutRun(ctx, folder, records)
	})
}

// GetRun returns the cached record list. An open breaker reads as a miss.
func (g *GuardedCache) GetRun(ctx context.Context, folder string) ([]metrics.CompositeMetricsRecord, error) {
	var records []metrics.CompositeMetricsRecord
	err := g.execute(ctx, func(ctx context.Context) error {
		var innerErr error
		records, innerErr = g.inner.GetRun(ctx, folder)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetRecord returns one cached record. An open breaker reads as a miss.
func (g *GuardedCache) GetRecord(ctx context.Context, folder, name string) (*metrics.CompositeMetricsRecord, error) {
	var rec *metrics.CompositeMetricsRecord
	err := g.execute(ctx, func(ctx context.Context) error {
		var innerErr error
		rec, innerErr = g.inner.GetRecord(ctx, folder, name)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Invalidate drops the folder's cached records unless the breaker is open.
func (g *GuardedCache) Invalidate(ctx context.Context, folder string) error {
	return g.execute(ctx, func(ctx context.Context) error {
		return g.inner.Invalidate(ctx, folder)
	})
}

// execute runs fn through the breaker. Misses do not count as failures, and
// a rejected call surfaces as a plain miss so callers fall back to the
// archive.
func (g *GuardedCache) execute(ctx context.Context, fn func(context.Context) error) error {
	missed := false
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			if errors.Is(err, metrics.ErrRecordNotCached) {
				missed = true
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
			return metrics.ErrRecordNotCached
		}
		return err
	}
	if missed {
		return metrics.ErrRecordNotCached
	}
	return nil
}
