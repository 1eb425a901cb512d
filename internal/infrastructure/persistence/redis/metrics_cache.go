package redis

import (
	"context"
	"errors"
	"time"

	"github.com/compita-hub/compita-metrics-hub/internal/domain/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// METRICS CACHE
// ══════════════════════════════════════════════════════════════════════════════

// Key prefixes for the metrics namespace.
const (
	prefixRecord  = "metrics:record:"
	prefixRunList = "metrics:run:"
)

// MetricsCache caches computed metrics records between runs. Keys carry the
// snapshot folder, so a new run never serves stale records.
type MetricsCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewMetricsCache creates a metrics cache with the given record TTL.
func NewMetricsCache(cache *Cache, ttl time.Duration) *MetricsCache {
	return &MetricsCache{cache: cache, ttl: ttl}
}

// RecordKey builds the per-student record key for one snapshot folder.
func RecordKey(folder, name string) string {
	return prefixRecord + folder + ":" + name
}

// RunKey builds the full-record-list key for one snapshot folder.
func RunKey(folder string) string {
	return prefixRunList + folder
}

// PutRun caches the full record list of one run and every individual record.
func (m *MetricsCache) PutRun(ctx context.Context, folder string, records []metrics.CompositeMetricsRecord) error {
	if err := m.cache.Set(ctx, RunKey(folder), records, m.ttl); err != nil {
		return err
	}
	for i := range records {
		if err := m.cache.Set(ctx, RecordKey(folder, records[i].Name), &records[i], m.ttl); err != nil {
			return err
		}
	}
	return nil
}

// GetRun returns the cached full record list, or metrics.ErrRecordNotCached.
func (m *MetricsCache) GetRun(ctx context.Context, folder string) ([]metrics.CompositeMetricsRecord, error) {
	var records []metrics.CompositeMetricsRecord
	if err := m.cache.Get(ctx, RunKey(folder), &records); err != nil {
		return nil, translateMiss(err)
	}
	return records, nil
}

// GetRecord returns one student's cached record, or metrics.ErrRecordNotCached.
func (m *MetricsCache) GetRecord(ctx context.Context, folder, name string) (*metrics.CompositeMetricsRecord, error) {
	var rec metrics.CompositeMetricsRecord
	if err := m.cache.Get(ctx, RecordKey(folder, name), &rec); err != nil {
		return nil, translateMiss(err)
	}
	return &rec, nil
}

// translateMiss maps the cache-level miss onto the domain sentinel callers
// check against.
func translateMiss(err error) error {
	if errors.Is(err, ErrCacheMiss) {
		return metrics.ErrRecordNotCached
	}
	return err
}

// Invalidate drops everything cached for one snapshot folder.
func (m *MetricsCache) Invalidate(ctx context.Context, folder string) error {
	if err := m.cache.Delete(ctx, RunKey(folder)); err != nil {
		return err
	}
	return m.cache.DeleteByPattern(ctx, prefixRecord+folder+":*")
}
