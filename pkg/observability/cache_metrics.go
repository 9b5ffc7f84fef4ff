package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCacheHitsGauge   = "debtmap.cache.hits"
	metricCacheMissesGauge = "debtmap.cache.misses"
)

// CacheStatsProvider reports cumulative hit/miss counters for a cache, e.g.
// [pkg/context.Aggregator.Stats] or the call-graph identity lookup cache.
type CacheStatsProvider interface {
	CacheHits() int64
	CacheMisses() int64
}

// RegisterCacheMetrics registers observable gauges that poll contextCache
// and lookupCache on each collection. Either provider may be nil, in which
// case its series is simply omitted.
func RegisterCacheMetrics(mt metric.Meter, contextCache, lookupCache CacheStatsProvider) error {
	hits, err := mt.Int64ObservableGauge(metricCacheHitsGauge,
		metric.WithDescription("Cumulative cache hits by cache type"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheHitsGauge, err)
	}

	misses, err := mt.Int64ObservableGauge(metricCacheMissesGauge,
		metric.WithDescription("Cumulative cache misses by cache type"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheMissesGauge, err)
	}

	_, err = mt.RegisterCallback(func(_ context.Context, obs metric.Observer) error {
		if contextCache != nil {
			attrs := metric.WithAttributes(attribute.String(attrCache, "context"))
			obs.ObserveInt64(hits, contextCache.CacheHits(), attrs)
			obs.ObserveInt64(misses, contextCache.CacheMisses(), attrs)
		}

		if lookupCache != nil {
			attrs := metric.WithAttributes(attribute.String(attrCache, "lookup"))
			obs.ObserveInt64(hits, lookupCache.CacheHits(), attrs)
			obs.ObserveInt64(misses, lookupCache.CacheMisses(), attrs)
		}

		return nil
	}, hits, misses)
	if err != nil {
		return fmt.Errorf("register cache metrics callback: %w", err)
	}

	return nil
}
