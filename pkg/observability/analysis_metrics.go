package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesTotal       = "debtmap.analysis.files.total"
	metricItemsTotal       = "debtmap.analysis.items.total"
	metricItemDuration     = "debtmap.analysis.item.duration.seconds"
	metricCacheHitsTotal   = "debtmap.analysis.cache.hits.total"
	metricCacheMissesTotal = "debtmap.analysis.cache.misses.total"

	attrCache = "cache"
)

// AnalysisMetrics holds OTel instruments for debtmap-specific analysis
// metrics, distinct from the generic RED instruments in [REDMetrics].
type AnalysisMetrics struct {
	filesTotal   metric.Int64Counter
	itemsTotal   metric.Int64Counter
	itemDuration metric.Float64Histogram
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
}

// AnalysisStats holds the statistics for a single parallel analysis run,
// decoupled from the orchestrator's internal types.
type AnalysisStats struct {
	FilesAnalyzed     int64
	ItemsScored       int
	ItemDurations     []time.Duration
	ContextCacheHits  int64
	ContextCacheMiss  int64
	LookupCacheHits   int64
	LookupCacheMisses int64
}

// NewAnalysisMetrics creates analysis metric instruments from the given meter.
func NewAnalysisMetrics(mt metric.Meter) (*AnalysisMetrics, error) {
	files, err := mt.Int64Counter(metricFilesTotal,
		metric.WithDescription("Total source files analyzed"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesTotal, err)
	}

	items, err := mt.Int64Counter(metricItemsTotal,
		metric.WithDescription("Total debt items scored"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricItemsTotal, err)
	}

	itemDur, err := mt.Float64Histogram(metricItemDuration,
		metric.WithDescription("Per-item scoring duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricItemDuration, err)
	}

	hits, err := mt.Int64Counter(metricCacheHitsTotal,
		metric.WithDescription("Cache hits by cache type"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheHitsTotal, err)
	}

	misses, err := mt.Int64Counter(metricCacheMissesTotal,
		metric.WithDescription("Cache misses by cache type"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheMissesTotal, err)
	}

	return &AnalysisMetrics{
		filesTotal:   files,
		itemsTotal:   items,
		itemDuration: itemDur,
		cacheHits:    hits,
		cacheMisses:  misses,
	}, nil
}

// RecordRun records analysis statistics for a completed parallel run.
// Safe to call on a nil receiver (no-op), so callers that skip
// instrumentation setup don't need to guard every call site.
func (am *AnalysisMetrics) RecordRun(ctx context.Context, stats AnalysisStats) {
	if am == nil {
		return
	}

	am.filesTotal.Add(ctx, stats.FilesAnalyzed)
	am.itemsTotal.Add(ctx, int64(stats.ItemsScored))

	for _, d := range stats.ItemDurations {
		am.itemDuration.Record(ctx, d.Seconds())
	}

	contextAttrs := metric.WithAttributes(attribute.String(attrCache, "context"))
	am.cacheHits.Add(ctx, stats.ContextCacheHits, contextAttrs)
	am.cacheMisses.Add(ctx, stats.ContextCacheMiss, contextAttrs)

	lookupAttrs := metric.WithAttributes(attribute.String(attrCache, "lookup"))
	am.cacheHits.Add(ctx, stats.LookupCacheHits, lookupAttrs)
	am.cacheMisses.Add(ctx, stats.LookupCacheMisses, lookupAttrs)
}
