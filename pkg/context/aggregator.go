package context

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Aggregator owns a set of Providers and a lock-free sharded cache. Its
// Analyze method takes a value receiver's contract — &self, never &mut
// self — because the cache writes go through the sharded map rather than
// any aggregator-level lock (spec §4.8, §9 "Interior-mutable shared
// cache").
//
// Aggregator is shareable via AggregatorHandle: cloning the handle never
// clones providers or the cache, which is mandatory for parallel workers
// (spec §4.13, §5).
type Aggregator struct {
	providers []Provider
	cache     *shardedCache
	logger    *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates an Aggregator over the given providers.
func New(logger *slog.Logger, providers ...Provider) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Aggregator{providers: providers, cache: newShardedCache(), logger: logger}
}

// AggregatorHandle is a reference-counted handle to a shared Aggregator.
// Cloning a handle shares the same Aggregator instance (and therefore the
// same cache and providers); no provider or cache state is ever
// deep-copied. Workers receive a handle, never a raw *Aggregator copy.
type AggregatorHandle struct {
	agg *Aggregator
}

// NewHandle wraps agg in a shareable handle.
func NewHandle(agg *Aggregator) AggregatorHandle { return AggregatorHandle{agg: agg} }

// Aggregator returns the underlying shared Aggregator.
func (h AggregatorHandle) Aggregator() *Aggregator { return h.agg }

// Clone returns a handle to the same underlying Aggregator. It exists to
// make the "this is a cheap reference-count bump, not a deep copy"
// contract explicit at call sites.
func (h AggregatorHandle) Clone() AggregatorHandle { return h }

// Analyze gathers a Map for target, consulting the cache first. On a
// cache miss it calls every provider's Gather, skipping (and
// debug-logging) any that error, then stores and returns the combined Map.
// This method has a &self-shaped signature: it never requires external
// synchronization from the caller.
func (a *Aggregator) Analyze(ctx context.Context, target Target) Map {
	key := cacheKey(target)

	if cached, ok := a.cache.get(key); ok {
		a.hits.Add(1)

		return cached.Clone()
	}

	a.misses.Add(1)

	result := make(Map, len(a.providers))

	for _, p := range a.providers {
		details, err := p.Gather(ctx, target)
		if err != nil {
			a.logger.DebugContext(ctx, "context provider failed",
				slog.String("provider", p.Name()),
				slog.String("file", target.File),
				slog.String("function", target.Function),
				slog.Any("error", err),
			)

			continue
		}

		result[p.Name()] = details
	}

	a.cache.put(key, result)

	return result.Clone()
}

// CacheStats reports cumulative cache hit/miss counters.
type CacheStats struct {
	Hits   int64
	Misses int64
}

// Stats returns a snapshot of the aggregator's cache counters.
func (a *Aggregator) Stats() CacheStats {
	return CacheStats{Hits: a.hits.Load(), Misses: a.misses.Load()}
}
