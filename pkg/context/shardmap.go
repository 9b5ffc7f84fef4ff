package context

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// shardCount is the number of independent lock domains in the cache map.
// Grounded on the teacher's go.mod-indirect xxhash dependency, promoted
// here to direct use: each key hashes to one of shardCount buckets, each
// guarded by its own RWMutex, so concurrent workers touching different
// targets never contend on the same lock (spec §4.8, §5).
const shardCount = 64

type shard struct {
	mu   sync.RWMutex
	data map[string]Map
}

// shardedCache is a lock-free-at-the-map-level (fine-grained-locked at
// the shard level) concurrent cache keyed by a string built from
// (file, function name). It supports concurrent reads and writes with no
// global contention, per spec §4.8 / §5.
type shardedCache struct {
	shards [shardCount]*shard
}

func newShardedCache() *shardedCache {
	c := &shardedCache{}
	for i := range c.shards {
		c.shards[i] = &shard{data: make(map[string]Map)}
	}

	return c
}

func (c *shardedCache) shardFor(key string) *shard {
	h := xxhash.Sum64String(key)

	return c.shards[h%uint64(shardCount)]
}

func (c *shardedCache) get(key string) (Map, bool) {
	s := c.shardFor(key)

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]

	return v, ok
}

func (c *shardedCache) put(key string, value Map) {
	s := c.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
}

func cacheKey(t Target) string {
	return t.File + "\x00" + t.Function
}
