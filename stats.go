package lrucache

import (
	"github.com/ChrisWhealy/lru-cache/simplelru"
)

// Stats is a point in time snapshot of cache counters. Under Sharded it
// aggregates shards one lock at a time, so concurrent writers may be
// partially reflected.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// HitRatio returns Hits over all lookups, or 0 before the first lookup.
func (s Stats) HitRatio() float64 {
	lookups := s.Hits + s.Misses
	if lookups == 0 {
		return 0
	}
	return float64(s.Hits) / float64(lookups)
}

// Stats returns counters aggregated over all shards. Hits and misses
// count Get calls; evictions count entries displaced by Put.
func (c *Cache[K, V]) Stats() Stats {
	var total Stats
	for _, s := range c.shards {
		s.guarded(func(*simplelru.LRU[K, V]) {
			total.Hits += s.hits
			total.Misses += s.misses
			total.Evictions += s.evictions
		})
	}
	return total
}

// ShardStats returns per shard counters, for shard distribution and
// contention diagnostics.
func (c *Cache[K, V]) ShardStats() []Stats {
	stats := make([]Stats, len(c.shards))
	for i, s := range c.shards {
		s.guarded(func(*simplelru.LRU[K, V]) {
			stats[i] = Stats{Hits: s.hits, Misses: s.misses, Evictions: s.evictions}
		})
	}
	return stats
}
