package lrucache

import (
	"fmt"
	"hash/maphash"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ChrisWhealy/lru-cache/internal/tag"
	"github.com/ChrisWhealy/lru-cache/simplelru"
)

// Cache is a fixed capacity, thread safe cache with strict least recently
// used eviction: one or more simplelru cores behind per shard mutexes.
// Every operation, reads included, takes its shard's exclusive lock, since
// a Get refreshes recency. Operations are linearizable per shard; methods
// that visit all shards take one lock at a time and are not atomic
// snapshots of the whole cache.
type Cache[K comparable, V any] struct {
	shards   []*shard[K, V]
	seed     maphash.Seed
	capacity int
	onEvict  simplelru.EvictCallback[K, V]
	log      *zap.Logger
}

// New creates a cache from conf. It returns an error wrapping
// ErrInvalidCapacity if the capacity or the shard count cannot give every
// shard room for at least one entry; no cache is constructed then.
//
// Shard i gets capacity/n entries, and the first capacity%n shards get one
// extra, so shard capacities always sum to conf.Capacity.
func New[K comparable, V any](conf Config[K, V]) (*Cache[K, V], error) {
	if conf.Capacity < 1 {
		return nil, errors.Wrapf(ErrInvalidCapacity, "capacity %v", conf.Capacity)
	}
	n := conf.Topology.shardCount()
	if n < 1 {
		return nil, errors.Wrapf(ErrInvalidCapacity, "shard count %v", n)
	}
	if n > conf.Capacity {
		return nil, errors.Wrapf(ErrInvalidCapacity,
			"capacity %v cannot be split over %v shards", conf.Capacity, n)
	}
	c := &Cache[K, V]{
		shards:   make([]*shard[K, V], n),
		seed:     maphash.MakeSeed(),
		capacity: conf.Capacity,
		onEvict:  conf.OnEvict,
		log:      conf.Logger,
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	base, extra := conf.Capacity/n, conf.Capacity%n
	for i := range c.shards {
		shardCap := base
		if i < extra {
			shardCap++
		}
		core, err := simplelru.NewLRU[K, V](shardCap, conf.OnEvict)
		if err != nil {
			return nil, err
		}
		c.shards[i] = &shard[K, V]{id: i, lru: core}
	}
	if tag.Debug {
		var sum int
		for _, s := range c.shards {
			sum += s.lru.Cap()
		}
		if sum != conf.Capacity {
			panic(fmt.Sprintf("shard capacities sum to %v, want %v", sum, conf.Capacity))
		}
	}
	c.log.Debug("cache created",
		zap.Int("capacity", conf.Capacity),
		zap.Stringer("topology", conf.Topology))
	return c, nil
}

// shardFor picks the shard owning key. With one shard the hash is skipped.
func (c *Cache[K, V]) shardFor(key K) *shard[K, V] {
	if len(c.shards) == 1 {
		return c.shards[0]
	}
	h := maphash.Comparable(c.seed, key)
	return c.shards[h%uint64(len(c.shards))]
}

// Get returns the value stored under key, refreshing its recency within
// the key's shard.
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	s := c.shardFor(key)
	s.guarded(func(l *simplelru.LRU[K, V]) {
		value, ok = l.Get(key)
		if ok {
			s.hits++
		} else {
			s.misses++
		}
	})
	return
}

// Peek returns the value stored under key without touching recency.
func (c *Cache[K, V]) Peek(key K) (value V, ok bool) {
	s := c.shardFor(key)
	s.guarded(func(l *simplelru.LRU[K, V]) {
		value, ok = l.Peek(key)
	})
	return
}

// Contains reports whether key is cached without touching recency.
func (c *Cache[K, V]) Contains(key K) (ok bool) {
	s := c.shardFor(key)
	s.guarded(func(l *simplelru.LRU[K, V]) {
		ok = l.Contains(key)
	})
	return
}

// Put stores value under key as the most recently used entry of its shard.
// The returned pair is the entry evicted to make room, if any. Updating a
// present key never evicts.
func (c *Cache[K, V]) Put(key K, value V) (evictedKey K, evictedValue V, evicted bool) {
	s := c.shardFor(key)
	s.guarded(func(l *simplelru.LRU[K, V]) {
		evictedKey, evictedValue, evicted = l.Put(key, value)
		if evicted {
			s.evictions++
		}
	})
	return
}

// Remove deletes key and returns the value it held.
func (c *Cache[K, V]) Remove(key K) (value V, ok bool) {
	s := c.shardFor(key)
	s.guarded(func(l *simplelru.LRU[K, V]) {
		value, ok = l.Remove(key)
	})
	return
}

// GetOldest returns the eviction victim of the first non empty shard. With
// SingleLock that is the globally least recently used entry; under Sharded
// recency is per shard, which makes this a diagnostic.
func (c *Cache[K, V]) GetOldest() (key K, value V, ok bool) {
	for _, s := range c.shards {
		s.guarded(func(l *simplelru.LRU[K, V]) {
			key, value, ok = l.GetOldest()
		})
		if ok {
			return
		}
	}
	return
}

// RemoveOldest removes and returns the eviction victim of the first non
// empty shard. See GetOldest for what oldest means under Sharded.
func (c *Cache[K, V]) RemoveOldest() (key K, value V, ok bool) {
	for _, s := range c.shards {
		s.guarded(func(l *simplelru.LRU[K, V]) {
			key, value, ok = l.RemoveOldest()
		})
		if ok {
			return
		}
	}
	return
}

// GetNewest returns the most recently used entry of the first non empty
// shard without touching recency. See GetOldest for the Sharded caveat.
func (c *Cache[K, V]) GetNewest() (key K, value V, ok bool) {
	for _, s := range c.shards {
		s.guarded(func(l *simplelru.LRU[K, V]) {
			key, value, ok = l.GetNewest()
		})
		if ok {
			return
		}
	}
	return
}

// RemoveNewest removes and returns the most recently used entry of the
// first non empty shard. See GetOldest for the Sharded caveat.
func (c *Cache[K, V]) RemoveNewest() (key K, value V, ok bool) {
	for _, s := range c.shards {
		s.guarded(func(l *simplelru.LRU[K, V]) {
			key, value, ok = l.RemoveNewest()
		})
		if ok {
			return
		}
	}
	return
}

// Len returns the number of cached entries, summed one shard lock at a
// time. It never exceeds Cap, even under concurrent writers.
func (c *Cache[K, V]) Len() (n int) {
	for _, s := range c.shards {
		s.guarded(func(l *simplelru.LRU[K, V]) {
			n += l.Len()
		})
	}
	return
}

// Cap returns the construction capacity.
func (c *Cache[K, V]) Cap() int { return c.capacity }

// IsEmpty reports whether no entry is cached.
func (c *Cache[K, V]) IsEmpty() bool { return c.Len() == 0 }

// Keys returns the cached keys, oldest to newest within each shard.
func (c *Cache[K, V]) Keys() []K {
	keys := make([]K, 0, c.capacity)
	for _, s := range c.shards {
		s.guarded(func(l *simplelru.LRU[K, V]) {
			keys = append(keys, l.Keys()...)
		})
	}
	return keys
}

// Clear empties every shard, firing the eviction callback per entry.
// Capacity and counters are kept.
func (c *Cache[K, V]) Clear() {
	for _, s := range c.shards {
		s.guarded(func(l *simplelru.LRU[K, V]) {
			l.Clear()
		})
	}
	c.log.Debug("cache cleared")
}

// RecoverPoisoned rebuilds every poisoned shard as an empty core with the
// same capacity and eviction callback, and returns how many shards were
// rebuilt. Entries of a poisoned shard are dropped without callbacks: the
// panic left no way to tell which of them are still consistent.
func (c *Cache[K, V]) RecoverPoisoned() (rebuilt int) {
	for _, s := range c.shards {
		s.mu.Lock()
		if s.poisoned {
			core, err := simplelru.NewLRU[K, V](s.lru.Cap(), c.onEvict)
			if err != nil {
				panic(err) // capacity was validated in New
			}
			s.lru = core
			s.poisoned = false
			rebuilt++
			c.log.Warn("poisoned shard rebuilt empty", zap.Int("shard", s.id))
		}
		s.mu.Unlock()
	}
	return
}
