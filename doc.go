// Package lrucache provides a fixed capacity, thread safe, generic cache
// with strict least recently used eviction.
//
// A Cache is one or more simplelru cores behind per shard mutexes. The
// topology is fixed at construction: SingleLock puts every key behind one
// mutex and keeps one global recency order; Sharded(n) splits capacity
// over n independently locked cores, trading global LRU order and atomic
// whole cache snapshots for lower lock contention. Reads take the shard
// lock too, because a Get refreshes recency.
//
// A panic inside a critical section, which realistically means a
// panicking eviction callback, poisons the shard: the lock is released,
// but every later operation on that shard panics with *PoisonedError. A
// shard whose state may be half mutated refuses further use rather than
// serving corrupt entries. RecoverPoisoned rebuilds poisoned shards
// empty; there is no implicit recovery.
//
// Get, Put and Remove never log and never allocate beyond what the key
// table itself requires; the slot arena of every shard is allocated once
// in New. Values are returned as stored: with a pointer valued V the
// caller and the cache share the referent.
package lrucache
