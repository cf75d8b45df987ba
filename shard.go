package lrucache

import (
	"sync"

	"github.com/ChrisWhealy/lru-cache/simplelru"
)

// shard is one independently locked cache core with its own counters.
//
// poisoned implements lock poisoning: guarded sets it before running the
// critical section and clears it only on normal return. A section that
// panics (realistically an eviction callback, or an invariant check in
// debug builds) unwinds with the flag still set. The mutex itself is
// released by defer, so other goroutines do not block forever; they fail
// fast with *PoisonedError instead of reading half mutated state.
type shard[K comparable, V any] struct {
	id int

	mu       sync.Mutex
	poisoned bool
	lru      *simplelru.LRU[K, V]

	// Counters are mutated under mu only.
	hits      int64
	misses    int64
	evictions int64
}

// guarded runs f with the shard locked. It panics with *PoisonedError if
// an earlier critical section on this shard panicked; a panic out of f
// itself propagates and poisons the shard.
func (s *shard[K, V]) guarded(f func(l *simplelru.LRU[K, V])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poisoned {
		panic(&PoisonedError{Shard: s.id})
	}
	s.poisoned = true
	f(s.lru)
	s.poisoned = false
}
