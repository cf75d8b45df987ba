package simplelru

import (
	"github.com/pkg/errors"
)

// ErrInvalidCapacity is reported by constructors given a capacity that
// cannot hold a single entry.
var ErrInvalidCapacity = errors.New("invalid capacity")

// EvictCallback is called with every pair leaving the cache: capacity
// evictions, explicit removals and Clear. It runs while the cache mutates,
// so it must not call back into the cache.
type EvictCallback[K comparable, V any] func(key K, value V)

// LRU is a fixed capacity cache core with strict least recently used
// eviction. It does no locking; see the package doc.
//
// Invariants for all exported methods:
// * table maps exactly the keys of live list slots to their handles.
// * list holds entries in recency order: front is the most recently
//   used, back is the eviction victim.
// * len(table) never exceeds capacity.
type LRU[K comparable, V any] struct {
	capacity int
	table    map[K]handle
	list     list[K, V]
	onEvict  EvictCallback[K, V]
}

// NewLRU creates a core holding at most capacity entries. onEvict may be
// nil. The slot arena and table are sized up front, so Put at capacity
// allocates nothing.
func NewLRU[K comparable, V any](capacity int, onEvict EvictCallback[K, V]) (*LRU[K, V], error) {
	if capacity < 1 {
		return nil, errors.Wrapf(ErrInvalidCapacity, "capacity %v", capacity)
	}
	l := &LRU[K, V]{
		capacity: capacity,
		table:    make(map[K]handle, capacity),
		onEvict:  onEvict,
	}
	l.list.init(capacity)
	return l, nil
}

// Get returns the value stored under key and refreshes its recency.
func (l *LRU[K, V]) Get(key K) (value V, ok bool) {
	defer l.checkInvariants()
	h, ok := l.table[key]
	if !ok {
		return
	}
	l.list.moveToFront(h)
	return l.list.at(h).value, true
}

// Peek returns the value stored under key without touching recency.
func (l *LRU[K, V]) Peek(key K) (value V, ok bool) {
	h, ok := l.table[key]
	if !ok {
		return
	}
	return l.list.at(h).value, true
}

// Contains reports whether key is cached without touching recency.
func (l *LRU[K, V]) Contains(key K) bool {
	_, ok := l.table[key]
	return ok
}

// Put stores value under key as the most recently used entry. A present
// key is updated in place and never evicts. At capacity the back entry is
// evicted first and returned.
func (l *LRU[K, V]) Put(key K, value V) (evictedKey K, evictedValue V, evicted bool) {
	defer l.checkInvariants()
	if h, ok := l.table[key]; ok {
		l.list.at(h).value = value
		l.list.moveToFront(h)
		return
	}
	if len(l.table) == l.capacity {
		evictedKey, evictedValue = l.removeHandle(l.list.back())
		evicted = true
	}
	l.table[key] = l.list.alloc(key, value)
	return
}

// Remove deletes key and returns the value it held.
func (l *LRU[K, V]) Remove(key K) (value V, ok bool) {
	defer l.checkInvariants()
	h, ok := l.table[key]
	if !ok {
		return
	}
	_, value = l.removeHandle(h)
	return
}

// GetOldest returns the eviction victim without touching recency.
func (l *LRU[K, V]) GetOldest() (key K, value V, ok bool) {
	if l.list.empty() {
		return
	}
	s := l.list.at(l.list.back())
	return s.key, s.value, true
}

// RemoveOldest removes and returns the least recently used entry.
func (l *LRU[K, V]) RemoveOldest() (key K, value V, ok bool) {
	defer l.checkInvariants()
	if l.list.empty() {
		return
	}
	key, value = l.removeHandle(l.list.back())
	return key, value, true
}

// GetNewest returns the most recently used entry without touching recency.
func (l *LRU[K, V]) GetNewest() (key K, value V, ok bool) {
	if l.list.empty() {
		return
	}
	s := l.list.at(l.list.front())
	return s.key, s.value, true
}

// RemoveNewest removes and returns the most recently used entry.
func (l *LRU[K, V]) RemoveNewest() (key K, value V, ok bool) {
	defer l.checkInvariants()
	if l.list.empty() {
		return
	}
	key, value = l.removeHandle(l.list.front())
	return key, value, true
}

// Keys returns the cached keys from oldest to newest.
func (l *LRU[K, V]) Keys() []K {
	keys := make([]K, l.Len())
	i := len(keys)
	for h := l.list.front(); !l.list.end(h); h = l.list.at(h).next {
		i--
		keys[i] = l.list.at(h).key
	}
	return keys
}

// Clear removes all entries, firing the eviction callback for each from
// oldest to newest. Capacity is kept.
func (l *LRU[K, V]) Clear() {
	defer l.checkInvariants()
	for !l.list.empty() {
		l.removeHandle(l.list.back())
	}
}

// Len returns the number of cached entries.
func (l *LRU[K, V]) Len() int { return len(l.table) }

// Cap returns the construction capacity.
func (l *LRU[K, V]) Cap() int { return l.capacity }

// IsEmpty reports whether no entry is cached.
func (l *LRU[K, V]) IsEmpty() bool { return len(l.table) == 0 }

// removeHandle drops the slot's entry from both structures, then fires the
// eviction callback with the removed pair. Both structures are consistent
// when the callback runs.
func (l *LRU[K, V]) removeHandle(h handle) (key K, value V) {
	key, value = l.list.release(h)
	delete(l.table, key)
	if l.onEvict != nil {
		l.onEvict(key, value)
	}
	return
}
