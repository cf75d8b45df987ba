package simplelru

import (
	"github.com/ChrisWhealy/lru-cache/internal/tag"
)

// handle addresses a slot in the list arena. A handle stays valid while its
// entry is live; handles of released slots are reused by later allocs.
type handle int32

const noHandle handle = -1

// Sentinel slots. Live slots are linked between them.
// noHandle <- fakeFront <-> slot_0 <-> ... <-> slot_(n-1) <-> fakeBack -> noHandle
// Such structure prevents empty checks in code.
//
// fakeFront.next is the most recently used entry.
// fakeBack.prev is the least recently used entry, the eviction victim.
const (
	fakeFront handle = 0
	fakeBack  handle = 1
	sentinels        = 2
)

// slot is one arena cell: the entry payload plus recency links.
// A released slot is threaded into the free chain through next.
type slot[K comparable, V any] struct {
	key   K
	value V
	prev  handle
	next  handle
}

// Pre and post conditions (Invariants) for alloc, release and moveToFront:
// * live slots are exactly the slots linked between fakeFront and fakeBack.
// * {fakeFront, all live slots, fakeBack} are correct doubly linked list.
// * every non sentinel slot is either live or on the free chain,
//   so live count + free chain length + sentinels == len(slots).
// * released slots hold zero payload, so dropped entries do not pin
//   heap objects.
type list[K comparable, V any] struct {
	slots []slot[K, V]
	free  handle
	live  int
}

// init allocates an arena of capacity entry slots plus the sentinels and
// chains all entry slots as free. It is the only allocation the list does.
func (l *list[K, V]) init(capacity int) {
	l.slots = make([]slot[K, V], capacity+sentinels)
	l.at(fakeFront).prev = noHandle
	l.at(fakeBack).next = noHandle
	l.link(fakeFront, fakeBack)
	l.free = noHandle
	l.live = 0
	for h := handle(len(l.slots) - 1); h >= sentinels; h-- {
		l.at(h).next = l.free
		if tag.Debug {
			l.at(h).prev = noHandle
		}
		l.free = h
	}
}

func (l *list[K, V]) at(h handle) *slot[K, V] { return &l.slots[h] }

func (l *list[K, V]) link(a, b handle) { l.at(a).next, l.at(b).prev = b, a }

// alloc takes a slot off the free chain, fills it and links it in at the
// front. A caller that releases the back slot before allocating at capacity
// never finds the chain empty.
func (l *list[K, V]) alloc(key K, value V) handle {
	h := l.free
	if h == noHandle {
		panic("slot arena exhausted")
	}
	s := l.at(h)
	l.free = s.next
	s.key, s.value = key, value
	l.live++
	l.attachFront(h)
	return h
}

// release detaches a live slot, zeroes its payload and returns the slot to
// the free chain. The detached pair is returned to the caller.
func (l *list[K, V]) release(h handle) (key K, value V) {
	s := l.at(h)
	key, value = s.key, s.value
	l.detach(h)
	*s = slot[K, V]{}
	s.next = l.free
	if tag.Debug {
		s.prev = noHandle
	}
	l.free = h
	l.live--
	return
}

// moveToFront refreshes recency of a live slot.
func (l *list[K, V]) moveToFront(h handle) {
	if l.front() == h {
		return
	}
	l.detach(h)
	l.attachFront(h)
}

func (l *list[K, V]) attachFront(h handle) {
	l.link(h, l.front())
	l.link(fakeFront, h)
}

func (l *list[K, V]) detach(h handle) {
	l.assertNotSentinel(h)
	s := l.at(h)
	l.link(s.prev, s.next)
	if tag.Debug {
		s.prev = noHandle
		s.next = noHandle
	}
}

func (l *list[K, V]) front() handle     { return l.at(fakeFront).next }
func (l *list[K, V]) back() handle      { return l.at(fakeBack).prev }
func (l *list[K, V]) end(h handle) bool { return h == fakeBack }
func (l *list[K, V]) empty() bool       { return l.live == 0 }
func (l *list[K, V]) len() int          { return l.live }

func (l *list[K, V]) assertNotSentinel(h handle) {
	if h == fakeFront || h == fakeBack {
		panic("sentinel slot used as entry")
	}
}
