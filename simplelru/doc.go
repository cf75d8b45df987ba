// Package simplelru provides the unsynchronized core of a fixed capacity
// cache with strict least recently used eviction.
//
// Entries live in a slot arena allocated once at construction. Recency is
// an intrusive doubly linked list over the arena, addressed by int32
// handles instead of pointers, with sentinel slots at both ends. Every
// operation is O(1) and allocates nothing after construction.
//
// The core is not safe for concurrent use. Callers that share an LRU
// across goroutines must serialize access, the way the root lrucache
// package does with its shard locks.
package simplelru
