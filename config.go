package lrucache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ChrisWhealy/lru-cache/simplelru"
)

type Config[K comparable, V any] struct {
	// Capacity is the total number of entries the cache holds, at least 1.
	// It is split over shards and never changes after construction.
	Capacity int

	// Topology fixes the lock layout. The zero value is SingleLock.
	Topology Topology

	// OnEvict, if non nil, is called under the shard lock with every pair
	// leaving the cache. A panicking callback poisons its shard.
	OnEvict simplelru.EvictCallback[K, V]

	// Logger is used off the hot path only: construction, Clear and shard
	// recovery. Nil disables logging.
	Logger *zap.Logger
}

// Topology selects the lock layout of a cache. It is a choice between
// SingleLock and Sharded, fixed at construction.
type Topology struct {
	sharded bool
	shards  int
}

// SingleLock puts all keys behind one mutex: one core, one global recency
// order. It is the zero value of Topology.
func SingleLock() Topology { return Topology{} }

// Sharded splits capacity over n independently locked cores. Keys are
// spread by hash and recency order holds per shard only, in exchange for
// lower lock contention. Requires 1 <= n <= capacity, so every shard can
// hold at least one entry.
func Sharded(n int) Topology { return Topology{sharded: true, shards: n} }

func (t Topology) shardCount() int {
	if !t.sharded {
		return 1
	}
	return t.shards
}

func (t Topology) String() string {
	if !t.sharded {
		return "single-lock"
	}
	return fmt.Sprintf("sharded(%v)", t.shards)
}
