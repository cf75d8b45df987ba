package lrucache

import (
	"fmt"

	"github.com/ChrisWhealy/lru-cache/simplelru"
)

// ErrInvalidCapacity is reported by New for configurations that cannot
// hold a single entry per shard: capacity below one, shard count below
// one, or more shards than capacity.
var ErrInvalidCapacity = simplelru.ErrInvalidCapacity

// PoisonedError is the panic value of every operation touching a shard
// whose earlier critical section terminated by panic. The cache never
// recovers such a shard on its own; see Cache.RecoverPoisoned.
type PoisonedError struct {
	Shard int
}

func (e *PoisonedError) Error() string {
	return fmt.Sprintf("cache shard %v poisoned by panic in critical section", e.Shard)
}
