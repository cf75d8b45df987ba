package lrucache

import (
	"fmt"
	"math/rand"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var _ = Describe("concurrent access", func() {
	const (
		workers = 8
		ops     = 1000
	)

	// Sources are seeded outside the goroutines: a rand.Rand is not safe for
	// concurrent use and the shared testutil source must stay race free.
	workerRands := func() []*rand.Rand {
		rands := make([]*rand.Rand, workers)
		for w := range rands {
			rands[w] = rand.New(rand.NewSource(GinkgoRandomSeed() + int64(w)))
		}
		return rands
	}

	topologies(func(topology Topology) {
		It("keeps the capacity bound under a mixed load", func() {
			const capacity = 64
			c := newTestCache(capacity, topology, nil)
			rands := workerRands()
			gets := make([]int64, workers)
			puts := make([]int64, workers)
			var g errgroup.Group
			for w := 0; w < workers; w++ {
				r := rands[w]
				g.Go(func() error {
					for i := 0; i < ops; i++ {
						idx := r.Intn(4 * capacity)
						switch op := r.Intn(10); {
						case op < 7:
							c.Get(itemKey(idx))
							gets[w]++
						case op < 9:
							c.Put(itemKey(idx), itemValue(i))
							puts[w]++
						default:
							c.RemoveNewest()
						}
						if n := c.Len(); n > capacity {
							return errors.Errorf("len %v exceeds capacity %v", n, capacity)
						}
					}
					return nil
				})
			}
			Expect(g.Wait()).To(Succeed())

			By("counters account for every lookup")
			var totalGets, totalPuts int64
			for w := 0; w < workers; w++ {
				totalGets += gets[w]
				totalPuts += puts[w]
			}
			stats := c.Stats()
			Expect(stats.Hits + stats.Misses).To(Equal(totalGets))
			Expect(stats.Evictions).To(BeNumerically("<=", totalPuts))

			By("the survivors are consistent")
			keys := c.Keys()
			Expect(keys).To(HaveLen(c.Len()))
			for _, key := range keys {
				Expect(c.Contains(key)).To(BeTrue())
			}
		})

		It("serializes writers on a single key", func() {
			c := newTestCache(4, topology, nil)
			var g errgroup.Group
			for w := 0; w < workers; w++ {
				g.Go(func() error {
					for i := 0; i < ops; i++ {
						c.Put("hot", fmt.Sprintf("worker-%v-%v", w, i))
					}
					return nil
				})
			}
			Expect(g.Wait()).To(Succeed())
			Expect(c.Len()).To(Equal(1))
			v, ok := c.Get("hot")
			Expect(ok).To(BeTrue())
			By("the surviving value is some worker's final write")
			Expect(v).To(MatchRegexp(`^worker-\d+-%v$`, ops-1))
		})

		It("loses nothing while every shard stays under capacity", func() {
			// 64 distinct keys cannot overflow even a single 64 entry shard.
			const keysPerWorker = 8
			c := newTestCache(workers*keysPerWorker*4, topology, nil)
			var g errgroup.Group
			for w := 0; w < workers; w++ {
				g.Go(func() error {
					for i := 0; i < keysPerWorker; i++ {
						c.Put(fmt.Sprintf("worker-%v-key-%v", w, i), itemValue(i))
					}
					return nil
				})
			}
			Expect(g.Wait()).To(Succeed())
			Expect(c.Len()).To(Equal(workers * keysPerWorker))
			for w := 0; w < workers; w++ {
				for i := 0; i < keysPerWorker; i++ {
					Expect(c.Contains(fmt.Sprintf("worker-%v-key-%v", w, i))).To(BeTrue())
				}
			}
		})
	})
})
