// Command lru-loadgen drives a skewed, read mostly load against an in
// process cache and reports per operation latencies and the hit ratio.
// It is the quickest way to compare the SingleLock and Sharded topologies
// on real hardware.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	lrucache "github.com/ChrisWhealy/lru-cache"
	"github.com/ChrisWhealy/lru-cache/internal/tag"
)

type Config struct {
	Capacity    int
	Shards      int
	Clients     int
	Requests    int
	KeySpace    int
	PutRatio    float64
	RemoveRatio float64
	Seed        int64
	Report      time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Capacity:    1 << 16,
		Shards:      1,
		Clients:     8,
		Requests:    1 << 20,
		KeySpace:    1 << 18,
		PutRatio:    0.1,
		RemoveRatio: 0.02,
		Report:      2 * time.Second,
	}
}

const usage = `lru-loadgen drives a skewed, read mostly load against an in process
cache and reports per operation latencies and the hit ratio.
Options:
`

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s", usage)
		flag.PrintDefaults()
	}
}

func main() {
	conf, level := parseFlags()
	logger := newLogger(level)
	defer logger.Sync()

	if err := conf.validate(); err != nil {
		logger.Fatal("invalid flags", zap.Error(err))
	}
	topology := lrucache.SingleLock()
	if conf.Shards > 1 {
		topology = lrucache.Sharded(conf.Shards)
	}
	cache, err := lrucache.New(lrucache.Config[string, string]{
		Capacity: conf.Capacity,
		Topology: topology,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("cache construction failed", zap.Error(err))
	}
	if tag.Debug {
		logger.Warn("debug build, invariant checks add large overhead")
	}
	run(logger, conf, cache)
}

func parseFlags() (*Config, zapcore.Level) {
	conf := DefaultConfig()
	flag.IntVar(&conf.Capacity, "capacity", conf.Capacity, "total cache capacity in entries")
	flag.IntVar(&conf.Shards, "shards", conf.Shards, "shard count, 1 means a single lock")
	flag.IntVar(&conf.Clients, "clients", conf.Clients, "concurrent client goroutines")
	flag.IntVar(&conf.Requests, "requests", conf.Requests, "total requests over all clients")
	flag.IntVar(&conf.KeySpace, "key-space", conf.KeySpace, "distinct keys, drawn half normally around zero")
	flag.Float64Var(&conf.PutRatio, "put-ratio", conf.PutRatio, "fraction of requests that put")
	flag.Float64Var(&conf.RemoveRatio, "remove-ratio", conf.RemoveRatio, "fraction of requests that remove the newest entry")
	flag.Int64Var(&conf.Seed, "seed", 0, "random seed, 0 takes the clock")
	flag.DurationVar(&conf.Report, "report", conf.Report, "interval between metric reports")
	level := zap.LevelFlag("log-level", zap.InfoLevel, "log level: debug, info, warn, error")
	flag.Parse()
	if conf.Seed == 0 {
		conf.Seed = time.Now().UnixNano()
	}
	return conf, *level
}

// Capacity and shard count are left to the cache constructor to validate.
func (c *Config) validate() error {
	if c.Clients < 1 {
		return errors.Errorf("clients %v, want at least 1", c.Clients)
	}
	if c.Requests < 1 {
		return errors.Errorf("requests %v, want at least 1", c.Requests)
	}
	if c.KeySpace < 1 {
		return errors.Errorf("key space %v, want at least 1", c.KeySpace)
	}
	if c.PutRatio < 0 || c.RemoveRatio < 0 || c.PutRatio+c.RemoveRatio > 1 {
		return errors.Errorf("put ratio %v and remove ratio %v must be non negative and sum to at most 1",
			c.PutRatio, c.RemoveRatio)
	}
	return nil
}

func newLogger(level zapcore.Level) *zap.Logger {
	conf := zap.NewDevelopmentConfig()
	conf.Level = zap.NewAtomicLevelAt(level)
	logger, err := conf.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

func run(logger *zap.Logger, conf *Config, cache *lrucache.Cache[string, string]) {
	registry := metrics.NewRegistry()
	getTimer := metrics.NewRegisteredTimer("get", registry)
	putTimer := metrics.NewRegisteredTimer("put", registry)
	removeTimer := metrics.NewRegisteredTimer("remove-newest", registry)
	go metrics.Log(registry, conf.Report, zap.NewStdLog(logger.Named("metrics")))

	logger.Info("warmup")
	warm := conf.Capacity
	if warm > conf.KeySpace {
		warm = conf.KeySpace
	}
	// Key 0 is put last, so the most probable indexes end up warmest.
	for i := warm - 1; i >= 0; i-- {
		cache.Put(itemKey(i), "payload")
	}

	logger.Info("load starting",
		zap.Int("capacity", conf.Capacity),
		zap.Int("shards", conf.Shards),
		zap.Int("clients", conf.Clients),
		zap.Int("requests", conf.Requests),
		zap.Int64("seed", conf.Seed))

	indexStddev := float64(conf.KeySpace) / 4
	var requests int64
	next := func() bool { return atomic.AddInt64(&requests, 1) <= int64(conf.Requests) }

	start := time.Now()
	var g errgroup.Group
	for i := 0; i < conf.Clients; i++ {
		r := rand.New(rand.NewSource(conf.Seed + int64(i)))
		g.Go(func() error {
			for op := 0; next(); op++ {
				key := itemKey(index(r, conf.KeySpace, indexStddev))
				p := r.Float64()
				switch {
				case p < conf.PutRatio:
					putTimer.Time(func() { cache.Put(key, "payload") })
				case p < conf.PutRatio+conf.RemoveRatio:
					removeTimer.Time(func() { cache.RemoveNewest() })
				default:
					getTimer.Time(func() { cache.Get(key) })
				}
				if op&1023 == 0 {
					if n := cache.Len(); n > conf.Capacity {
						return errors.Errorf("len %v exceeds capacity %v", n, conf.Capacity)
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Fatal("consistency check failed", zap.Error(err))
	}
	elapsed := time.Since(start)

	metrics.WriteOnce(registry, os.Stdout)
	stats := cache.Stats()
	logger.Info("load finished",
		zap.Duration("elapsed", elapsed),
		zap.Int64("rps", int64(float64(conf.Requests)/elapsed.Seconds())),
		zap.Int("len", cache.Len()),
		zap.Int64("hits", stats.Hits),
		zap.Int64("misses", stats.Misses),
		zap.Int64("evictions", stats.Evictions),
		zap.Float64("hit_ratio", stats.HitRatio()))
}

// index draws a half normal key index, redrawing past the key space end.
func index(r *rand.Rand, keySpace int, stddev float64) int {
	for {
		i := int(math.Abs(r.NormFloat64() * stddev))
		if i < keySpace {
			return i
		}
	}
}

func itemKey(i int) string { return fmt.Sprintf("item-%d", i) }
