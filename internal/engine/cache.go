package engine

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// Upstream fetches (caption results, video info) are cached in two tiers:
// a per-kind expiring LRU in memory and, when configured, Redis.
// Generated notes are never cached.
var upstreamCache *tieredCache

var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

// CacheKind partitions the cache. Each kind has its own TTL and L1 capacity.
type CacheKind string

const (
	CacheCaptions  CacheKind = "captions"
	CacheVideoInfo CacheKind = "videoinfo"
)

// CacheConfig configures InitCache.
type CacheConfig struct {
	RedisURL   string                      // empty disables L2
	TTL        time.Duration               // default TTL for every kind
	KindTTL    map[CacheKind]time.Duration // per-kind overrides
	MaxEntries int                         // L1 capacity per kind; 0 = unbounded
}

// CacheRef addresses one cached value.
type CacheRef struct {
	Kind CacheKind
	Key  string
}

// String returns the Redis key.
func (r CacheRef) String() string {
	return "gn:" + string(r.Kind) + ":" + r.Key
}

type tieredCache struct {
	cfg CacheConfig
	l1  map[CacheKind]*expirable.LRU[string, []byte]
	rdb *redis.Client // nil if Redis unavailable
}

// InitCache sets up the cache. Call after Init().
func InitCache(c CacheConfig) {
	if c.TTL <= 0 {
		c.TTL = 15 * time.Minute
	}
	tc := &tieredCache{cfg: c, l1: make(map[CacheKind]*expirable.LRU[string, []byte])}
	for _, kind := range []CacheKind{CacheCaptions, CacheVideoInfo} {
		tc.l1[kind] = expirable.NewLRU[string, []byte](c.MaxEntries, nil, tc.ttl(kind))
	}

	if c.RedisURL != "" {
		opts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			slog.Warn("cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.Warn("cache: redis unreachable, L2 disabled", slog.Any("error", err))
			} else {
				tc.rdb = rdb
				slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
			}
		}
	}

	upstreamCache = tc
	slog.Info("cache: initialized",
		slog.Duration("captions_ttl", tc.ttl(CacheCaptions)),
		slog.Duration("videoinfo_ttl", tc.ttl(CacheVideoInfo)),
		slog.Bool("redis", tc.rdb != nil),
		slog.Int("max_entries", c.MaxEntries))
}

func (c *tieredCache) ttl(kind CacheKind) time.Duration {
	if d, ok := c.cfg.KindTTL[kind]; ok && d > 0 {
		return d
	}
	return c.cfg.TTL
}

// lru returns the L1 of kind, or nil for kinds that are only kept in Redis.
func (c *tieredCache) lru(kind CacheKind) *expirable.LRU[string, []byte] {
	if l, ok := c.l1[kind]; ok {
		return l
	}
	return nil
}

// CacheKey builds a deterministic reference from parts.
func CacheKey(kind CacheKind, parts ...string) CacheRef {
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return CacheRef{Kind: kind, Key: fmt.Sprintf("%x", hash[:12])}
}

// CacheGet tries L1, then L2. An L2 hit refills L1.
func CacheGet(ctx context.Context, ref CacheRef) ([]byte, bool) {
	c := upstreamCache
	if c == nil {
		cacheMisses.Add(1)
		return nil, false
	}

	l1 := c.lru(ref.Kind)
	if l1 != nil {
		if data, ok := l1.Get(ref.Key); ok {
			cacheHits.Add(1)
			return data, true
		}
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, ref.String()).Bytes()
		if err == nil {
			slog.Debug("cache: L2 hit", slog.String("key", ref.String()))
			cacheHits.Add(1)
			if l1 != nil {
				l1.Add(ref.Key, data)
			}
			return data, true
		}
	}

	cacheMisses.Add(1)
	return nil, false
}

// CacheSet stores data in both tiers.
func CacheSet(ctx context.Context, ref CacheRef, data []byte) {
	c := upstreamCache
	if c == nil {
		return
	}
	if l1 := c.lru(ref.Kind); l1 != nil {
		l1.Add(ref.Key, data)
	}
	if c.rdb != nil {
		if err := c.rdb.Set(ctx, ref.String(), data, c.ttl(ref.Kind)).Err(); err != nil {
			slog.Debug("cache: L2 set failed", slog.Any("error", err))
		}
	}
}

// CacheLoadJSON loads a cached value of type T.
// Returns the decoded value and true on hit; zero value and false on miss or decode error.
func CacheLoadJSON[T any](ctx context.Context, ref CacheRef) (T, bool) {
	var out T
	data, ok := CacheGet(ctx, ref)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

// CacheStoreJSON marshals v and stores it.
func CacheStoreJSON[T any](ctx context.Context, ref CacheRef, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	CacheSet(ctx, ref, data)
}

// CacheStats returns current cache hit/miss counters.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}

// CacheLen returns the number of L1 entries of kind.
func CacheLen(kind CacheKind) int {
	if upstreamCache == nil {
		return 0
	}
	if l1 := upstreamCache.lru(kind); l1 != nil {
		return l1.Len()
	}
	return 0
}
