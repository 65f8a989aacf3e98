package marketdata

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// cacheEntry pairs a cached value with the instant it was stored.
type cacheEntry[T any] struct {
	data  T
	stamp time.Time
}

// memoryCache is the always-present first cache tier: a process-wide map
// with a single TTL. Concurrent reads are safe; two concurrent misses for
// the same key may both fetch upstream, which is tolerated.
type memoryCache[T any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry[T]
	now     func() time.Time
}

func newMemoryCache[T any](ttl time.Duration) *memoryCache[T] {
	return &memoryCache[T]{
		ttl:     ttl,
		entries: make(map[string]cacheEntry[T]),
		now:     time.Now,
	}
}

func (c *memoryCache[T]) get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.stamp) > c.ttl {
		var zero T
		return zero, false
	}
	return e.data, true
}

func (c *memoryCache[T]) set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry[T]{data: data, stamp: c.now()}
}

// RedisTier is the optional second cache tier, shared across processes.
// Values are stored as JSON with the same TTL the memory tier uses.
type RedisTier struct {
	client *redis.Client
	prefix string
}

// NewRedisTier connects a Redis-backed cache tier.
func NewRedisTier(addr, password string, db int) *RedisTier {
	return &RedisTier{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		prefix: "stockwatch:",
	}
}

// Ping verifies the Redis connection.
func (r *RedisTier) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisTier) get(ctx context.Context, key string, dest any) bool {
	data, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(data), dest) == nil
}

func (r *RedisTier) set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	// best effort: a failed write only costs a future upstream call
	r.client.Set(ctx, r.prefix+key, data, ttl)
}

// tieredCache layers the memory tier over the optional Redis tier. A hit in
// either tier short-circuits the provider call; a memory miss that hits
// Redis backfills the memory tier.
type tieredCache[T any] struct {
	mem   *memoryCache[T]
	redis *RedisTier // nil when not configured
}

func newTieredCache[T any](ttl time.Duration, redis *RedisTier) *tieredCache[T] {
	return &tieredCache[T]{mem: newMemoryCache[T](ttl), redis: redis}
}

func (c *tieredCache[T]) get(ctx context.Context, key string) (T, bool) {
	if v, ok := c.mem.get(key); ok {
		return v, true
	}
	if c.redis != nil {
		var v T
		if c.redis.get(ctx, key, &v) {
			c.mem.set(key, v)
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (c *tieredCache[T]) set(ctx context.Context, key string, data T) {
	c.mem.set(key, data)
	if c.redis != nil {
		c.redis.set(ctx, key, data, c.mem.ttl)
	}
}
