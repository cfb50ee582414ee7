package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisCacheName = "redis"

// RedisCache caches catalog reads in Redis so that several server replicas
// share one copy. Redis failures fall through to the wrapped Provider.
type RedisCache struct {
	next     Provider
	client   *redis.Client
	ttl      time.Duration
	recorder CacheRecorder
}

// NewRedisCache wraps next with a Redis-backed cache
func NewRedisCache(next Provider, client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{
		next:   next,
		client: client,
		ttl:    ttl,
	}
}

// WithRecorder reports hits, misses and errors to r
func (c *RedisCache) WithRecorder(r CacheRecorder) *RedisCache {
	c.recorder = r
	return c
}

// ListPlans implements Provider
func (c *RedisCache) ListPlans(ctx context.Context) ([]Plan, error) {
	var plans []Plan
	if c.get(ctx, plansKey, &plans) {
		return plans, nil
	}

	plans, err := c.next.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, plansKey, plans)
	return plans, nil
}

// ListAddOns implements Provider
func (c *RedisCache) ListAddOns(ctx context.Context) ([]AddOn, error) {
	var addOns []AddOn
	if c.get(ctx, addOnsKey, &addOns) {
		return addOns, nil
	}

	addOns, err := c.next.ListAddOns(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, addOnsKey, addOns)
	return addOns, nil
}

// DefaultPlanID implements Provider
func (c *RedisCache) DefaultPlanID(ctx context.Context) (ID, error) {
	var id ID
	if c.get(ctx, defaultPlanKey, &id) {
		return id, nil
	}

	id, err := c.next.DefaultPlanID(ctx)
	if err != nil {
		return "", err
	}
	c.set(ctx, defaultPlanKey, id)
	return id, nil
}

// Invalidate deletes the cached catalog keys
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, plansKey, addOnsKey, defaultPlanKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate redis catalog cache: %w", err)
	}
	return nil
}

func (c *RedisCache) get(ctx context.Context, key string, dest any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.record(CacheMiss)
		return false
	}
	if err != nil {
		c.record(CacheError)
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// Corrupt entry, drop it and reload
		c.client.Del(ctx, key)
		c.record(CacheError)
		return false
	}

	c.record(CacheHit)
	return true
}

func (c *RedisCache) set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.record(CacheError)
	}
}

func (c *RedisCache) record(result string) {
	if c.recorder != nil {
		c.recorder.RecordCacheResult(redisCacheName, result)
	}
}
