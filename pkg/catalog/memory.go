package catalog

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	plansKey        = "catalog:plans"
	addOnsKey       = "catalog:addons"
	defaultPlanKey  = "catalog:default_plan"
	memoryCacheName = "memory"
)

// MemoryCache is an in-process, size-bounded cache in front of another
// Provider. Entries expire after the configured TTL.
type MemoryCache struct {
	next     Provider
	cache    *expirable.LRU[string, any]
	recorder CacheRecorder
}

// NewMemoryCache wraps next with an LRU of the given size and TTL
func NewMemoryCache(next Provider, size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 16
	}
	return &MemoryCache{
		next:  next,
		cache: expirable.NewLRU[string, any](size, nil, ttl),
	}
}

// WithRecorder reports hits and misses to r
func (c *MemoryCache) WithRecorder(r CacheRecorder) *MemoryCache {
	c.recorder = r
	return c
}

// ListPlans implements Provider
func (c *MemoryCache) ListPlans(ctx context.Context) ([]Plan, error) {
	if v, ok := c.cache.Get(plansKey); ok {
		c.record(CacheHit)
		return append([]Plan(nil), v.([]Plan)...), nil
	}
	c.record(CacheMiss)

	plans, err := c.next.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Add(plansKey, append([]Plan(nil), plans...))
	return plans, nil
}

// ListAddOns implements Provider
func (c *MemoryCache) ListAddOns(ctx context.Context) ([]AddOn, error) {
	if v, ok := c.cache.Get(addOnsKey); ok {
		c.record(CacheHit)
		return append([]AddOn(nil), v.([]AddOn)...), nil
	}
	c.record(CacheMiss)

	addOns, err := c.next.ListAddOns(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Add(addOnsKey, append([]AddOn(nil), addOns...))
	return addOns, nil
}

// DefaultPlanID implements Provider
func (c *MemoryCache) DefaultPlanID(ctx context.Context) (ID, error) {
	if v, ok := c.cache.Get(defaultPlanKey); ok {
		c.record(CacheHit)
		return v.(ID), nil
	}
	c.record(CacheMiss)

	id, err := c.next.DefaultPlanID(ctx)
	if err != nil {
		return "", err
	}
	c.cache.Add(defaultPlanKey, id)
	return id, nil
}

// Invalidate drops every cached entry
func (c *MemoryCache) Invalidate(ctx context.Context) error {
	c.cache.Purge()
	return nil
}

func (c *MemoryCache) record(result string) {
	if c.recorder != nil {
		c.recorder.RecordCacheResult(memoryCacheName, result)
	}
}
