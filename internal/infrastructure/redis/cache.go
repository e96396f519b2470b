package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is the safety net against entries whose eviction was missed.
const DefaultTTL = 10 * time.Minute

// Cache is a read-through cache over (region, key) pairs with JSON values.
// Each service owns its regions; there is no cross-service cache sharing.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Get unmarshals the cached value into dest and reports a hit. Errors count as
// misses for the caller; reads must never fail because the cache is down.
func (c *Cache) Get(ctx context.Context, region, key string, dest any) (bool, error) {
	val, err := c.client.Get(ctx, cacheKey(region, key)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s:%s: %w", region, key, err)
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, fmt.Errorf("cache decode %s:%s: %w", region, key, err)
	}

	return true, nil
}

func (c *Cache) Set(ctx context.Context, region, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s:%s: %w", region, key, err)
	}

	if err := c.client.Set(ctx, cacheKey(region, key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s:%s: %w", region, key, err)
	}

	return nil
}

func (c *Cache) Evict(ctx context.Context, region, key string) error {
	if err := c.client.Del(ctx, cacheKey(region, key)).Err(); err != nil {
		return fmt.Errorf("cache evict %s:%s: %w", region, key, err)
	}
	return nil
}

func cacheKey(region, key string) string {
	return region + ":" + key
}
