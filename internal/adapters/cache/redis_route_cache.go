package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"arrival-route-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisRouteCache stores routes as JSON strings with a TTL.
type RedisRouteCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{client: client, ttl: ttl}
}

// Return the cached route for key; ok is false on a miss.
func (c *RedisRouteCache) Get(ctx context.Context, key string) (domain.Route, bool, error) {
	if c.client == nil {
		return domain.Route{}, false, errors.New("redis route cache: client is nil")
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Route{}, false, nil
	}
	if err != nil {
		return domain.Route{}, false, fmt.Errorf("get route cache: redis get %q: %w", key, err)
	}

	var route domain.Route
	if err := json.Unmarshal(raw, &route); err != nil {
		return domain.Route{}, false, fmt.Errorf("get route cache: decode %q: %w", key, err)
	}
	return route, true, nil
}

// Store a route under key. A zero TTL keeps the entry until evicted.
func (c *RedisRouteCache) Put(ctx context.Context, key string, route domain.Route) error {
	if c.client == nil {
		return errors.New("redis route cache: client is nil")
	}

	raw, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("put route cache: encode %q: %w", key, err)
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("put route cache: redis set %q: %w", key, err)
	}
	return nil
}
