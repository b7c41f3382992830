package cache

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
)

const tokenKey = "eskimo:access_token"

// ---------------------------------------------------------------------------
// In-process token cache
// ---------------------------------------------------------------------------

// MemoryTokenCache keeps the bearer token in process memory. Suitable for a
// single-instance deployment; use RedisTokenCache when running more than one
// replica so all share one remote session.
type MemoryTokenCache struct {
	store *gocache.Cache
}

var _ syncdomain.TokenCache = (*MemoryTokenCache)(nil)

// NewMemoryTokenCache creates an in-process token cache
func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{
		store: gocache.New(gocache.NoExpiration, 5*time.Minute),
	}
}

// Get returns the cached token, or "" when absent or expired
func (c *MemoryTokenCache) Get(_ context.Context) (string, error) {
	if v, ok := c.store.Get(tokenKey); ok {
		if token, ok := v.(string); ok {
			return token, nil
		}
	}
	return "", nil
}

// Set stores the token with the given lifetime
func (c *MemoryTokenCache) Set(_ context.Context, token string, ttl time.Duration) error {
	c.store.Set(tokenKey, token, ttl)
	return nil
}

// Clear drops the cached token
func (c *MemoryTokenCache) Clear(_ context.Context) error {
	c.store.Delete(tokenKey)
	return nil
}

// ---------------------------------------------------------------------------
// Redis token cache
// ---------------------------------------------------------------------------

// RedisTokenCache shares the bearer token across replicas via Redis
type RedisTokenCache struct {
	client *redis.Client
}

var _ syncdomain.TokenCache = (*RedisTokenCache)(nil)

// NewRedisTokenCache creates a Redis-backed token cache
func NewRedisTokenCache(client *redis.Client) *RedisTokenCache {
	return &RedisTokenCache{client: client}
}

// Get returns the cached token, or "" when absent or expired
func (c *RedisTokenCache) Get(ctx context.Context) (string, error) {
	token, err := c.client.Get(ctx, tokenKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// Set stores the token with the given lifetime
func (c *RedisTokenCache) Set(ctx context.Context, token string, ttl time.Duration) error {
	return c.client.Set(ctx, tokenKey, token, ttl).Err()
}

// Clear drops the cached token
func (c *RedisTokenCache) Clear(ctx context.Context) error {
	return c.client.Del(ctx, tokenKey).Err()
}
