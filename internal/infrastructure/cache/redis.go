package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores token metadata that never changes on-chain
type Cache interface {
	// GetDecimals returns ok=false on a miss
	GetDecimals(ctx context.Context, key string) (decimals uint8, ok bool, err error)
	SetDecimals(ctx context.Context, key string, decimals uint8, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisCache implements Cache using Redis
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetDecimals(ctx context.Context, key string) (uint8, bool, error) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}

	d, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt decimals entry %s=%q: %w", key, raw, err)
	}
	return uint8(d), true, nil
}

// SetDecimals caches decimals; ttl 0 keeps the entry forever
func (c *RedisCache) SetDecimals(ctx context.Context, key string, decimals uint8, ttl time.Duration) error {
	return c.client.Set(ctx, key, strconv.Itoa(int(decimals)), ttl).Err()
}

// Delete removes a key from cache
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// DecimalsCacheKey generates a cache key for a token's decimals on a chain
func DecimalsCacheKey(chainID int64, token string) string {
	return fmt.Sprintf("decimals:%d:%s", chainID, strings.ToLower(token))
}

// InMemoryCache implements Cache using in-memory storage (for testing/development)
type InMemoryCache struct {
	mu       sync.RWMutex
	decimals map[string]*cachedDecimals
}

type cachedDecimals struct {
	value     uint8
	expiresAt time.Time // zero means no expiry
}

// NewInMemoryCache creates a new in-memory cache
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		decimals: make(map[string]*cachedDecimals),
	}
}

func (c *InMemoryCache) GetDecimals(ctx context.Context, key string) (uint8, bool, error) {
	c.mu.RLock()
	cached, ok := c.decimals[key]
	c.mu.RUnlock()
	if !ok {
		return 0, false, nil
	}
	if !cached.expiresAt.IsZero() && time.Now().After(cached.expiresAt) {
		c.mu.Lock()
		delete(c.decimals, key)
		c.mu.Unlock()
		return 0, false, nil
	}
	return cached.value, true, nil
}

func (c *InMemoryCache) SetDecimals(ctx context.Context, key string, decimals uint8, ttl time.Duration) error {
	entry := &cachedDecimals{value: decimals}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.decimals[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.decimals, key)
	c.mu.Unlock()
	return nil
}
