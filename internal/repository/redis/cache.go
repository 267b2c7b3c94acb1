package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides the small slice of Redis the gateway needs: counters for
// rate limiting and connectivity checks for readiness probes. Transactions
// themselves are never stored; FedaPay is the source of truth.
type Cache struct {
	client *redis.Client
}

// NewCache creates a new Redis cache client
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// IncrementWithTTL increments a counter and sets TTL if key is new
func (c *Cache) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := c.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to increment with TTL: %w", err)
	}

	return incr.Val(), nil
}

// GetCounter gets the current value of a counter
func (c *Cache) GetCounter(ctx context.Context, key string) (int64, error) {
	result, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get counter: %w", err)
	}
	return result, nil
}

// Ping checks if Redis is available
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// KeyPrefixRateLimit namespaces rate-limit counters.
const KeyPrefixRateLimit = "ratelimit:"

// RateLimitKey generates a rate limit key for an IP
func RateLimitKey(ip, endpoint string) string {
	return fmt.Sprintf("%s%s:%s", KeyPrefixRateLimit, endpoint, ip)
}
