package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const linkPrefix = "studio:doclink:"

// LinkCache remembers hosted document links so a receipt is rendered and uploaded
// once per TTL.
type LinkCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLinkCache instantiates the cache helper. A nil client disables caching.
func NewLinkCache(client *redis.Client, ttl time.Duration) *LinkCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &LinkCache{client: client, ttl: ttl}
}

// Get returns the cached link for key, or "" when missing.
func (c *LinkCache) Get(ctx context.Context, key string) (string, error) {
	if c == nil || c.client == nil {
		return "", nil
	}
	link, err := c.client.Get(ctx, linkPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return link, err
}

// Set stores the link for key.
func (c *LinkCache) Set(ctx context.Context, key, link string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, linkPrefix+key, link, c.ttl).Err()
}
