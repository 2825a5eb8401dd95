package assistant

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplyCache stores provider replies keyed by CacheKey.
type ReplyCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, reply string) error
}

// CacheKey identifies a provider reply for one prompt and context.
func CacheKey(provider, assetContext, prompt string) string {
	sum := sha256.Sum256([]byte(assetContext + "\x00" + prompt))
	return provider + ":" + hex.EncodeToString(sum[:])
}

type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration, prefix string) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: prefix}
}

func (c *RedisCache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get: %w", err)
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, reply string) error {
	if err := c.client.Set(ctx, c.key(key), reply, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
