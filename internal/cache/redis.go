package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces resource keys in a shared Redis.
const DefaultRedisPrefix = "consultantpdf:"

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379" or "redis://:password@host:6379/0")
	URL string

	// Prefix is prepended to every resource name (defaults to "consultantpdf:")
	Prefix string

	// Expiry is the key time-to-live. Zero keeps entries until overwritten,
	// which is what stale-cache fallback needs.
	Expiry time.Duration
}

// RedisCache implements Cache using Redis, for operators who share one cache
// between several machines.
type RedisCache struct {
	client *redis.Client
	prefix string
	expiry time.Duration
	now    func() time.Time
}

// redisEntry is the stored value. Redis has no mtime, so the write time travels
// with the payload.
type redisEntry struct {
	StoredAt time.Time       `json:"stored_at"`
	Payload  json.RawMessage `json:"payload"`
}

// NewRedisCache creates a new Redis-based cache.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}

	slog.Debug("redis cache connected", "prefix", prefix, "expiry", cfg.Expiry)

	return &RedisCache{
		client: client,
		prefix: prefix,
		expiry: cfg.Expiry,
		now:    time.Now,
	}, nil
}

// ReadFresh returns the payload if it was stored no more than maxAge ago.
func (c *RedisCache) ReadFresh(ctx context.Context, name string, maxAge time.Duration) (json.RawMessage, bool, error) {
	entry, ok, err := c.get(ctx, name)
	if err != nil || !ok {
		return nil, false, err
	}
	if !isFresh(c.now(), entry.StoredAt, maxAge) {
		return nil, false, nil
	}
	return entry.Payload, true, nil
}

// ReadStale returns the payload whatever its age.
func (c *RedisCache) ReadStale(ctx context.Context, name string) (json.RawMessage, bool, error) {
	entry, ok, err := c.get(ctx, name)
	if err != nil || !ok {
		return nil, false, err
	}
	return entry.Payload, true, nil
}

func (c *RedisCache) get(ctx context.Context, name string) (*redisEntry, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // No cache yet, not an error
		}
		return nil, false, fmt.Errorf("failed to get cache from redis: %w", err)
	}
	entry, err := decodeRedisEntry(data)
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

// Write stores payload under name. A single SET replaces the value atomically.
func (c *RedisCache) Write(ctx context.Context, name string, payload json.RawMessage) error {
	data, err := encodeRedisEntry(c.now(), payload)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.prefix+name, data, c.expiry).Err(); err != nil {
		return fmt.Errorf("failed to set cache in redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func encodeRedisEntry(now time.Time, payload json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(redisEntry{StoredAt: now.UTC(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	return data, nil
}

func decodeRedisEntry(data []byte) (*redisEntry, error) {
	var entry redisEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to parse cache from redis: %w", err)
	}
	if len(entry.Payload) == 0 {
		return nil, fmt.Errorf("failed to parse cache from redis: empty payload")
	}
	return &entry, nil
}
