// Package cache stores raw upstream payloads keyed by logical resource name.
// Supports a local directory of JSON files, a single SQLite database file and
// a Redis backend shared between hosts.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"consultantpdf/config"
)

// Cache defines the interface for resource payload storage.
//
// Payloads are stored verbatim. Read methods return ok=false with a nil error
// when no entry exists; an error means an entry exists but could not be read.
type Cache interface {
	// ReadFresh returns the payload only if it was written no more than maxAge ago.
	ReadFresh(ctx context.Context, name string, maxAge time.Duration) (json.RawMessage, bool, error)

	// ReadStale returns the payload regardless of its age.
	ReadStale(ctx context.Context, name string) (json.RawMessage, bool, error)

	// Write replaces the entry atomically: readers see the old or the new
	// payload, never a partial one.
	Write(ctx context.Context, name string, payload json.RawMessage) error

	// Close releases any resources held by the cache.
	Close() error
}

// New initializes the cache backend selected by cfg.Type.
func New(cfg config.CacheConfig) (Cache, error) {
	switch cfg.Type {
	case "redis":
		redisCache, err := NewRedisCache(RedisConfig{
			URL:    cfg.Redis.URL,
			Prefix: cfg.Redis.Prefix,
			Expiry: time.Duration(cfg.Redis.Expiry) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return redisCache, nil
	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(cfg.Dir, DefaultSQLiteFile)
		}
		return NewSQLiteCache(path)
	case "", "local":
		slog.Debug("using local file cache", "dir", cfg.Dir)
		return NewLocalCache(cfg.Dir), nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}

func isFresh(now, written time.Time, maxAge time.Duration) bool {
	return now.Sub(written) <= maxAge
}
