// Package querycache memoizes rendered query results (discussion pages and
// detail records) in Redis or in process memory.
package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/MrSnakeDoc/agora/internal/logger"
	"github.com/MrSnakeDoc/agora/internal/metrics"
)

// Backend stores raw cache entries.
type Backend interface {
	GetCache(ctx context.Context, key string) ([]byte, bool, error)
	SetCache(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteCache(ctx context.Context, key string) error
	FlushCache(ctx context.Context) error
}

// LoadFunc produces the value for a missing key.
type LoadFunc func(ctx context.Context) (any, error)

// Cache is a JSON read-through cache. Backend failures are logged and
// degrade to calling the loader; they are never returned to callers.
type Cache struct {
	backend Backend
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  logger.Logger
}

// New creates a cache over backend. A nil m disables instrumentation.
func New(backend Backend, ttl time.Duration, m *metrics.Metrics, log logger.Logger) *Cache {
	return &Cache{backend: backend, ttl: ttl, metrics: m, logger: log}
}

// PageKey is the key of one page of the discussion listing.
func PageKey(page, size int) string {
	return "discussions:page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(size)
}

// DiscussionKey is the key of a discussion detail record.
func DiscussionKey(id string) string {
	return "discussion:" + id
}

// GetOrLoad decodes the cached entry for key into dst, or calls load,
// stores its result and decodes that into dst.
func (c *Cache) GetOrLoad(ctx context.Context, key string, dst any, load LoadFunc) error {
	if raw, ok := c.lookup(ctx, key); ok {
		if err := json.Unmarshal(raw, dst); err == nil {
			return nil
		}
		c.logger.Warn("dropping undecodable cache entry", logger.String("key", key))
		c.Invalidate(ctx, key)
	}

	raw, err := c.fill(ctx, key, load)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Prefetch loads key unless it is already cached.
func (c *Cache) Prefetch(ctx context.Context, key string, load LoadFunc) error {
	if _, ok := c.lookup(ctx, key); ok {
		return nil
	}
	_, err := c.fill(ctx, key, load)
	return err
}

// Invalidate drops a single entry.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	if err := c.backend.DeleteCache(ctx, key); err != nil {
		c.logger.Warn("failed to invalidate cache entry",
			logger.String("key", key),
			logger.Error(err))
	}
}

// Flush drops every entry.
func (c *Cache) Flush(ctx context.Context) error {
	if err := c.backend.FlushCache(ctx); err != nil {
		return fmt.Errorf("flush query cache: %w", err)
	}
	return nil
}

func (c *Cache) lookup(ctx context.Context, key string) ([]byte, bool) {
	raw, ok, err := c.backend.GetCache(ctx, key)
	switch {
	case err != nil:
		c.metrics.CacheLookup(metrics.CacheError)
		c.logger.Warn("query cache lookup failed",
			logger.String("key", key),
			logger.Error(err))
		return nil, false
	case !ok:
		c.metrics.CacheLookup(metrics.CacheMiss)
		return nil, false
	default:
		c.metrics.CacheLookup(metrics.CacheHit)
		return raw, true
	}
}

func (c *Cache) fill(ctx context.Context, key string, load LoadFunc) ([]byte, error) {
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.backend.SetCache(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("failed to store cache entry",
			logger.String("key", key),
			logger.Error(err))
	}
	return raw, nil
}
