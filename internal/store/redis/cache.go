package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetCache stores a query cache entry
func (s *Store) SetCache(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, CacheKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache %s: %w", key, err)
	}
	return nil
}

// GetCache retrieves a query cache entry. A miss is reported as ok == false.
func (s *Store) GetCache(ctx context.Context, key string) (value []byte, ok bool, err error) {
	value, err = s.client.Get(ctx, CacheKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return value, true, nil
}

// DeleteCache removes a query cache entry
func (s *Store) DeleteCache(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, CacheKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

// FlushCache removes all query cache entries
func (s *Store) FlushCache(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, KeyPrefixCache+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}
	return nil
}
