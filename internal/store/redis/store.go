// Package redis mirrors the board into Redis and stores query cache entries.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRecordTTL bounds how long a mirrored record outlives the last sync.
const DefaultRecordTTL = 48 * time.Hour

// ErrNotFound is returned when a record is absent from Redis.
var ErrNotFound = errors.New("not found in redis")

// Store handles Redis operations for discussions, users and the query cache
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
