package scheduler

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/agora/internal/index"
	"github.com/MrSnakeDoc/agora/internal/logger"
	redisstore "github.com/MrSnakeDoc/agora/internal/store/redis"
)

// RedisSyncer warms the memory index from the redis mirror on startup
type RedisSyncer struct {
	store  *redisstore.Store
	index  *index.MemoryIndex
	logger logger.Logger
}

// NewRedisSyncer creates a new Redis syncer
func NewRedisSyncer(
	store *redisstore.Store,
	idx *index.MemoryIndex,
	log logger.Logger,
) *RedisSyncer {
	return &RedisSyncer{
		store:  store,
		index:  idx,
		logger: log,
	}
}

// Sync loads discussions and users from Redis into the memory index. An
// empty mirror leaves the index untouched, so it keeps reporting not loaded.
func (rs *RedisSyncer) Sync(ctx context.Context) error {
	rs.logger.Info("syncing board from redis to memory")

	discussions, err := rs.store.GetAllDiscussions(ctx)
	if err != nil {
		return fmt.Errorf("read discussions: %w", err)
	}

	if len(discussions) == 0 {
		rs.logger.Info("no discussions found in redis")
		return nil
	}

	users, err := rs.store.GetAllUsers(ctx)
	if err != nil {
		return fmt.Errorf("read users: %w", err)
	}

	rs.index.UpdateUsers(users)
	rs.index.UpdateDiscussions(discussions)

	rs.logger.Info("synced board from redis",
		logger.Int("discussions", len(discussions)),
		logger.Int("users", len(users)))

	return nil
}
