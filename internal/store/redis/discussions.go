package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/agora/internal/domain"
)

// SaveDiscussion stores a discussion in Redis
func (s *Store) SaveDiscussion(ctx context.Context, d *domain.Discussion) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal discussion: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, DiscussionKey(d.ID), data, DefaultRecordTTL)
	pipe.SAdd(ctx, KeyAllDiscussions, d.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save discussion %s: %w", d.ID, err)
	}

	return nil
}

// GetDiscussion retrieves a discussion from Redis by ID
func (s *Store) GetDiscussion(ctx context.Context, id string) (*domain.Discussion, error) {
	data, err := s.client.Get(ctx, DiscussionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("discussion %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get discussion: %w", err)
	}

	var d domain.Discussion
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal discussion: %w", err)
	}

	return &d, nil
}

// GetAllDiscussions retrieves every discussion listed in the ID set. IDs
// whose record expired are skipped.
func (s *Store) GetAllDiscussions(ctx context.Context) ([]*domain.Discussion, error) {
	ids, err := s.client.SMembers(ctx, KeyAllDiscussions).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get discussion IDs: %w", err)
	}

	if len(ids) == 0 {
		return []*domain.Discussion{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = DiscussionKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get discussions: %w", err)
	}

	discussions := make([]*domain.Discussion, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var d domain.Discussion
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			continue
		}
		discussions = append(discussions, &d)
	}

	return discussions, nil
}

// DeleteDiscussion removes a discussion from Redis
func (s *Store) DeleteDiscussion(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, DiscussionKey(id))
	pipe.SRem(ctx, KeyAllDiscussions, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete discussion %s: %w", id, err)
	}

	return nil
}

// SaveDiscussionsMany stores multiple discussions in Redis (bulk operation)
func (s *Store) SaveDiscussionsMany(ctx context.Context, discussions []*domain.Discussion) error {
	if len(discussions) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, d := range discussions {
		data, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("failed to marshal discussion %s: %w", d.ID, err)
		}
		pipe.Set(ctx, DiscussionKey(d.ID), data, DefaultRecordTTL)
		pipe.SAdd(ctx, KeyAllDiscussions, d.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save discussions: %w", err)
	}

	return nil
}
