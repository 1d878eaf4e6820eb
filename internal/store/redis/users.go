package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MrSnakeDoc/agora/internal/domain"
)

// SaveUser stores a single user, e.g. one who just registered.
func (s *Store) SaveUser(ctx context.Context, u *domain.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, UserKey(u.ID), data, DefaultRecordTTL)
	pipe.SAdd(ctx, KeyAllUsers, u.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save user %s: %w", u.ID, err)
	}

	return nil
}

// SaveUsersMany replaces the mirrored user directory.
func (s *Store) SaveUsersMany(ctx context.Context, users []*domain.User) error {
	stale, err := s.client.SMembers(ctx, KeyAllUsers).Result()
	if err != nil {
		return fmt.Errorf("failed to get user IDs: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, id := range stale {
		pipe.Del(ctx, UserKey(id))
	}
	pipe.Del(ctx, KeyAllUsers)

	for _, u := range users {
		data, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("failed to marshal user %s: %w", u.ID, err)
		}
		pipe.Set(ctx, UserKey(u.ID), data, DefaultRecordTTL)
		pipe.SAdd(ctx, KeyAllUsers, u.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}

	return nil
}

// GetAllUsers retrieves the mirrored user directory.
func (s *Store) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	ids, err := s.client.SMembers(ctx, KeyAllUsers).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get user IDs: %w", err)
	}

	users := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, UserKey(id)).Bytes()
		if err != nil {
			// Expired or concurrently removed
			continue
		}
		var u domain.User
		if err := json.Unmarshal(data, &u); err != nil {
			continue
		}
		users = append(users, &u)
	}

	return users, nil
}
