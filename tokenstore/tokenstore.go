// Package tokenstore persists the live refresh token per user in redis.
// A user has at most one live refresh token: saving overwrites the previous
// one, which invalidates it for rotation purposes.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "refresh"

// ErrNotFound is returned when no refresh token is stored for the user.
var ErrNotFound = errors.New("refresh token not found")

// Store is the narrow interface consumed by the auth handlers.
type Store interface {
	Save(ctx context.Context, userID, token string, ttl time.Duration) error
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

func New(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(userID string) string {
	return keyPrefix + ":" + userID
}

// Save stores the token under the user's key, replacing any previous token.
func (s *RedisStore) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

// Get returns the stored token or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, userID string) (string, error) {
	token, err := s.client.Get(ctx, key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get refresh token: %w", err)
	}
	return token, nil
}

// Delete removes the stored token. Deleting an absent token is not an error.
func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}
