package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the Redis key holding the settings document.
const DefaultKey = "receptionist:settings"

// RedisStore persists settings as a JSON document in Redis.
type RedisStore struct {
	redis *redis.Client
	key   string
}

// NewRedisStore creates a store under DefaultKey.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{redis: client, key: DefaultKey}
}

// Get returns the saved settings, or Defaults when nothing is stored.
func (s *RedisStore) Get(ctx context.Context) (*Settings, error) {
	data, err := s.redis.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: get: %w", err)
	}

	var out Settings
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("settings: unmarshal: %w", err)
	}
	return &out, nil
}

// Set replaces the stored settings.
func (s *RedisStore) Set(ctx context.Context, in *Settings) error {
	if in == nil {
		return fmt.Errorf("%w: body required", ErrInvalidSettings)
	}
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	if err := s.redis.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("settings: set: %w", err)
	}
	return nil
}
