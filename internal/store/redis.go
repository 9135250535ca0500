package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/park-explorer/internal/park"
)

const settingsKeyPrefix = "settings:"

// RedisStore keeps preferences as JSON documents under settings:<user>.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the stored preferences for userID, and false when none are stored.
func (s *RedisStore) Get(ctx context.Context, userID string) (park.UserPreferences, bool, error) {
	payload, err := s.client.Get(ctx, settingsKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return park.UserPreferences{}, false, nil
	}
	if err != nil {
		return park.UserPreferences{}, false, fmt.Errorf("redis get settings for %q: %w", userID, err)
	}

	var prefs park.UserPreferences
	if err := json.Unmarshal(payload, &prefs); err != nil {
		return park.UserPreferences{}, false, fmt.Errorf("decode settings for %q: %w", userID, err)
	}
	return prefs, true, nil
}

// Put replaces the preferences of userID.
func (s *RedisStore) Put(ctx context.Context, userID string, prefs park.UserPreferences) error {
	payload, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode settings for %q: %w", userID, err)
	}
	if err := s.client.Set(ctx, settingsKey(userID), payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set settings for %q: %w", userID, err)
	}
	return nil
}

// Ping checks connectivity; used at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func settingsKey(userID string) string {
	return settingsKeyPrefix + userID
}
