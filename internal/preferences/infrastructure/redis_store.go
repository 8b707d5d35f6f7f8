package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the preference document as JSON under
// {namespace}:preferences.
type RedisStore struct {
	client    redis.Cmdable
	namespace string
	defaults  domain.Preferences
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client redis.Cmdable, namespace string, defaults domain.Preferences) *RedisStore {
	if namespace == "" {
		namespace = "focusflow"
	}
	return &RedisStore{client: client, namespace: namespace, defaults: defaults}
}

func (s *RedisStore) key() string {
	return s.namespace + ":preferences"
}

// Get returns the stored document. A missing key yields the defaults.
func (s *RedisStore) Get(ctx context.Context) (domain.Preferences, error) {
	raw, err := s.client.Get(ctx, s.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return s.defaults, nil
	}
	if err != nil {
		return s.defaults, fmt.Errorf("failed to read preferences: %w", err)
	}
	return decode(raw, s.defaults)
}

// Save validates prefs and stores them without expiry.
func (s *RedisStore) Save(ctx context.Context, prefs domain.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := s.client.Set(ctx, s.key(), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// decode overlays the stored document on defaults so keys added after the
// document was written keep their default values.
func decode(raw []byte, defaults domain.Preferences) (domain.Preferences, error) {
	prefs := defaults
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return defaults, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return prefs, nil
}
