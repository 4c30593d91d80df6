// Package cache provides the key/value store with expiry that short-lived
// artifacts (one-time codes, signed URLs) are kept in.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or expired
var ErrMiss = errors.New("cache miss")

// Store is a string key/value store with per-entry TTL
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeleteIfEqual removes key only while it still holds value, atomically
	DeleteIfEqual(ctx context.Context, key, value string) (bool, error)
	// Incr increments the counter under key; the first increment starts its ttl
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// deleteIfEqualLua compares and deletes in one round trip.
// KEYS[1] = key, ARGV[1] = expected value. Returns 1 when deleted.
var deleteIfEqualLua = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore implements Store on top of Redis
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a store whose keys are namespaced with prefix
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

// Get returns the value stored under key, or ErrMiss
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %q: %w", key, err)
	}
	return val, nil
}

// Set stores value under key, replacing any previous value and TTL
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl for %q must be positive", key)
	}
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// DeleteIfEqual removes key when its value is still value.
// A missing key or a different value reports false.
func (s *RedisStore) DeleteIfEqual(ctx context.Context, key, value string) (bool, error) {
	deleted, err := deleteIfEqualLua.Run(ctx, s.client, []string{s.key(key)}, value).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return deleted == 1, nil
}

// Incr increments the counter under key. The window starts at the first increment.
func (s *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if ttl <= 0 {
		return 0, fmt.Errorf("ttl for %q must be positive", key)
	}

	count, err := s.client.Incr(ctx, s.key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment %q: %w", key, err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, s.key(key), ttl).Err(); err != nil {
			return 0, fmt.Errorf("failed to set ttl of %q: %w", key, err)
		}
	}
	return count, nil
}
