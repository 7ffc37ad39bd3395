package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"foodreel/pkg/platform/sentinel"
)

// RedisStore keeps values in Redis under a key prefix, so a kiosk fleet or the
// sessionctl CLI on another host can share one client session.
type RedisStore struct {
	client *redis.Client
	prefix string
	health func(ctx context.Context) error
}

// RedisStoreOption configures a RedisStore instance.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix overrides the default "foodreel:" key prefix.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithHealthCheck replaces the default ping used by Health.
func WithHealthCheck(fn func(ctx context.Context) error) RedisStoreOption {
	return func(s *RedisStore) {
		if fn != nil {
			s.health = fn
		}
	}
}

// NewRedisStore constructs a Redis-backed store. The client lifecycle is
// managed by the caller.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{client: client, prefix: "foodreel:"}
	s.health = func(ctx context.Context) error { return s.client.Ping(ctx).Err() }
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Health reports whether Redis answers.
func (s *RedisStore) Health(ctx context.Context) error {
	if err := s.health(ctx); err != nil {
		return fmt.Errorf("redis storage: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, errors.Join(sentinel.ErrUnavailable, err))
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}
