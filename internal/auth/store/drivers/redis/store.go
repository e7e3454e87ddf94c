// Package redis stores keys in Redis with native expiry. Use it when several
// service instances share refresh and temporary token state.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
)

// compareAndDelete removes KEYS[1] only when it holds ARGV[1]. Redis runs
// scripts atomically, so two callers can never both see 1.
var compareAndDelete = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

type Store struct {
	client *redis.Client
	prefix string
}

var _ store.Store = (*Store)(nil)

// NewStore parses a redis:// URL and connects. Every key is namespaced with
// prefix, which may be empty.
func NewStore(url, prefix string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	return NewStoreFromClient(redis.NewClient(opts), prefix), nil
}

func NewStoreFromClient(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis: get %q: %w", key, err)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return store.ErrInvalidTTL
	}
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis: delete %q: %w", key, err)
	}
	return nil
}

func (s *Store) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	n, err := compareAndDelete.Run(ctx, s.client, []string{s.key(key)}, expected).Int64()
	if err != nil {
		return false, fmt.Errorf("redis: compare and delete %q: %w", key, err)
	}
	return n == 1, nil
}

// DeleteExpired is a no-op; Redis evicts expired keys itself.
func (s *Store) DeleteExpired(context.Context) (int64, error) { return 0, nil }

func (s *Store) ApplyMigrations(context.Context) error { return nil }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error { return s.client.Close() }
