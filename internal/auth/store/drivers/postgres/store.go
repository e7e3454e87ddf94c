// Package postgres keeps keys in a single kv table behind a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
)

type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ store.Store = (*Store)(nil)

// OpenPool connects to dsn and verifies the connection.
func OpenPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// NewStore connects to dsn. now may be nil, in which case time.Now is used
// for expiry decisions.
func NewStore(ctx context.Context, dsn string, now func() time.Time) (*Store, error) {
	pool, err := OpenPool(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	return NewStoreFromPool(pool, now), nil
}

func NewStoreFromPool(pool *pgxpool.Pool, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{pool: pool, now: now}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM kv WHERE key = $1 AND expires_at > $2`,
		key, s.now(),
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("postgres: get %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return store.ErrInvalidTTL
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO kv (key, value, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		key, value, s.now().Add(ttl),
	)
	if err != nil {
		return fmt.Errorf("postgres: set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("postgres: delete %q: %w", key, err)
	}
	return nil
}

func (s *Store) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM kv WHERE key = $1 AND value = $2 AND expires_at > $3`,
		key, expected, s.now(),
	)
	if err != nil {
		return false, fmt.Errorf("postgres: compare and delete %q: %w", key, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM kv WHERE expires_at <= $1`, s.now())
	if err != nil {
		return 0, fmt.Errorf("postgres: delete expired: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
