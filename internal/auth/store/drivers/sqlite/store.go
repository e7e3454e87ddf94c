package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
)

type Store struct {
	db  *sql.DB
	dsn string
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// NewStore opens the database at dsn. now may be nil, in which case
// time.Now is used for expiry decisions.
func NewStore(dsn string, now func() time.Time) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// One connection serialises writers and keeps ":memory:" databases
	// shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), `PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	if now == nil {
		now = time.Now
	}

	return &Store{
		db:  db,
		dsn: dsn,
		now: now,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ? AND expires_at > ?`,
		key, s.now().UnixMilli(),
	).Scan(&value)
	if err != nil {
		return "", mapNotFound(err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return store.ErrInvalidTTL
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, s.now().Add(ttl).UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite: delete %q: %w", key, err)
	}
	return nil
}

// CompareAndDelete relies on the single DELETE statement being atomic; the
// affected row count tells the winner apart from everyone else.
func (s *Store) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM kv WHERE key = ? AND value = ? AND expires_at > ?`,
		key, expected, s.now().UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: compare and delete %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE expires_at <= ?`, s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("sqlite: delete expired: %w", err)
	}
	return res.RowsAffected()
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
