// Package memory is a process-local store driver. Suitable for tests and
// single-instance deployments where losing refresh records on restart is
// acceptable.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
)

type entry struct {
	value     string
	expiresAt time.Time
}

type Store struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

var _ store.Store = (*Store)(nil)

// NewStore creates an empty store. now may be nil, in which case time.Now is
// used.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		data: make(map[string]entry),
		now:  now,
	}
}

// live returns the entry for key if present and unexpired. An entry is gone
// at exactly its expiry. Caller holds mu.
func (s *Store) live(key string) (entry, bool) {
	e, ok := s.data[key]
	if !ok {
		return entry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.data, key)
		return entry{}, false
	}
	return e, true
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(key)
	if !ok {
		return "", store.ErrNotFound
	}
	return e.value, nil
}

func (s *Store) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return store.ErrInvalidTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

func (s *Store) CompareAndDelete(_ context.Context, key, expected string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(key)
	if !ok || e.value != expected {
		return false, nil
	}
	delete(s.data, key)
	return true, nil
}

func (s *Store) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for k, e := range s.data {
		if !now.Before(e.expiresAt) {
			delete(s.data, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored entries, including expired ones that
// have not been purged yet.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func (s *Store) ApplyMigrations(context.Context) error { return nil }
func (s *Store) Ping(context.Context) error            { return nil }
func (s *Store) Close() error                          { return nil }
