package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("store: not found")

// Store is a string key/value store with per-key expiry. Concrete drivers
// (memory, sqlite, redis, postgres) implement this. Refresh records and
// temporary tokens are the only things kept here, so every value is short
// lived and single-use is enforced with CompareAndDelete rather than
// transactions.
type Store interface {
	// Get returns the live value for key, or ErrNotFound when the key is
	// absent or expired.
	Get(ctx context.Context, key string) (string, error)

	// Set writes value under key, replacing any previous value. A ttl <= 0
	// is rejected by every driver.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// CompareAndDelete removes key only if it is live and currently holds
	// expected. It reports whether this call removed it. Under concurrent
	// callers at most one observes true for a given write.
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)

	// DeleteExpired purges expired rows for drivers that do not expire
	// them natively. Returns the number of rows removed.
	DeleteExpired(ctx context.Context) (int64, error)

	// ApplyMigrations prepares the schema. A no-op for schemaless drivers.
	ApplyMigrations(ctx context.Context) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}

// ErrInvalidTTL is returned by Set when ttl is not positive.
var ErrInvalidTTL = errors.New("store: ttl must be positive")
