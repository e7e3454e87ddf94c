// Package storetest holds the behavioural checks every store driver must
// pass. Driver packages call Run from their own tests.
package storetest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
)

// Harness is a driver under test. Advance moves the driver's clock forward;
// drivers that expire keys on the server clock leave it nil and the suite
// sleeps instead.
type Harness struct {
	Store   store.Store
	Advance func(d time.Duration)
	// NativeExpiry is true when the backend drops expired keys itself and
	// DeleteExpired always reports zero.
	NativeExpiry bool
}

// Clock is a manually advanced clock for drivers that take a now func.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{now: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

const shortTTL = 300 * time.Millisecond

func (h Harness) expire(d time.Duration) {
	if h.Advance != nil {
		h.Advance(d + time.Millisecond)
		return
	}
	time.Sleep(d + 200*time.Millisecond)
}

// Run executes the suite. newHarness must return a fresh, empty store for
// every call.
func Run(t *testing.T, newHarness func(t *testing.T) Harness) {
	t.Run("GetMissing", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.Store.Get(context.Background(), "nope")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("SetGetOverwrite", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()

		require.NoError(t, h.Store.Set(ctx, "k", "v1", time.Minute))
		v, err := h.Store.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "v1", v)

		require.NoError(t, h.Store.Set(ctx, "k", "v2", time.Minute))
		v, err = h.Store.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "v2", v)
	})

	t.Run("SetRejectsNonPositiveTTL", func(t *testing.T) {
		h := newHarness(t)
		require.ErrorIs(t, h.Store.Set(context.Background(), "k", "v", 0), store.ErrInvalidTTL)
		require.ErrorIs(t, h.Store.Set(context.Background(), "k", "v", -time.Second), store.ErrInvalidTTL)
	})

	t.Run("Delete", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()

		require.NoError(t, h.Store.Set(ctx, "k", "v", time.Minute))
		require.NoError(t, h.Store.Delete(ctx, "k"))
		_, err := h.Store.Get(ctx, "k")
		require.ErrorIs(t, err, store.ErrNotFound)

		// Idempotent
		require.NoError(t, h.Store.Delete(ctx, "k"))
	})

	t.Run("Expiry", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()

		require.NoError(t, h.Store.Set(ctx, "k", "v", shortTTL))
		h.expire(shortTTL)

		_, err := h.Store.Get(ctx, "k")
		require.ErrorIs(t, err, store.ErrNotFound)

		ok, err := h.Store.CompareAndDelete(ctx, "k", "v")
		require.NoError(t, err)
		require.False(t, ok, "expired keys must not be consumable")
	})

	t.Run("CompareAndDelete", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()

		require.NoError(t, h.Store.Set(ctx, "k", "secret", time.Minute))

		ok, err := h.Store.CompareAndDelete(ctx, "k", "wrong")
		require.NoError(t, err)
		require.False(t, ok)

		// Mismatch leaves the value in place
		v, err := h.Store.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "secret", v)

		ok, err = h.Store.CompareAndDelete(ctx, "k", "secret")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = h.Store.CompareAndDelete(ctx, "k", "secret")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("CompareAndDeleteConcurrent", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()
		require.NoError(t, h.Store.Set(ctx, "race", "v", time.Minute))

		const workers = 16
		var wins atomic.Int32
		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := h.Store.CompareAndDelete(ctx, "race", "v")
				if err == nil && ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		require.Equal(t, int32(1), wins.Load())
	})

	t.Run("DeleteExpired", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()

		require.NoError(t, h.Store.Set(ctx, "old", "v", shortTTL))
		require.NoError(t, h.Store.Set(ctx, "new", "v", time.Hour))
		h.expire(shortTTL)

		n, err := h.Store.DeleteExpired(ctx)
		require.NoError(t, err)
		if h.NativeExpiry {
			require.Zero(t, n)
		} else {
			require.Equal(t, int64(1), n)
		}

		v, err := h.Store.Get(ctx, "new")
		require.NoError(t, err)
		require.Equal(t, "v", v)
	})

	t.Run("Ping", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.Store.Ping(context.Background()))
	})
}
