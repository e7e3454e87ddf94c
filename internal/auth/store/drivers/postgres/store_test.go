package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/storetest"
)

// setupPostgresContainer starts postgres:16-alpine and returns its DSN.
func setupPostgresContainer(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in -short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "tokenauth",
			"POSTGRES_PASSWORD": "tokenauth",
			"POSTGRES_DB":       "tokenauth",
		},
		// Postgres logs readiness twice: once for the init server, once
		// for the real one.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("container provider unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("postgres://tokenauth:tokenauth@%s:%s/tokenauth?sslmode=disable", host, mappedPort.Port())
}

func TestStore(t *testing.T) {
	dsn := setupPostgresContainer(t)
	ctx := context.Background()

	storetest.Run(t, func(t *testing.T) storetest.Harness {
		clock := storetest.NewClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

		pool, err := postgres.OpenPool(ctx, dsn)
		require.NoError(t, err)

		s := postgres.NewStoreFromPool(pool, clock.Now)
		t.Cleanup(func() { _ = s.Close() })

		require.NoError(t, s.ApplyMigrations(ctx))

		// Subtests share one database, so start each from an empty table.
		_, err = pool.Exec(ctx, `TRUNCATE kv`)
		require.NoError(t, err)

		return storetest.Harness{Store: s, Advance: clock.Advance}
	})
}
