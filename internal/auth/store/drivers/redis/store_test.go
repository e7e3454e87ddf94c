package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/redis"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/storetest"
)

// setupRedisContainer starts redis:7-alpine and returns its URL.
func setupRedisContainer(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in -short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
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

	mappedPort, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s/0", host, mappedPort.Port())
}

func TestStore(t *testing.T) {
	url := setupRedisContainer(t)

	var n int
	storetest.Run(t, func(t *testing.T) storetest.Harness {
		// A fresh prefix per subtest keeps them isolated on one server.
		n++
		s, err := redis.NewStore(url, fmt.Sprintf("test%d:", n))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })

		return storetest.Harness{Store: s, NativeExpiry: true}
	})
}

func TestNewStoreRejectsBadURL(t *testing.T) {
	_, err := redis.NewStore("not a url", "")
	require.Error(t, err)
}
