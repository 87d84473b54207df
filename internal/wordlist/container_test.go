package wordlist

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Container-backed store tests run only when SCANNER_CONTAINER_TESTS=1 and
// a Docker daemon is available.
func requireContainers(t *testing.T) {
	t.Helper()
	if os.Getenv("SCANNER_CONTAINER_TESTS") != "1" {
		t.Skip("set SCANNER_CONTAINER_TESTS=1 to run container-backed store tests")
	}
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Load(ctx, SuspiciousKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, SuspiciousKey, []string{"whey", "casein"}))
	require.NoError(t, store.Save(ctx, SuspiciousKey, []string{"whey"}))

	phrases, ok, err := store.Load(ctx, SuspiciousKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"whey"}, phrases)

	require.NoError(t, store.Clear(ctx, SuspiciousKey))
	_, ok, err = store.Load(ctx, SuspiciousKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore(t *testing.T) {
	requireContainers(t)
	ctx := context.Background()

	container, err := tcredis.Run(ctx,
		"redis:7.4-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	store, err := NewRedisStore(ctx, RedisConfig{URL: url, Prefix: "test:"})
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestSQLStore(t *testing.T) {
	requireContainers(t)
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("scanner_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://test:test@%s:%s/scanner_test?sslmode=disable", host, port.Port())

	store, err := NewSQLStore(dsn)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}
