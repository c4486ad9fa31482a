package redis

import (
	"context"
	"os"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

// InitSuite connects to the Redis instance used by integration tests. The
// address defaults to redis:6379 and may be overridden with AMPCAL_TEST_REDIS.
// Each key the suite's callers write must be namespaced with Suite.Namespace so
// concurrent runs do not collide.
func InitSuite(ctx context.Context, t *testing.T) *Suite {
	t.Helper()

	addr := os.Getenv("AMPCAL_TEST_REDIS")
	if addr == "" {
		addr = "redis:6379"
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	err := rdb.Ping(ctx).Err()
	require.Nil(t, err)

	t.Cleanup(func() { _ = rdb.Close() })

	return &Suite{Redis: rdb, Namespace: t.Name()}
}

type Suite struct {
	Redis     *redis.Client
	Namespace string
}
