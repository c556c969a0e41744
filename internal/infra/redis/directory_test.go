package redis_test

import (
	"context"
	"io"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/walletclient/internal/infra/redis"
	"github.com/kislikjeka/walletclient/internal/ledger"
	"github.com/kislikjeka/walletclient/pkg/logger"
)

// setupTestCache uses DB 15 on a local Redis and skips when none is running
func setupTestCache(t *testing.T, ttl time.Duration) *redis.DirectoryCache {
	client := goredis.NewClient(&goredis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Skipping test: Redis not available")
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test database: %v", err)
	}

	return redis.NewDirectoryCache(client, ttl, logger.New("development", io.Discard))
}

func TestDirectoryCache_SetAndGet(t *testing.T) {
	c := setupTestCache(t, time.Minute)
	ctx := context.Background()

	t.Run("Miss", func(t *testing.T) {
		users, found, err := c.Get(ctx)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, users)
	})

	t.Run("Hit", func(t *testing.T) {
		in := []ledger.User{
			{ID: "u1", Email: "alice@x.io", Balance: decimal.RequireFromString("12.34")},
			{ID: "u2", Email: "bob@x.io", Balance: decimal.Zero},
		}
		require.NoError(t, c.Set(ctx, in))

		out, found, err := c.Get(ctx)
		require.NoError(t, err)
		require.True(t, found)
		require.Len(t, out, 2)
		assert.Equal(t, "alice@x.io", out[0].Email)
		assert.True(t, in[0].Balance.Equal(out[0].Balance))
		assert.Equal(t, "u2", out[1].ID)
	})

	t.Run("Invalidate", func(t *testing.T) {
		require.NoError(t, c.Invalidate(ctx))
		_, found, err := c.Get(ctx)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestDirectoryCache_TTL(t *testing.T) {
	c := setupTestCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, []ledger.User{{ID: "u1", Email: "alice@x.io"}}))

	ttl, err := c.TTL(ctx)
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 30*time.Second)
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := redis.Connect(context.Background(), "not a url", "")
	require.Error(t, err)
}
