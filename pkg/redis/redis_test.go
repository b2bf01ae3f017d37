package redis_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/royalton/portal/pkg/redis"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("requires a url", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Open(context.Background(), redis.Config{})
		require.ErrorIs(t, err, redis.ErrEmptyURL)
		require.False(t, redis.Config{}.Enabled())
	})

	t.Run("rejects other schemes", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Open(context.Background(), redis.Config{URL: "http://localhost:6379"})
		require.ErrorIs(t, err, redis.ErrParseURL)
	})

	t.Run("connects to a live server", func(t *testing.T) {
		t.Parallel()

		url := os.Getenv("TEST_REDIS_URL")
		if url == "" {
			t.Skip("TEST_REDIS_URL not set")
		}
		client, err := redis.Open(context.Background(), redis.Config{URL: url, RetryAttempts: 1})
		require.NoError(t, err)
		require.NoError(t, redis.Healthcheck(client)(context.Background()))
		require.NoError(t, redis.Shutdown(client)(context.Background()))
	})
}
