package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/royalton/portal/pkg/cache"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *manualClock {
	return &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("missing key is not found", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(0))
		defer c.Close()

		_, err := c.Get(ctx, "nope")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("stores and overwrites values", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int](cache.WithCleanupInterval(0))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
		require.NoError(t, c.Set(ctx, "k", 2, time.Minute))

		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, 2, v)
		require.Equal(t, 1, c.Len())
	})

	t.Run("expires entries after ttl", func(t *testing.T) {
		t.Parallel()

		clk := newClock()
		c := cache.NewMemory[string](cache.WithCleanupInterval(0), cache.WithNow(clk.Now))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "k", "v", time.Second))
		ok, err := c.Has(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)

		clk.Advance(2 * time.Second)
		_, err = c.Get(ctx, "k")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("negative ttl never expires", func(t *testing.T) {
		t.Parallel()

		clk := newClock()
		c := cache.NewMemory[string](cache.WithCleanupInterval(0), cache.WithNow(clk.Now), cache.WithDefaultTTL(time.Second))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "forever", "v", -1))
		require.NoError(t, c.Set(ctx, "default", "v", 0))
		clk.Advance(24 * time.Hour)

		_, err := c.Get(ctx, "forever")
		require.NoError(t, err)
		_, err = c.Get(ctx, "default")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int](cache.WithCleanupInterval(0), cache.WithMaxEntries(2))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "a", 1, 0))
		require.NoError(t, c.Set(ctx, "b", 2, 0))
		_, _ = c.Get(ctx, "a")
		require.NoError(t, c.Set(ctx, "c", 3, 0))

		_, err := c.Get(ctx, "b")
		require.ErrorIs(t, err, cache.ErrNotFound)
		_, err = c.Get(ctx, "a")
		require.NoError(t, err)
	})

	t.Run("evict callback may reenter the cache", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int](cache.WithCleanupInterval(0))
		defer c.Close()

		var seen []string
		c.SetEvictCallback(func(key string, _ int) {
			seen = append(seen, key)
			_ = c.Len()
		})

		require.NoError(t, c.Set(ctx, "a", 1, 0))
		require.NoError(t, c.Set(ctx, "b", 2, 0))
		require.NoError(t, c.Delete(ctx, "a"))
		require.NoError(t, c.Clear(ctx))
		require.Equal(t, []string{"a", "b"}, seen)
	})

	t.Run("sweeper removes expired entries", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int](cache.WithCleanupInterval(5 * time.Millisecond))
		defer c.Close()

		evicted := make(chan string, 1)
		c.SetEvictCallback(func(key string, _ int) { evicted <- key })
		require.NoError(t, c.Set(ctx, "k", 1, time.Millisecond))

		select {
		case key := <-evicted:
			require.Equal(t, "k", key)
		case <-time.After(time.Second):
			t.Fatal("entry was not swept")
		}
	})

	t.Run("writes fail after close", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int](cache.WithCleanupInterval(0))
		require.NoError(t, c.Close())
		require.NoError(t, c.Close())
		require.ErrorIs(t, c.Set(ctx, "k", 1, 0), cache.ErrClosed)
		require.ErrorIs(t, c.Delete(ctx, "k"), cache.ErrClosed)
	})
}

func TestGetOrSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("loads once for concurrent misses", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(0))
		defer c.Close()

		var calls atomic.Int32
		release := make(chan struct{})
		load := func(context.Context) (string, time.Duration, error) {
			calls.Add(1)
			<-release
			return "loaded", time.Minute, nil
		}

		var wg sync.WaitGroup
		results := make([]string, 8)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := cache.GetOrSet(ctx, c, "concurrent-key", load)
				require.NoError(t, err)
				results[i] = v
			}()
		}
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		require.Equal(t, int32(1), calls.Load())
		for _, v := range results {
			require.Equal(t, "loaded", v)
		}
	})

	t.Run("does not cache errors", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(0))
		defer c.Close()

		boom := errors.New("boom")
		_, err := cache.GetOrSet(ctx, c, "error-key", func(context.Context) (string, time.Duration, error) {
			return "", 0, boom
		})
		require.ErrorIs(t, err, boom)

		ok, _ := c.Has(ctx, "error-key")
		require.False(t, ok)
	})

	t.Run("returns cached value without loading", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(0))
		defer c.Close()
		require.NoError(t, c.Set(ctx, "hit-key", "cached", 0))

		v, err := cache.GetOrSet(ctx, c, "hit-key", func(context.Context) (string, time.Duration, error) {
			t.Fatal("loader must not run")
			return "", 0, nil
		})
		require.NoError(t, err)
		require.Equal(t, "cached", v)
	})
}

func TestJSON(t *testing.T) {
	t.Parallel()

	m := cache.JSON[map[string]int]{}
	_, err := m.Unmarshal([]byte("{"))
	require.ErrorIs(t, err, cache.ErrUnmarshal)

	_, err = cache.JSON[chan int]{}.Marshal(make(chan int))
	require.ErrorIs(t, err, cache.ErrMarshal)
}
