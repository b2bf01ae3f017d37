package navigation_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/royalton/portal/pkg/navigation"
)

func TestHistory_Push(t *testing.T) {
	t.Parallel()

	t.Run("current location round trips target", func(t *testing.T) {
		t.Parallel()

		h := navigation.NewHistory("/")
		for _, target := range []string{"/track", "/track?number=TXP42", "/admin?tab=users&q=a%20b"} {
			h.Push(target)
			require.Equal(t, target, h.Current().String())
		}
	})

	t.Run("same path still adds entry", func(t *testing.T) {
		t.Parallel()

		h := navigation.NewHistory("/")
		h.Push("/track")
		h.Push("/track")

		require.Equal(t, 3, h.Len())
	})

	t.Run("observers see new location", func(t *testing.T) {
		t.Parallel()

		h := navigation.NewHistory("/")
		var seen []string
		h.Subscribe(func(loc navigation.Location) {
			require.Equal(t, loc, h.Current())
			seen = append(seen, loc.String())
		})

		h.Push("/ship")
		h.Push("/quote")
		require.Equal(t, []string{"/ship", "/quote"}, seen)
	})

	t.Run("discards forward entries", func(t *testing.T) {
		t.Parallel()

		h := navigation.NewHistory("/")
		h.Push("/a")
		h.Push("/b")
		require.True(t, h.Back())
		h.Push("/c")

		require.Equal(t, []navigation.Location{{Path: "/"}, {Path: "/a"}, {Path: "/c"}}, h.Entries())
		require.False(t, h.Forward())
	})
}

func TestHistory_BackForward(t *testing.T) {
	t.Parallel()

	t.Run("back returns to previous location", func(t *testing.T) {
		t.Parallel()

		h := navigation.NewHistory("/")
		h.Push("/track")
		h.Push("/quote")

		require.True(t, h.Back())
		require.Equal(t, "/track", h.Current().Path)
		require.True(t, h.Forward())
		require.Equal(t, "/quote", h.Current().Path)
	})

	t.Run("never pushes", func(t *testing.T) {
		t.Parallel()

		h := navigation.NewHistory("/")
		h.Push("/a")
		h.Back()
		h.Forward()
		h.Back()

		require.Equal(t, 2, h.Len())
	})

	t.Run("edges do not notify", func(t *testing.T) {
		t.Parallel()

		h := navigation.NewHistory("/")
		calls := 0
		h.Subscribe(func(navigation.Location) { calls++ })

		require.False(t, h.Back())
		require.False(t, h.Forward())
		require.Zero(t, calls)
	})

	t.Run("replace keeps length", func(t *testing.T) {
		t.Parallel()

		h := navigation.NewHistory("/")
		h.Push("/ship")
		h.Replace("/signin")

		require.Equal(t, 2, h.Len())
		require.Equal(t, "/signin", h.Current().Path)
		require.True(t, h.Back())
		require.Equal(t, "/", h.Current().Path)
	})
}

func TestHistory_Subscribe(t *testing.T) {
	t.Parallel()

	t.Run("unsubscribe stops notifications", func(t *testing.T) {
		t.Parallel()

		h := navigation.NewHistory("/")
		calls := 0
		unsubscribe := h.Subscribe(func(navigation.Location) { calls++ })

		h.Push("/a")
		unsubscribe()
		unsubscribe()
		h.Push("/b")

		require.Equal(t, 1, calls)
	})

	t.Run("observers run in registration order", func(t *testing.T) {
		t.Parallel()

		h := navigation.NewHistory("/")
		var order []int
		for i := range 5 {
			h.Subscribe(func(navigation.Location) { order = append(order, i) })
		}

		h.Push("/x")
		require.Equal(t, []int{0, 1, 2, 3, 4}, order)
	})

	t.Run("nil observer is ignored", func(t *testing.T) {
		t.Parallel()

		h := navigation.NewHistory("/")
		h.Subscribe(nil)()
		h.Push("/x")
	})

	t.Run("concurrent pushes are serialized", func(t *testing.T) {
		t.Parallel()

		h := navigation.NewHistory("/")
		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.Push("/p")
			}()
		}
		wg.Wait()

		require.Equal(t, 51, h.Len())
	})
}
