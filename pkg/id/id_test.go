package id_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/royalton/portal/pkg/id"
)

func TestULID(t *testing.T) {
	t.Parallel()

	t.Run("encodes the timestamp", func(t *testing.T) {
		t.Parallel()

		at := time.UnixMilli(1_700_000_000_123)
		u := id.ULIDAt(at)
		require.Len(t, u, 26)

		got, ok := id.Time(u)
		require.True(t, ok)
		require.True(t, at.Equal(got))
	})

	t.Run("sorts by time", func(t *testing.T) {
		t.Parallel()

		a := id.ULIDAt(time.UnixMilli(1_000))
		b := id.ULIDAt(time.UnixMilli(2_000))
		require.Less(t, a, b)
	})

	t.Run("uses the crockford alphabet", func(t *testing.T) {
		t.Parallel()

		u := id.NewULID()
		require.False(t, strings.ContainsAny(u, "ILOU"))
		require.NotEqual(t, u, id.NewULID())
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		t.Parallel()

		_, ok := id.Time("short")
		require.False(t, ok)
		_, ok = id.Time(strings.Repeat("!", 26))
		require.False(t, ok)
	})
}
