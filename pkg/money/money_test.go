package money_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/royalton/portal/pkg/money"
)

func TestFromMajor(t *testing.T) {
	t.Parallel()

	require.Equal(t, int64(1235), money.FromMajor(12.345, "USD").Minor)
	require.Equal(t, int64(60), money.FromMajor(0.6, "USD").Minor)
	require.InDelta(t, 60.0, money.FromMajor(60, "USD").Major(), 0.0001)
}

func TestFormat(t *testing.T) {
	t.Parallel()

	t.Run("uses the dollar symbol and grouping", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "$1,234.50", money.Format(1234.5, "USD"))
	})

	t.Run("defaults to usd", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "$10.00", money.Amount{Minor: 1000}.String())
	})

	t.Run("keeps the sign", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "-$5.00", money.Format(-5, "usd"))
	})

	t.Run("unknown codes print the code", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "ZZZ 1.00", money.Amount{Currency: "ZZZ", Minor: 100}.Format(language.AmericanEnglish))
	})
}
