package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/royalton/portal/internal"
)

func TestResponseWriter(t *testing.T) {
	t.Parallel()

	t.Run("hooks run once before the header", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		w := internal.NewResponseWriter(rec, false)
		calls := 0
		w.OnBeforeWrite(func() {
			calls++
			w.Header().Set("X-Hook", "ran")
		})

		_, err := w.Write([]byte("a"))
		require.NoError(t, err)
		_, err = w.Write([]byte("b"))
		require.NoError(t, err)
		w.WriteHeader(http.StatusTeapot)

		require.Equal(t, 1, calls)
		require.Equal(t, "ran", rec.Header().Get("X-Hook"))
		require.Equal(t, http.StatusOK, rec.Code)
		require.EqualValues(t, 2, w.Size())
	})

	t.Run("htmx responses are always 200 on the wire", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		w := internal.NewResponseWriter(rec, true)
		w.WriteHeader(http.StatusUnprocessableEntity)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, http.StatusUnprocessableEntity, w.Status())
		require.True(t, w.Written())
	})

	t.Run("hijack needs a hijacker", func(t *testing.T) {
		t.Parallel()
		w := internal.NewResponseWriter(httptest.NewRecorder(), false)
		_, _, err := w.Hijack()
		require.ErrorIs(t, err, http.ErrNotSupported)
		require.False(t, w.Written())
	})
}

func TestHTTPError(t *testing.T) {
	t.Parallel()

	cause := http.ErrNoCookie
	err := internal.ErrConflict("email already registered", internal.WithError(cause), internal.WithDetail("sign in instead"))

	require.Equal(t, "email already registered", err.Error())
	require.Equal(t, http.StatusConflict, err.Code)
	require.Equal(t, "Conflict", err.StatusText())
	require.ErrorIs(t, err, cause)

	he, ok := internal.AsHTTPError(err)
	require.True(t, ok)
	require.Equal(t, "sign in instead", he.Detail)

	_, ok = internal.AsHTTPError(cause)
	require.False(t, ok)
}
