package middlewares_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/royalton/portal/internal"
	"github.com/royalton/portal/middlewares"
	"github.com/royalton/portal/pkg/cache"
	"github.com/royalton/portal/pkg/htmx"
	"github.com/royalton/portal/pkg/logger"
	"github.com/royalton/portal/pkg/session"
	"github.com/royalton/portal/pkg/toast"
)

type page string

func (p page) Render(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, string(p))
	return err
}

type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

func errorPage(code int, msg string) internal.Component {
	return page("error page: " + msg)
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithMiddleware(middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "generated" }))),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", func(c internal.Context) error {
				return c.String(http.StatusOK, middlewares.GetRequestID(c))
			})
		})),
	)

	t.Run("generates an id", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, "generated", rec.Body.String())
		require.Equal(t, "generated", rec.Header().Get(middlewares.RequestIDHeader))
	})

	t.Run("reuses an upstream id", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "upstream-1")
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		require.Equal(t, "upstream-1", rec.Body.String())
	})

	t.Run("rejects oversized ids", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middlewares.RequestIDHeader, strings.Repeat("x", 200))
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		require.Equal(t, "generated", rec.Body.String())
	})
}

func TestRecoverAndLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, logger.Config{Level: "debug", Format: "json"}, middlewares.RequestIDExtractor())

	var handled error
	app := internal.New(
		internal.WithLogger(log),
		internal.WithMiddleware(middlewares.RequestID(), middlewares.Logger(), middlewares.Recover()),
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			handled = err
			return c.NoContent(http.StatusInternalServerError)
		}),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/panic", func(internal.Context) error { panic("kaboom") })
		})),
	)

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(middlewares.RequestIDHeader, "req-7")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var pe *middlewares.PanicError
	require.ErrorAs(t, handled, &pe)
	require.Equal(t, "kaboom", pe.Value)
	require.NotEmpty(t, pe.Stack)

	out := buf.String()
	require.Contains(t, out, `"msg":"panic recovered"`)
	require.Contains(t, out, `"msg":"request"`)
	require.Contains(t, out, `"status":500`)
	require.Contains(t, out, `"request_id":"req-7"`)
}

func TestHandleErrors(t *testing.T) {
	t.Parallel()

	hub := toast.NewHub(0)
	t.Cleanup(hub.Close)

	app := internal.New(
		internal.WithSession(session.NewCacheStore(cache.NewMemory[session.Session](), cache.NewMemory[[]string]())),
		internal.WithToasts(hub, func(msgs []toast.Message) internal.Component {
			var b strings.Builder
			for _, m := range msgs {
				b.WriteString("[" + string(m.Category) + "] " + m.Text)
			}
			return page(`<div id="toasts">` + b.String() + `</div>`)
		}),
		internal.WithErrorHandler(middlewares.HandleErrors(errorPage)),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/quote", func(internal.Context) error {
				return internal.ErrUnprocessable("Weight must be greater than zero")
			})
			r.GET("/broken", func(internal.Context) error {
				return errors.New("pq: relation does not exist")
			})
		})),
	)

	t.Run("full page load renders the error page", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quote", nil))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Equal(t, "error page: Weight must be greater than zero", rec.Body.String())
	})

	t.Run("internal details stay hidden", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/broken", nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.NotContains(t, rec.Body.String(), "relation")
	})

	t.Run("htmx request gets an error toast", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/quote", nil)
		req.Header.Set(htmx.HeaderRequest, "true")
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, string(htmx.SwapNone), rec.Header().Get(htmx.HeaderReswap))
		require.Equal(t, `<div id="toasts">[error] Weight must be greater than zero</div>`, rec.Body.String())
	})
}

func TestLoggerQuietPaths(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, logger.Config{Level: "info", Format: "json"})
	app := internal.New(
		internal.WithLogger(log),
		internal.WithMiddleware(middlewares.Logger()),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/health/live", func(c internal.Context) error { return c.NoContent(http.StatusOK) })
		})),
	)
	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Empty(t, buf.String())
}
