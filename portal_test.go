package portal_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/royalton/portal"
	"github.com/royalton/portal/pkg/cache"
	"github.com/royalton/portal/pkg/session"
	"github.com/royalton/portal/pkg/toast"
)

type routes func(r portal.Router)

func (f routes) Routes(r portal.Router) { f(r) }

type region struct{ n int }

func (r region) Render(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, `<div id="toasts">`+strconv.Itoa(r.n)+`</div>`)
	return err
}

type body string

func (b body) Render(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, string(b))
	return err
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	app := portal.New(portal.WithHandlers(routes(func(r portal.Router) {
		r.POST("/prefs", func(c portal.Context) error {
			return c.String(http.StatusOK, strconv.FormatBool(portal.FormBool(c, "notify")))
		})
		r.GET("/page", func(c portal.Context) error {
			return c.String(http.StatusOK, strconv.Itoa(portal.QueryInt(c, "n", 1)))
		})
	})))

	for _, tc := range []struct {
		value string
		want  string
	}{
		{"on", "true"},
		{"yes", "true"},
		{"1", "true"},
		{"off", "false"},
		{"", "false"},
	} {
		req := httptest.NewRequest(http.MethodPost, "/prefs", strings.NewReader("notify="+tc.value))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		require.Equal(t, tc.want, rec.Body.String(), "notify=%q", tc.value)
	}

	for query, want := range map[string]string{"?n=7": "7", "?n=x": "1", "": "1"} {
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/page"+query, nil))
		require.Equal(t, want, rec.Body.String())
	}
}

func TestToastsInTemplates(t *testing.T) {
	t.Parallel()

	hub := toast.NewHub(0)
	t.Cleanup(hub.Close)
	sessions := session.NewCacheStore(cache.NewMemory[session.Session](), cache.NewMemory[[]string]())

	app := portal.New(
		portal.WithSession(sessions),
		portal.WithToasts(hub, func(m []toast.Message) portal.Component { return region{n: len(m)} }),
		portal.WithHandlers(routes(func(r portal.Router) {
			r.POST("/save", func(c portal.Context) error {
				if _, err := c.Toast("Saved", toast.Success); err != nil {
					return err
				}
				return c.Render(http.StatusOK, body("<p>ok</p>"))
			})
			r.GET("/where", func(c portal.Context) error {
				return c.String(http.StatusOK, portal.CurrentPath(c)+" "+strconv.Itoa(len(portal.ActiveToasts(c))))
			})
		})),
	)

	req := httptest.NewRequest(http.MethodPost, "/save", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `<p>ok</p><div id="toasts">1</div>`, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	req = httptest.NewRequest(http.MethodGet, "/where", nil)
	req.AddCookie(cookies[len(cookies)-1])
	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	require.Equal(t, "/where 1", rec.Body.String())

	require.Empty(t, portal.ActiveToasts(context.Background()))
	require.Empty(t, portal.CurrentPath(context.Background()))
}

func TestErrorConstructors(t *testing.T) {
	t.Parallel()

	err := portal.ErrNotImplemented("Online payments are not available yet")
	httpErr, ok := portal.AsHTTPError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusNotImplemented, httpErr.Code)
	require.Equal(t, "Online payments are not available yet", httpErr.Message)
}
