package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/royalton/portal"
	"github.com/royalton/portal/internal/auth"
	"github.com/royalton/portal/pkg/cache"
	"github.com/royalton/portal/pkg/session"
)

type routes func(r portal.Router)

func (f routes) Routes(r portal.Router) { f(r) }

func newApp(svc *auth.Service) *portal.App {
	sessions := session.NewCacheStore(cache.NewMemory[session.Session](), cache.NewMemory[[]string]())
	return portal.New(
		portal.WithSession(sessions),
		portal.WithMiddleware(svc.Middleware()),
		portal.WithHandlers(routes(func(r portal.Router) {
			r.POST("/login/{id}", func(c portal.Context) error {
				if err := c.AuthenticateSession(c.Param("id")); err != nil {
					return err
				}
				return c.NoContent(http.StatusNoContent)
			})
			r.GET("/dashboard", func(c portal.Context) error {
				u, _ := auth.CurrentUser(c)
				return c.String(http.StatusOK, u.Email)
			}, auth.RequireAuth())
			r.GET("/admin", func(c portal.Context) error {
				return c.String(http.StatusOK, "admin")
			}, auth.RequireAdmin())
		})),
	)
}

func login(t *testing.T, app *portal.App, userID string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login/"+userID, nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[len(cookies)-1]
}

func get(app *portal.App, path string, sid *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sid != nil {
		req.AddCookie(sid)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t)
	app := newApp(svc)

	t.Run("anonymous visitors go to sign in", func(t *testing.T) {
		rec := get(app, "/dashboard", nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/signin?next=%2Fdashboard", rec.Header().Get("Location"))
	})

	u, err := svc.SignUp(ctx, auth.SignUpInput{Email: "kim@example.com", Password: "secret1"})
	require.NoError(t, err)
	sid := login(t, app, u.ID)

	rec := get(app, "/dashboard", sid)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "kim@example.com", rec.Body.String())

	t.Run("non admins are sent home", func(t *testing.T) {
		rec := get(app, "/admin", sid)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/", rec.Header().Get("Location"))
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t)
	app := newApp(svc)

	u, err := svc.SignUp(ctx, auth.SignUpInput{Email: "ops@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.Promote(ctx, auth.ActorCLI, u.Email)
	require.NoError(t, err)

	rec := get(app, "/admin", login(t, app, u.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "admin", rec.Body.String())
}

func TestMiddlewareIgnoresDisabledUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t)
	app := newApp(svc)

	u, err := svc.SignUp(ctx, auth.SignUpInput{Email: "off@example.com", Password: "secret1"})
	require.NoError(t, err)
	sid := login(t, app, u.ID)

	_, err = svc.SetDisabled(ctx, auth.ActorCLI, u.ID, true)
	require.NoError(t, err)

	rec := get(app, "/dashboard", sid)
	require.Equal(t, http.StatusSeeOther, rec.Code)
}
