package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/royalton/portal"
	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/internal/store"
	"github.com/royalton/portal/pkg/toast"
)

// SignInPath is where RequireAuth sends anonymous visitors.
const SignInPath = "/signin"

type userKey struct{}

// Middleware loads the signed-in user for every request. Sessions that
// point at a deleted or disabled account are treated as anonymous.
func (s *Service) Middleware() portal.Middleware {
	return func(next portal.HandlerFunc) portal.HandlerFunc {
		return func(c portal.Context) error {
			userID := c.UserID()
			if userID == "" {
				return next(c)
			}
			u, err := s.store.UserByID(c, userID)
			switch {
			case err == nil && !u.Disabled:
				c.Set(userKey{}, &u)
			case err == nil, errors.Is(err, store.ErrNotFound):
				if derr := c.DestroySession(); derr != nil {
					c.LogWarn("drop stale session", slog.Any("error", derr))
				}
			default:
				return err
			}
			return next(c)
		}
	}
}

// CurrentUser returns the signed-in user carried by ctx. It accepts a
// portal.Context or the context a template renders with.
func CurrentUser(ctx context.Context) (*shipping.User, bool) {
	u, ok := ctx.Value(userKey{}).(*shipping.User)
	return u, ok && u != nil
}

// IsAdmin reports whether the visitor is a signed-in admin.
func IsAdmin(ctx context.Context) bool {
	u, ok := CurrentUser(ctx)
	return ok && u.IsAdmin()
}

// RequireAuth redirects anonymous visitors to the sign-in page, keeping
// the requested path so they come back after signing in.
func RequireAuth() portal.Middleware {
	return func(next portal.HandlerFunc) portal.HandlerFunc {
		return func(c portal.Context) error {
			if _, ok := CurrentUser(c); ok {
				return next(c)
			}
			notify(c, "Please sign in to continue", toast.Info)
			return c.Redirect(SignInPath + "?next=" + url.QueryEscape(c.Request().URL.RequestURI()))
		}
	}
}

// RequireAdmin lets only admins through; everyone else goes home.
func RequireAdmin() portal.Middleware {
	return func(next portal.HandlerFunc) portal.HandlerFunc {
		return func(c portal.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				notify(c, "Please sign in to continue", toast.Info)
				return c.Redirect(SignInPath)
			}
			if !u.IsAdmin() {
				notify(c, "Admin access required", toast.Error)
				return c.Redirect("/")
			}
			return next(c)
		}
	}
}

// SafeNext returns next when it is a local path, otherwise fallback.
func SafeNext(next, fallback string) string {
	u, err := url.Parse(next)
	if next == "" || err != nil || u.IsAbs() || u.Host != "" || len(u.Path) == 0 || u.Path[0] != '/' {
		return fallback
	}
	if len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return fallback
	}
	return next
}

// Landing is the page a user sees right after signing in.
func Landing(u shipping.User) string {
	if u.IsAdmin() {
		return "/admin"
	}
	return "/dashboard"
}

func notify(c portal.Context, text string, cat toast.Category) {
	if _, err := c.Toast(text, cat); err != nil && !errors.Is(err, portal.ErrToastsNotConfigured) {
		c.LogWarn("toast not published", slog.Any("error", err))
	}
}
