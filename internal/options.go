package internal

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/royalton/portal/pkg/cookie"
	"github.com/royalton/portal/pkg/health"
	"github.com/royalton/portal/pkg/job"
	"github.com/royalton/portal/pkg/session"
	"github.com/royalton/portal/pkg/storage"
	"github.com/royalton/portal/pkg/toast"
)

// Option configures the App.
type Option func(*App)

// WithMiddleware appends global middleware, outermost first.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) { a.middlewares = append(a.middlewares, mw...) }
}

func WithHandlers(h ...Handler) Option {
	return func(a *App) { a.handlers = append(a.handlers, h...) }
}

// WithStatic serves fsys under pattern. Directory listings are refused.
//
//	//go:embed static
//	var assets embed.FS
//
//	portal.WithStatic("/static/", assets, "static")
func WithStatic(pattern string, fsys fs.FS, dir string) Option {
	return func(a *App) {
		sub, err := fs.Sub(fsys, dir)
		if err != nil {
			panic(err)
		}
		files := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(sub))
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			files.ServeHTTP(w, r)
		})
		a.statics = append(a.statics, staticRoute{handler: h, pattern: pattern})
	}
}

func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) { a.errorHandler = h }
}

// WithNotFound handles every path no route matches. The portal uses it for
// the navigation fallback page.
func WithNotFound(h HandlerFunc) Option {
	return func(a *App) { a.notFound = h }
}

func WithMethodNotAllowed(h HandlerFunc) Option {
	return func(a *App) { a.methodNotAllowed = h }
}

// WithHealth mounts /health/live and /health/ready.
//
//	portal.WithHealth(
//	    portal.WithReadinessCheck("db", db.Healthcheck(pool)),
//	)
func WithHealth(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  "/health/live",
			readinessPath: "/health/ready",
			checks:        health.Checks{},
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.health = cfg
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithCookies replaces the default plain-only cookie manager.
func WithCookies(m *cookie.Manager) Option {
	return func(a *App) {
		if m != nil {
			a.cookies = m
		}
	}
}

func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) { a.sessions = NewSessionManager(store, opts...) }
}

// WithToasts enables per-visitor toasts. region renders the toast container
// for out-of-band swaps; it may be nil.
func WithToasts(hub *toast.Hub, region func([]toast.Message) Component) Option {
	return func(a *App) {
		a.toasts = hub
		a.toastRegion = region
	}
}

// WithNavigationTarget changes the selector Navigate swaps into.
func WithNavigationTarget(selector string) Option {
	return func(a *App) {
		if selector != "" {
			a.navTarget = selector
		}
	}
}

// WithJobs lets handlers enqueue jobs without working them.
func WithJobs(e job.Enqueuer) Option {
	return func(a *App) { a.jobs = e }
}

// WithJobWorker enqueues through m and also works jobs for the lifetime of Run.
func WithJobWorker(m *job.Manager) Option {
	return func(a *App) {
		if m != nil {
			a.jobs = m
			a.worker = m
		}
	}
}

func WithStorage(s storage.Storage) Option {
	return func(a *App) { a.storage = s }
}
