package portal

import (
	"context"
	"io/fs"
	"log/slog"
	"net"
	"time"

	"github.com/royalton/portal/internal"
	"github.com/royalton/portal/pkg/cookie"
	"github.com/royalton/portal/pkg/health"
	"github.com/royalton/portal/pkg/job"
	"github.com/royalton/portal/pkg/session"
	"github.com/royalton/portal/pkg/storage"
	"github.com/royalton/portal/pkg/toast"
)

type (
	// App is the HTTP application.
	App = internal.App

	// Router is what handlers use to declare routes.
	Router = internal.Router

	// Context wraps one request.
	Context = internal.Context

	Handler      = internal.Handler
	HandlerFunc  = internal.HandlerFunc
	Middleware   = internal.Middleware
	ErrorHandler = internal.ErrorHandler

	Option        = internal.Option
	RunOption     = internal.RunOption
	HealthOption  = internal.HealthOption
	SessionOption = internal.SessionOption

	// Component is satisfied by templ.Component.
	Component = internal.Component

	ResponseWriter = internal.ResponseWriter

	// HTTPError carries a status code and a user-facing message.
	HTTPError       = internal.HTTPError
	HTTPErrorOption = internal.HTTPErrorOption
)

// DefaultNavigationTarget is the element Navigate swaps into.
const DefaultNavigationTarget = internal.DefaultNavigationTarget

// ErrToastsNotConfigured is returned by toast helpers without WithToasts.
var ErrToastsNotConfigured = internal.ErrToastsNotConfigured

// New builds the application.
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// FromContext returns the request Context carried by ctx, as seen from
// inside a template.
func FromContext(ctx context.Context) (Context, bool) {
	return internal.FromContext(ctx)
}

// ActiveToasts lists the current visitor's toasts from inside a template.
func ActiveToasts(ctx context.Context) []toast.Message {
	c, ok := internal.FromContext(ctx)
	if !ok {
		return nil
	}
	return c.ActiveToasts()
}

// CurrentPath returns the request path from inside a template, or "".
func CurrentPath(ctx context.Context) string {
	c, ok := internal.FromContext(ctx)
	if !ok {
		return ""
	}
	return c.Request().URL.Path
}

// ContextValue returns a value stored with Context.Set, or the zero T.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

func QueryInt(c Context, name string, def int) int { return internal.QueryInt(c, name, def) }

func FormBool(c Context, name string) bool { return internal.FormBool(c, name) }

func WithMiddleware(mw ...Middleware) Option { return internal.WithMiddleware(mw...) }

func WithHandlers(h ...Handler) Option { return internal.WithHandlers(h...) }

// WithStatic serves the dir subtree of fsys under pattern.
func WithStatic(pattern string, fsys fs.FS, dir string) Option {
	return internal.WithStatic(pattern, fsys, dir)
}

func WithErrorHandler(h ErrorHandler) Option { return internal.WithErrorHandler(h) }

// WithNotFound handles paths no route matches.
func WithNotFound(h HandlerFunc) Option { return internal.WithNotFound(h) }

func WithMethodNotAllowed(h HandlerFunc) Option { return internal.WithMethodNotAllowed(h) }

// WithHealth mounts the liveness and readiness endpoints.
func WithHealth(opts ...HealthOption) Option { return internal.WithHealth(opts...) }

func WithLivenessPath(path string) HealthOption { return internal.WithLivenessPath(path) }

func WithReadinessPath(path string) HealthOption { return internal.WithReadinessPath(path) }

func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

func WithLogger(l *slog.Logger) Option { return internal.WithLogger(l) }

func WithCookies(m *cookie.Manager) Option { return internal.WithCookies(m) }

func WithSession(store session.Store, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

func WithSessionCookieName(name string) SessionOption { return internal.WithSessionCookieName(name) }

func WithSessionTTL(ttl time.Duration) SessionOption { return internal.WithSessionTTL(ttl) }

func WithSessionDomain(domain string) SessionOption { return internal.WithSessionDomain(domain) }

func WithSessionSecure(secure bool) SessionOption { return internal.WithSessionSecure(secure) }

// WithToasts enables per-visitor toasts; region renders the #toasts container.
func WithToasts(hub *toast.Hub, region func([]toast.Message) Component) Option {
	return internal.WithToasts(hub, region)
}

func WithNavigationTarget(selector string) Option { return internal.WithNavigationTarget(selector) }

// WithJobs lets handlers enqueue background jobs.
func WithJobs(e job.Enqueuer) Option { return internal.WithJobs(e) }

// WithJobWorker also works jobs while the server runs.
func WithJobWorker(m *job.Manager) Option { return internal.WithJobWorker(m) }

func WithStorage(s storage.Storage) Option { return internal.WithStorage(s) }

func WithShutdownTimeout(d time.Duration) RunOption { return internal.WithShutdownTimeout(d) }

func WithStartupHook(fn func(context.Context) error) RunOption {
	return internal.WithStartupHook(fn)
}

func WithShutdownHook(fn func(context.Context) error) RunOption {
	return internal.WithShutdownHook(fn)
}

func WithBaseContext(ctx context.Context) RunOption { return internal.WithBaseContext(ctx) }

func WithListener(ln net.Listener) RunOption { return internal.WithListener(ln) }

func WithRunLogger(l *slog.Logger) RunOption { return internal.WithRunLogger(l) }

// HTTP error constructors.
var (
	NewHTTPError          = internal.NewHTTPError
	ErrBadRequest         = internal.ErrBadRequest
	ErrUnauthorized       = internal.ErrUnauthorized
	ErrForbidden          = internal.ErrForbidden
	ErrNotFound           = internal.ErrNotFound
	ErrConflict           = internal.ErrConflict
	ErrUnprocessable      = internal.ErrUnprocessable
	ErrInternal           = internal.ErrInternal
	ErrNotImplemented     = internal.ErrNotImplemented
	ErrServiceUnavailable = internal.ErrServiceUnavailable
	AsHTTPError           = internal.AsHTTPError
	WithDetail            = internal.WithDetail
	WithRequestID         = internal.WithRequestID
	WithError             = internal.WithError
)
