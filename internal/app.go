package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/royalton/portal/pkg/cookie"
	"github.com/royalton/portal/pkg/health"
	"github.com/royalton/portal/pkg/job"
	"github.com/royalton/portal/pkg/logger"
	"github.com/royalton/portal/pkg/storage"
	"github.com/royalton/portal/pkg/toast"
)

const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second

	// DefaultNavigationTarget is the element htmx navigation swaps into.
	DefaultNavigationTarget = "#main"
)

// App is the HTTP application: routes, middleware and the per-request
// services exposed through Context.
type App struct {
	router           chi.Router
	errorHandler     ErrorHandler
	notFound         HandlerFunc
	methodNotAllowed HandlerFunc
	health           *healthConfig
	logger           *slog.Logger
	cookies          *cookie.Manager
	sessions         *SessionManager
	toasts           *toast.Hub
	toastRegion      func([]toast.Message) Component
	jobs             job.Enqueuer
	worker           *job.Manager
	storage          storage.Storage
	navTarget        string
	middlewares      []Middleware
	handlers         []Handler
	statics          []staticRoute
}

type staticRoute struct {
	handler http.Handler
	pattern string
}

// New builds an App. Routes are registered immediately, so every option
// must be passed here.
func New(opts ...Option) *App {
	plain, _ := cookie.New("")
	a := &App{
		router:    chi.NewRouter(),
		logger:    logger.NewNope(),
		cookies:   plain,
		navTarget: DefaultNavigationTarget,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.setupRoutes()
	return a
}

// Router exposes the underlying chi router, mainly for tests.
func (a *App) Router() chi.Router { return a.router }

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run serves on addr until the process receives SIGINT or SIGTERM, then
// drains in-flight requests and runs the shutdown hooks. A job worker
// configured with WithJobWorker starts before the listener and stops after it.
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := newRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}
	if a.worker != nil {
		// The worker stops before user hooks close the pool it runs on.
		cfg.startupHooks = append([]func(context.Context) error{a.worker.StartFunc()}, cfg.startupHooks...)
		cfg.shutdownHooks = append([]func(context.Context) error{a.worker.Shutdown()}, cfg.shutdownHooks...)
	}
	if a.toasts != nil {
		hub := a.toasts
		cfg.shutdownHooks = append(cfg.shutdownHooks, func(context.Context) error {
			hub.Close()
			return nil
		})
	}
	cfg.handler = a
	cfg.address = addr
	return runServer(cfg)
}

func (a *App) setupRoutes() {
	if a.notFound != nil {
		a.router.NotFound(a.serve(a.notFound))
	}
	if a.methodNotAllowed != nil {
		a.router.MethodNotAllowed(a.serve(a.methodNotAllowed))
	}
	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}
	for _, sr := range a.statics {
		a.router.Mount(sr.pattern, sr.handler)
	}
	if a.health != nil {
		opts := []health.Option{health.WithLogger(a.logger)}
		a.router.Get(a.health.livenessPath, health.LivenessHandler())
		a.router.Get(a.health.readinessPath, health.ReadinessHandler(a.health.checks, opts...))
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

func (a *App) handleError(c Context, err error) {
	if c.Written() {
		c.LogError("error after response was written", slog.Any("error", err))
		return
	}
	if a.errorHandler != nil {
		if herr := a.errorHandler(c, err); herr != nil {
			c.LogError("error handler failed", slog.Any("error", herr))
		}
		return
	}
	if he, ok := AsHTTPError(err); ok {
		http.Error(c.Response(), he.Message, he.Code)
		return
	}
	c.LogError("unhandled error", slog.Any("error", err))
	http.Error(c.Response(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// HealthOption configures the health endpoints.
type HealthOption func(*healthConfig)

func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named dependency check to the readiness probe.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if fn != nil {
			c.checks[name] = fn
		}
	}
}
