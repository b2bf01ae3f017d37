package internal

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/royalton/portal/pkg/logger"
)

// RunOption configures App.Run.
type RunOption func(*runConfig)

type runConfig struct {
	baseCtx         context.Context
	handler         http.Handler
	logger          *slog.Logger
	listener        net.Listener
	address         string
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration
}

func newRunConfig(opts ...RunOption) *runConfig {
	cfg := &runConfig{shutdownTimeout: defaultShutdownTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func WithShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// WithStartupHook runs fn before the listener accepts connections. A failing
// hook aborts Run.
func WithStartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// WithShutdownHook runs fn after the HTTP server has drained.
func WithShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// WithBaseContext makes Run stop when ctx is cancelled, in addition to signals.
func WithBaseContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}

// WithListener serves on ln instead of listening on the address.
func WithListener(ln net.Listener) RunOption {
	return func(c *runConfig) { c.listener = ln }
}

func WithRunLogger(l *slog.Logger) RunOption {
	return func(c *runConfig) { c.logger = l }
}

func runServer(cfg *runConfig) error {
	if cfg.address == "" {
		cfg.address = ":8080"
	}
	log := cfg.logger
	if log == nil {
		log = logger.NewNope()
	}
	base := cfg.baseCtx
	if base == nil {
		base = context.Background()
	}

	ctx, stop := signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Startup hooks may keep their context for the process lifetime; they
	// are stopped through shutdown hooks rather than by cancellation.
	hookCtx := context.WithoutCancel(ctx)
	for _, hook := range cfg.startupHooks {
		if err := hook(hookCtx); err != nil {
			return err
		}
	}

	ln := cfg.listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", cfg.address); err != nil {
			return errors.Join(err, shutdown(cfg, log, nil))
		}
	}

	server := &http.Server{
		Handler:           cfg.handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Join(err, shutdown(cfg, log, nil))
		}
	case <-ctx.Done():
	}

	return shutdown(cfg, log, server)
}

func shutdown(cfg *runConfig, log *slog.Logger, server *http.Server) error {
	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()

	var errs []error
	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	for _, hook := range cfg.shutdownHooks {
		if err := hook(ctx); err != nil {
			log.Error("shutdown hook failed", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	log.Info("shutdown completed")
	return nil
}
