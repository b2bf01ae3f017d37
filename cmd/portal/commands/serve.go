package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/royalton/portal"
	"github.com/royalton/portal/internal/auth"
	"github.com/royalton/portal/internal/handlers"
	"github.com/royalton/portal/internal/views"
	"github.com/royalton/portal/middlewares"
	"github.com/royalton/portal/pkg/cache"
	"github.com/royalton/portal/pkg/cookie"
	"github.com/royalton/portal/pkg/db"
	"github.com/royalton/portal/pkg/job"
	"github.com/royalton/portal/pkg/oauth"
	"github.com/royalton/portal/pkg/redis"
	"github.com/royalton/portal/pkg/session"
	"github.com/royalton/portal/pkg/toast"
)

func serveCmd() *cobra.Command {
	var memory, worker bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), memory, worker)
		},
	}
	cmd.Flags().BoolVar(&memory, "memory", false, "keep all data in memory (demo mode)")
	cmd.Flags().BoolVar(&worker, "worker", true, "work background jobs in this process")
	return cmd
}

func serve(ctx context.Context, memory, worker bool) error {
	b, err := connect(ctx, memory)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog()
	if err != nil {
		b.close(ctx)
		return err
	}
	cookies, err := cookie.New(cfg.CookieSecret, cookie.WithSecure(cfg.SecureCookies))
	if err != nil {
		b.close(ctx)
		return err
	}
	var google *oauth.Google
	if cfg.Google.Enabled() {
		if google, err = oauth.NewGoogle(cfg.Google); err != nil {
			b.close(ctx)
			return err
		}
	}
	jobsManager, err := newJobs(b)
	if err != nil {
		b.close(ctx)
		return err
	}

	svc := auth.NewService(b.store, auth.WithLogger(log))
	site := handlers.New(handlers.Deps{
		Store:         b.store,
		Auth:          svc,
		Catalog:       catalog,
		Tracking:      trackingCache(b),
		Google:        google,
		StorageExport: jobsManager != nil && b.storage != nil,
		Logger:        log,
	})

	opts := []portal.Option{
		portal.WithLogger(log),
		portal.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Logger(),
			middlewares.Recover(),
			svc.Middleware(),
		),
		portal.WithErrorHandler(middlewares.HandleErrors(handlers.ErrorPage)),
		portal.WithNotFound(site.NotFound),
		portal.WithStatic("/static/", views.Static(), "."),
		portal.WithCookies(cookies),
		portal.WithSession(sessionStore(b),
			portal.WithSessionTTL(cfg.SessionTTL),
			portal.WithSessionSecure(cfg.SecureCookies),
		),
		portal.WithToasts(toast.NewHub(cfg.ToastIdle), func(m []toast.Message) portal.Component {
			return views.ToastRegion(m)
		}),
		portal.WithNavigationTarget("#main"),
		portal.WithHandlers(site),
		portal.WithHealth(readinessChecks(b, jobsManager)...),
	}
	if b.storage != nil {
		opts = append(opts, portal.WithStorage(b.storage))
	}
	switch {
	case jobsManager != nil && worker:
		opts = append(opts, portal.WithJobWorker(jobsManager))
	case jobsManager != nil:
		opts = append(opts, portal.WithJobs(jobsManager))
	}

	run := []portal.RunOption{
		portal.WithBaseContext(ctx),
		portal.WithRunLogger(log),
		portal.WithShutdownTimeout(cfg.ShutdownTimeout),
	}
	if b.redis != nil {
		run = append(run, portal.WithShutdownHook(redis.Shutdown(b.redis)))
	}
	if b.pool != nil {
		run = append(run, portal.WithShutdownHook(db.Shutdown(b.pool)))
	}

	log.Info("starting portal",
		"addr", cfg.Addr,
		"persistent", b.pool != nil,
		"jobs", jobsManager != nil,
		"google", google != nil,
	)
	return portal.New(opts...).Run(cfg.Addr, run...)
}

// sessionStore keeps sessions in redis when it is configured so they
// survive restarts and are shared between instances.
func sessionStore(b *backends) session.Store {
	if b.redis == nil {
		return session.NewCacheStore(cache.NewMemory[session.Session](), cache.NewMemory[[]string]())
	}
	return session.NewCacheStore(
		cache.NewRedis[session.Session](b.redis, cache.JSON[session.Session]{}, cache.WithPrefix("portal:session:")),
		cache.NewRedis[[]string](b.redis, cache.JSON[[]string]{}, cache.WithPrefix("portal:user-sessions:")),
	)
}

func trackingCache(b *backends) cache.Cache[handlers.Lookup] {
	if b.redis == nil {
		return cache.NewMemory[handlers.Lookup](cache.WithMaxEntries(10_000))
	}
	return cache.NewRedis[handlers.Lookup](b.redis, cache.JSON[handlers.Lookup]{}, cache.WithPrefix("portal:"))
}

func readinessChecks(b *backends, m *job.Manager) []portal.HealthOption {
	var checks []portal.HealthOption
	if b.pool != nil {
		checks = append(checks, portal.WithReadinessCheck("postgres", db.Healthcheck(b.pool)))
	}
	if b.redis != nil {
		checks = append(checks, portal.WithReadinessCheck("redis", redis.Healthcheck(b.redis)))
	}
	if m != nil {
		checks = append(checks, portal.WithReadinessCheck("jobs", job.Healthcheck(m)))
	}
	return checks
}
