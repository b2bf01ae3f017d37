package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/royalton/portal/internal/jobs"
	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/internal/store"
	"github.com/royalton/portal/pkg/db"
	"github.com/royalton/portal/pkg/job"
	"github.com/royalton/portal/pkg/mailer"
	"github.com/royalton/portal/pkg/mailer/resend"
	"github.com/royalton/portal/pkg/redis"
	"github.com/royalton/portal/pkg/storage"
)

var errNoDatabase = errors.New("DATABASE_URL is not set (use --memory for a throwaway demo)")

// backends are the long-lived connections a command needs. Fields are nil
// when the matching service is not configured.
type backends struct {
	pool    *pgxpool.Pool
	redis   *goredis.Client
	store   store.Store
	storage storage.Storage
}

// connect opens the database and redis. With memory set, or without a
// database when allowed, data lives in process.
func connect(ctx context.Context, memory bool) (*backends, error) {
	b := &backends{}
	switch {
	case memory:
		log.Warn("running with the in-memory store, data is lost on exit")
		b.store = store.NewMemory(store.WithLocations(demoLocations()...))
	case !cfg.DB.Enabled():
		return nil, errNoDatabase
	default:
		pool, err := db.Connect(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		b.pool = pool
		b.store = store.NewPostgres(pool)
	}

	if cfg.Redis.Enabled() {
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			b.close(ctx)
			return nil, err
		}
		b.redis = client
	}

	if cfg.Storage.Enabled() {
		s3, err := storage.New(cfg.Storage)
		if err != nil {
			b.close(ctx)
			return nil, err
		}
		b.storage = s3
	}
	return b, nil
}

func (b *backends) close(ctx context.Context) {
	if b.redis != nil {
		_ = redis.Shutdown(b.redis)(ctx)
	}
	if b.pool != nil {
		_ = db.Shutdown(b.pool)(ctx)
	}
}

// newMailer delivers through Resend when a key is configured and logs
// messages otherwise.
func newMailer() *mailer.Mailer {
	var sender mailer.Sender = mailer.LogSender{Logger: log}
	if cfg.Resend.APIKey != "" {
		sender = resend.New(cfg.Resend)
	}
	return mailer.New(sender, mailer.NewRenderer(jobs.Emails(), cfg.Mailer))
}

// newJobs builds the job manager. Jobs run on River, so they need Postgres.
func newJobs(b *backends) (*job.Manager, error) {
	if b.pool == nil {
		return nil, nil
	}
	opts := jobs.Options(jobs.Deps{
		Store:   b.store,
		Mailer:  newMailer(),
		Storage: b.storage,
		Logger:  log,
		BaseURL: cfg.Mailer.BaseURL,
	})
	opts = append(opts, job.WithLogger(log), job.WithMaxWorkers(cfg.JobWorkers))
	return job.NewManager(b.pool, opts...)
}

// loadCatalog reads CATALOG_FILE, falling back to the built-in catalog.
func loadCatalog() (*shipping.Catalog, error) {
	if cfg.CatalogFile == "" {
		return shipping.DefaultCatalog(), nil
	}
	data, err := os.ReadFile(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return shipping.LoadCatalog(data)
}

func demoLocations() []shipping.Location {
	return []shipping.Location{
		{
			ID: "loc-lhr", Name: "London Heathrow Service Center", Type: shipping.LocationServiceCenter,
			Address: "Unit 4, Cargo Terminal", City: "London", Country: "United Kingdom", PostalCode: "TW6 2PR",
			Hours:    map[string]string{"Mon-Fri": "07:00-21:00", "Sat": "08:00-14:00"},
			Services: []string{"Domestic", "International", "Express"}, IsActive: true,
		},
		{
			ID: "loc-man", Name: "Manchester Drop-off Point", Type: shipping.LocationDropOff,
			Address: "18 Deansgate", City: "Manchester", Country: "United Kingdom", PostalCode: "M3 1AZ",
			Hours:    map[string]string{"Mon-Sat": "09:00-18:00"},
			Services: []string{"Domestic"}, IsActive: true,
		},
		{
			ID: "loc-nyc", Name: "Brooklyn Pickup Locker", Type: shipping.LocationPickup,
			Address: "250 Flatbush Ave", City: "New York", State: "NY", Country: "United States", PostalCode: "11217",
			Hours:    map[string]string{"Daily": "00:00-24:00"},
			Services: []string{"Domestic", "Express"}, IsActive: true,
		},
	}
}
