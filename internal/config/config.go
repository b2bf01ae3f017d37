// Package config reads the portal settings from the environment.
//
// Each subsystem owns its own Config struct with env tags; this package
// only composes them so the whole process is configured in one place.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/royalton/portal/pkg/cookie"
	"github.com/royalton/portal/pkg/db"
	"github.com/royalton/portal/pkg/logger"
	"github.com/royalton/portal/pkg/mailer"
	"github.com/royalton/portal/pkg/mailer/resend"
	"github.com/royalton/portal/pkg/oauth"
	"github.com/royalton/portal/pkg/redis"
	"github.com/royalton/portal/pkg/storage"
)

// ErrInvalid wraps every validation failure reported by Load.
var ErrInvalid = errors.New("config: invalid")

// Config is the full process configuration.
type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	CookieSecret    string        `env:"COOKIE_SECRET"`
	SecureCookies   bool          `env:"SECURE_COOKIES" envDefault:"false"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	ToastIdle       time.Duration `env:"TOAST_IDLE_TIMEOUT" envDefault:"30m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	// CatalogFile replaces the built-in service catalog when set.
	CatalogFile string `env:"CATALOG_FILE"`
	// JobWorkers is the default queue concurrency for the in-process worker.
	JobWorkers int `env:"JOB_WORKERS" envDefault:"10"`

	Log     logger.Config
	DB      db.Config
	Redis   redis.Config
	Storage storage.Config
	Mailer  mailer.Config
	Resend  resend.Config
	Google  oauth.Config
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other.
func (c Config) Validate() error {
	if c.CookieSecret != "" && len(c.CookieSecret) < 32 {
		return fmt.Errorf("%w: COOKIE_SECRET: %w", ErrInvalid, cookie.ErrBadSecret)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: SESSION_TTL must be positive", ErrInvalid)
	}
	if c.JobWorkers < 1 {
		return fmt.Errorf("%w: JOB_WORKERS must be at least 1", ErrInvalid)
	}
	return nil
}

// Persistent reports whether data outlives the process.
func (c Config) Persistent() bool { return c.DB.Enabled() }
