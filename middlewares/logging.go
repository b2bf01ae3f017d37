package middlewares

import (
	"log/slog"
	"strings"
	"time"

	"github.com/royalton/portal/internal"
)

// Logger writes one record per request. Health probes and static assets are
// logged at debug level.
func Logger() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Status()
			if err != nil && !c.Written() {
				status, _ = classify(err)
			}
			level := slog.LevelInfo
			switch path := c.Request().URL.Path; {
			case status >= 500:
				level = slog.LevelError
			case quietPath(path):
				level = slog.LevelDebug
			}

			c.Logger().LogAttrs(c, level, "request",
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
				slog.Bool("htmx", c.IsHTMX()),
			)
			return err
		}
	}
}

func quietPath(path string) bool {
	for _, prefix := range []string{"/health/", "/static/"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
