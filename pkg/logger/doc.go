// Package logger builds slog loggers that enrich records with request-scoped
// attributes and optionally forward warnings and errors to Sentry.
//
//	log := logger.New(logger.Config{Level: "debug"},
//	    logger.Extract("request_id", requestid.FromContext),
//	)
//
// When Config.SentryDSN is set, errors become Sentry issues and warnings are
// kept as breadcrumb logs. Call Flush before exit to drain the Sentry queue.
package logger
