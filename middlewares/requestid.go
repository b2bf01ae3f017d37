package middlewares

import (
	"context"

	"github.com/royalton/portal/internal"
	"github.com/royalton/portal/pkg/id"
	"github.com/royalton/portal/pkg/logger"
)

type requestIDKey struct{}

// RequestIDHeader is both read from the request and echoed in the response.
const RequestIDHeader = "X-Request-ID"

// RequestIDOption configures RequestID.
type RequestIDOption func(*requestIDConfig)

type requestIDConfig struct {
	generate func() string
	headers  []string
}

// WithRequestIDHeaders sets the incoming headers checked for an existing ID.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *requestIDConfig) { cfg.headers = headers }
}

func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if gen != nil {
			cfg.generate = gen
		}
	}
}

// RequestID reuses an upstream request ID or generates a ULID.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &requestIDConfig{
		generate: id.NewULID,
		headers:  []string{RequestIDHeader, "X-Correlation-ID"},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			var reqID string
			for _, h := range cfg.headers {
				if reqID = c.Header(h); reqID != "" {
					break
				}
			}
			if reqID == "" || len(reqID) > 128 {
				reqID = cfg.generate()
			}
			c.Set(requestIDKey{}, reqID)
			c.SetHeader(RequestIDHeader, reqID)
			return next(c)
		}
	}
}

// GetRequestID returns the ID assigned by RequestID, or "".
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// RequestIDExtractor adds request_id to every log record written with the
// request context.
func RequestIDExtractor() logger.ContextExtractor {
	return logger.Extract("request_id", GetRequestID)
}
