package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/royalton/portal/pkg/logger"
)

type ctxKey struct{}

func requestID(ctx context.Context) string {
	v, _ := ctx.Value(ctxKey{}).(string)
	return v
}

func TestNewWithWriter(t *testing.T) {
	t.Parallel()

	t.Run("adds extracted attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, logger.Config{}, logger.Extract("request_id", requestID))

		ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
		log.InfoContext(ctx, "shipment created", slog.String("tracking_number", "TXP1"))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		require.Equal(t, "req-1", rec["request_id"])
		require.Equal(t, "TXP1", rec["tracking_number"])
	})

	t.Run("skips empty values", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, logger.Config{}, logger.Extract("request_id", requestID))
		log.Info("no request")

		require.NotContains(t, buf.String(), "request_id")
	})

	t.Run("respects level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, logger.Config{Level: "warn"})
		log.Info("hidden")
		log.Warn("shown")

		require.NotContains(t, buf.String(), "hidden")
		require.Contains(t, buf.String(), "shown")
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger.NewWithWriter(&buf, logger.Config{Format: "text"}).Info("hello")
		require.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("attributes survive With", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, logger.Config{}, logger.Extract("request_id", requestID)).
			With("component", "jobs")

		log.InfoContext(context.WithValue(context.Background(), ctxKey{}, "r"), "x")
		require.Contains(t, buf.String(), `"component":"jobs"`)
		require.Contains(t, buf.String(), `"request_id":"r"`)
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, logger.ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, logger.ParseLevel("warning"))
	require.Equal(t, slog.LevelError, logger.ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, logger.ParseLevel("bogus"))
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	require.False(t, logger.NewNope().Enabled(context.Background(), slog.LevelError))
}
