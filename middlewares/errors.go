package middlewares

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/royalton/portal/internal"
	"github.com/royalton/portal/pkg/htmx"
	"github.com/royalton/portal/pkg/toast"
)

const genericMessage = "Something went wrong. Please try again."

// ErrorPage renders a full page for an error status.
type ErrorPage func(code int, message string) internal.Component

// HandleErrors renders handler errors. Full page loads get page(code, msg).
// htmx requests keep the current page and get an error toast instead, with
// the toast region swapped out of band.
func HandleErrors(page ErrorPage) internal.ErrorHandler {
	return func(c internal.Context, err error) error {
		code, msg := classify(err)
		if code >= http.StatusInternalServerError {
			c.LogError("request failed", slog.Int("status", code), slog.Any("error", err))
		} else {
			c.LogDebug("request rejected", slog.Int("status", code), slog.Any("error", err))
		}

		if c.IsHTMX() {
			if _, terr := c.Toast(msg, toast.Error); terr == nil {
				return c.Render(code, blank{}, htmx.WithReswap(htmx.SwapNone))
			}
		}
		if page == nil {
			return c.String(code, msg)
		}
		return c.Render(code, page(code, msg))
	}
}

// classify maps err to a status and a message safe to show the visitor.
func classify(err error) (int, string) {
	if he, ok := internal.AsHTTPError(err); ok {
		return he.Code, he.Message
	}
	var pe *PanicError
	switch {
	case errors.As(err, &pe):
		return http.StatusInternalServerError, genericMessage
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "The request took too long. Please try again."
	case errors.Is(err, context.Canceled):
		return 499, "Request cancelled."
	default:
		return http.StatusInternalServerError, genericMessage
	}
}

type blank struct{}

func (blank) Render(context.Context, io.Writer) error { return nil }
