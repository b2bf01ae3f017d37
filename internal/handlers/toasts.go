package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/gorilla/websocket"

	"github.com/royalton/portal"
	"github.com/royalton/portal/internal/views"
	"github.com/royalton/portal/pkg/toast"
)

// Toast feed timings.
const (
	toastWriteWait = 5 * time.Second
	toastPingEvery = 30 * time.Second
	toastPongWait  = 2 * toastPingEvery
)

var toastUpgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 4096,
}

func (s *Site) toastRoutes(r portal.Router) {
	r.GET("/toasts/ws", s.toastFeed)
	r.DELETE("/toasts/{id}", s.dismissToast)
}

func (s *Site) dismissToast(c portal.Context) error {
	bus, err := c.Toasts()
	if err != nil {
		return err
	}
	bus.Dismiss(c.Param("id"))
	return c.Render(http.StatusOK, templ.NopComponent)
}

// toastFeed streams the toast region to the browser each time the
// visitor's bus changes. Visitors without a session get 204.
func (s *Site) toastFeed(c portal.Context) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if sess == nil {
		return c.NoContent(http.StatusNoContent)
	}
	changed := make(chan struct{}, 1)
	bus, unsubscribe, err := c.WatchToasts(func(toast.Event) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer unsubscribe()

	conn, err := toastUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		c.LogWarn("toast feed upgrade failed", slog.Any("error", err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	go drain(conn, cancel)

	if err := pushToasts(ctx, conn, bus.Active()); err != nil {
		return nil
	}
	ping := time.NewTicker(toastPingEvery)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			if err := pushToasts(ctx, conn, bus.Active()); err != nil {
				c.LogDebug("toast feed closed", slog.Any("error", err))
				return nil
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(toastWriteWait)); err != nil {
				return nil
			}
		}
	}
}

// drain reads until the client goes away or stops answering pings. The
// feed is one-way, so anything the browser sends is discarded.
func drain(conn *websocket.Conn, done context.CancelFunc) {
	defer done()
	_ = conn.SetReadDeadline(time.Now().Add(toastPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(toastPongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func pushToasts(ctx context.Context, conn *websocket.Conn, msgs []toast.Message) error {
	var buf bytes.Buffer
	if err := views.ToastRegion(msgs).Render(ctx, &buf); err != nil {
		return err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(toastWriteWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, buf.Bytes())
}
