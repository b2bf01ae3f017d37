package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestToastFeed(t *testing.T) {
	// Registered first so it runs after the harness has shut down.
	ignore := goleak.IgnoreCurrent()
	t.Cleanup(func() { goleak.VerifyNone(t, ignore) })

	h := newHarness(t, options{})
	_, sid := h.signUp(t, "feed@example.com", false)

	t.Run("anonymous visitors have no feed", func(t *testing.T) {
		rec := h.get("/toasts/ws", nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	srv := httptest.NewServer(h.app)
	defer srv.Close()

	header := http.Header{"Cookie": {sid.Name + "=" + sid.Value}}
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/toasts/ws", header)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	read := func() string {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		return string(msg)
	}

	first := read()
	require.Contains(t, first, `id="toasts"`)
	require.Contains(t, first, "Welcome back!")

	rec := h.post("/support", url.Values{
		"name":    {"Ada"},
		"email":   {"feed@example.com"},
		"subject": {"Hello"},
		"message": {"Just checking the feed."},
	}, sid)
	require.Equal(t, http.StatusOK, rec.Code)

	var pushed string
	for range 3 {
		if pushed = read(); strings.Contains(pushed, "Thanks!") {
			break
		}
	}
	require.Contains(t, pushed, "Thanks! Our team will reply within one business day.")

	del := h.do(httptest.NewRequest(http.MethodDelete, "/toasts/unknown", nil), sid)
	require.Equal(t, http.StatusOK, del.Code)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
}
