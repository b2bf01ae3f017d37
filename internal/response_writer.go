package internal

import (
	"bufio"
	"net"
	"net/http"
	"sync"
)

// ResponseWriter records the status and size of a response and runs
// registered hooks right before the header goes out.
//
// htmx ignores the body of non-2xx responses, so for htmx requests every
// status is sent as 200 while Status still reports the original code.
type ResponseWriter struct {
	http.ResponseWriter
	hooks   []func()
	status  int
	size    int64
	mu      sync.Mutex
	written bool
	htmx    bool
}

func NewResponseWriter(w http.ResponseWriter, htmx bool) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK, htmx: htmx}
}

// OnBeforeWrite registers fn to run once before the header is written.
func (w *ResponseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	w.hooks = append(w.hooks, fn)
	w.mu.Unlock()
}

// begin marks the response written and returns the pending hooks.
// It returns false when the header was already sent.
func (w *ResponseWriter) begin(code int) ([]func(), bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.written {
		return nil, false
	}
	w.written = true
	w.status = code
	hooks := w.hooks
	w.hooks = nil
	return hooks, true
}

func (w *ResponseWriter) WriteHeader(code int) {
	hooks, ok := w.begin(code)
	if !ok {
		return
	}
	for _, fn := range hooks {
		fn()
	}
	if w.htmx && code != http.StatusOK {
		code = http.StatusOK
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.Written() {
		w.WriteHeader(w.status)
	}
	n, err := w.ResponseWriter.Write(b)
	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack hands the connection to a websocket upgrader. The response counts
// as written afterwards so no error page is rendered on top of it.
func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	conn, rw, err := h.Hijack()
	if err == nil {
		w.mu.Lock()
		w.written = true
		w.status = http.StatusSwitchingProtocols
		w.hooks = nil
		w.mu.Unlock()
	}
	return conn, rw, err
}

func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
