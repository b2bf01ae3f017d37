package internal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/royalton/portal/pkg/htmx"
	"github.com/royalton/portal/pkg/job"
	"github.com/royalton/portal/pkg/session"
	"github.com/royalton/portal/pkg/storage"
	"github.com/royalton/portal/pkg/toast"
)

// Component is anything templ can render.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// Context wraps one request. It satisfies context.Context by delegating to
// the request context, so it can be handed straight to stores and clients.
type Context interface {
	context.Context

	Request() *http.Request
	Response() http.ResponseWriter

	// Param returns a chi URL parameter.
	Param(name string) string
	Query(name string) string
	QueryDefault(name, defaultValue string) string
	Form(name string) string
	Header(name string) string
	SetHeader(name, value string)

	// UserID returns the signed-in user's ID, or "" for anonymous visitors.
	UserID() string
	IsAuthenticated() bool

	JSON(code int, v any) error
	String(code int, s string) error
	NoContent(code int) error

	// Redirect forces a full page load of url.
	Redirect(url string) error

	// Navigate moves the visitor to path inside the main region, pushing a
	// history entry. Plain requests fall back to 303 See Other.
	Navigate(path string) error

	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError
	IsHTMX() bool

	// Render writes component with status code. For htmx requests the
	// active toasts are appended as an out-of-band fragment.
	Render(code int, component Component, opts ...htmx.RenderOption) error

	// RenderPartial renders partial for htmx swaps and fullPage otherwise.
	RenderPartial(code int, fullPage, partial Component, opts ...htmx.RenderOption) error

	Written() bool
	Status() int

	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a request-scoped value visible to later middleware and
	// the handler.
	Set(key, value any)
	Get(key any) any

	Cookie(name string) (string, error)
	SetCookie(name, value string, maxAge int)
	DeleteCookie(name string)
	CookieSigned(name string) (string, error)
	SetCookieSigned(name, value string, maxAge int) error
	CookieEncrypted(name string) (string, error)
	SetCookieEncrypted(name, value string, maxAge int) error
	Flash(key string, dest any) error
	SetFlash(key string, value any) error

	// Session returns the visitor's session or nil if there is none yet.
	Session() (*session.Session, error)
	InitSession() error
	// AuthenticateSession binds userID to the session and rotates its token.
	AuthenticateSession(userID string) error
	// DestroySession removes the session and clears its cookie.
	DestroySession() error

	// Toast publishes a notification to this visitor and returns its ID.
	Toast(text string, cat toast.Category, opts ...toast.PublishOption) (string, error)
	// Toasts returns this visitor's toast bus, starting a session if needed.
	Toasts() (*toast.Bus, error)
	// ActiveToasts lists the visitor's active toasts without starting a session.
	ActiveToasts() []toast.Message
	// WatchToasts subscribes fn to the visitor's bus and keeps the bus alive
	// until the returned function is called.
	WatchToasts(fn func(toast.Event)) (*toast.Bus, func(), error)

	Enqueue(name string, payload any, opts ...job.EnqueueOption) error
	EnqueueTx(tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error

	Storage() (storage.Storage, error)
}

type contextKey struct{}

// FromContext returns the request Context carried by ctx. Templates use it
// to reach per-request state such as the active toasts.
func FromContext(ctx context.Context) (Context, bool) {
	c, ok := ctx.Value(contextKey{}).(*requestContext)
	return c, ok
}

type requestContext struct {
	request  *http.Request
	response *ResponseWriter
	app      *App
	session  *session.Session

	sessionLoaded bool
	hookAdded     bool
}

// contextFor returns the Context already attached to r, or attaches a new
// one. The returned request carries the Context.
func (a *App) contextFor(w http.ResponseWriter, r *http.Request) *requestContext {
	if c, ok := r.Context().Value(contextKey{}).(*requestContext); ok && c.app == a {
		c.request = r
		return c
	}
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w, htmx.IsHTMX(r))
	}
	c := &requestContext{response: rw, app: a}
	c.request = r.WithContext(context.WithValue(r.Context(), contextKey{}, c))
	return c
}

func (c *requestContext) Request() *http.Request        { return c.request }
func (c *requestContext) Response() http.ResponseWriter { return c.response }
func (c *requestContext) Deadline() (time.Time, bool)   { return c.request.Context().Deadline() }
func (c *requestContext) Done() <-chan struct{}         { return c.request.Context().Done() }
func (c *requestContext) Err() error                    { return c.request.Context().Err() }
func (c *requestContext) Value(key any) any             { return c.request.Context().Value(key) }
func (c *requestContext) Param(name string) string      { return chi.URLParam(c.request, name) }
func (c *requestContext) Query(name string) string      { return c.request.URL.Query().Get(name) }
func (c *requestContext) Form(name string) string       { return c.request.FormValue(name) }
func (c *requestContext) Header(name string) string     { return c.request.Header.Get(name) }
func (c *requestContext) SetHeader(name, value string)  { c.response.Header().Set(name, value) }
func (c *requestContext) IsHTMX() bool                  { return htmx.IsHTMX(c.request) }
func (c *requestContext) Written() bool                 { return c.response.Written() }
func (c *requestContext) Status() int                   { return c.response.Status() }
func (c *requestContext) Logger() *slog.Logger          { return c.app.logger }
func (c *requestContext) Get(key any) any               { return c.request.Context().Value(key) }
func (c *requestContext) IsAuthenticated() bool         { return c.UserID() != "" }

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	return defaultValue
}

func (c *requestContext) UserID() string {
	sess, err := c.Session()
	if err != nil || sess == nil {
		return ""
	}
	return sess.UserID
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := io.WriteString(c.response, s)
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(url string) error {
	htmx.Redirect(c.response, c.request, url)
	return nil
}

func (c *requestContext) Navigate(path string) error {
	htmx.Navigate(c.response, c.request, path, c.app.navTarget)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Render(code int, component Component, opts ...htmx.RenderOption) error {
	cfg := htmx.NewConfig(opts...)
	partial := htmx.IsPartial(c.request)
	if partial {
		cfg.ApplyHeaders(c.response)
		if region := c.toastRegion(); region != nil {
			cfg.OOB = append(cfg.OOB, region)
		}
	}

	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)

	if err := component.Render(c.request.Context(), c.response); err != nil {
		return err
	}
	if !partial {
		return nil
	}
	for _, oob := range cfg.OOB {
		if err := oob.Render(c.request.Context(), c.response); err != nil {
			return err
		}
	}
	return nil
}

func (c *requestContext) RenderPartial(code int, fullPage, partial Component, opts ...htmx.RenderOption) error {
	if htmx.IsPartial(c.request) {
		return c.Render(code, partial, opts...)
	}
	return c.Render(code, fullPage)
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.app.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.app.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.app.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.app.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.request.Context(), key, value))
}

func (c *requestContext) Cookie(name string) (string, error) {
	return c.app.cookies.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, maxAge int) {
	c.app.cookies.Set(c.response, name, value, maxAge)
}

func (c *requestContext) DeleteCookie(name string) {
	c.app.cookies.Delete(c.response, name)
}

func (c *requestContext) CookieSigned(name string) (string, error) {
	return c.app.cookies.GetSigned(c.request, name)
}

func (c *requestContext) SetCookieSigned(name, value string, maxAge int) error {
	return c.app.cookies.SetSigned(c.response, name, value, maxAge)
}

func (c *requestContext) CookieEncrypted(name string) (string, error) {
	return c.app.cookies.GetEncrypted(c.request, name)
}

func (c *requestContext) SetCookieEncrypted(name, value string, maxAge int) error {
	return c.app.cookies.SetEncrypted(c.response, name, value, maxAge)
}

func (c *requestContext) Flash(key string, dest any) error {
	return c.app.cookies.Flash(c.response, c.request, key, dest)
}

func (c *requestContext) SetFlash(key string, value any) error {
	return c.app.cookies.SetFlash(c.response, key, value)
}

// saveSessionOnWrite persists the session once, right before the header
// goes out. Save failures are logged; the response is already committed.
func (c *requestContext) saveSessionOnWrite() {
	if c.hookAdded {
		return
	}
	c.hookAdded = true
	c.response.OnBeforeWrite(func() {
		if c.session == nil {
			return
		}
		if err := c.app.sessions.Save(c.request.Context(), c.session); err != nil {
			c.LogError("save session", slog.Any("error", err))
		}
	})
}

func (c *requestContext) Session() (*session.Session, error) {
	if c.app.sessions == nil {
		return nil, session.ErrNotConfigured
	}
	if c.sessionLoaded {
		return c.session, nil
	}
	c.saveSessionOnWrite()
	sess, err := c.app.sessions.Load(c.request.Context(), c.request)
	if err != nil {
		return nil, err
	}
	c.session = sess
	c.sessionLoaded = true
	return sess, nil
}

func (c *requestContext) InitSession() error {
	if c.app.sessions == nil {
		return session.ErrNotConfigured
	}
	c.saveSessionOnWrite()
	sess, err := c.app.sessions.Create(c.request.Context(), c.request)
	if err != nil {
		return err
	}
	c.session = sess
	c.sessionLoaded = true
	c.app.sessions.WriteCookie(c.response, sess)
	return nil
}

// ensureSession returns the current session, creating one when absent.
func (c *requestContext) ensureSession() (*session.Session, error) {
	sess, err := c.Session()
	if err != nil {
		return nil, err
	}
	if sess != nil {
		return sess, nil
	}
	if err := c.InitSession(); err != nil {
		return nil, err
	}
	return c.session, nil
}

func (c *requestContext) AuthenticateSession(userID string) error {
	sess, err := c.ensureSession()
	if err != nil {
		return err
	}
	sess.Authenticate(userID)
	if err := c.app.sessions.Rotate(c.request.Context(), sess); err != nil {
		return err
	}
	c.app.sessions.WriteCookie(c.response, sess)
	return nil
}

func (c *requestContext) DestroySession() error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	c.app.sessions.ClearCookie(c.response)
	c.session = nil
	if sess == nil {
		return nil
	}
	if c.app.toasts != nil {
		c.app.toasts.Drop(sess.ID)
	}
	return c.app.sessions.Destroy(c.request.Context(), sess)
}

func (c *requestContext) Toasts() (*toast.Bus, error) {
	if c.app.toasts == nil {
		return nil, ErrToastsNotConfigured
	}
	sess, err := c.ensureSession()
	if err != nil {
		return nil, err
	}
	return c.app.toasts.Bus(sess.ID), nil
}

func (c *requestContext) WatchToasts(fn func(toast.Event)) (*toast.Bus, func(), error) {
	if c.app.toasts == nil {
		return nil, nil, ErrToastsNotConfigured
	}
	sess, err := c.ensureSession()
	if err != nil {
		return nil, nil, err
	}
	bus, unsubscribe := c.app.toasts.Subscribe(sess.ID, fn)
	return bus, unsubscribe, nil
}

func (c *requestContext) Toast(text string, cat toast.Category, opts ...toast.PublishOption) (string, error) {
	bus, err := c.Toasts()
	if err != nil {
		return "", err
	}
	return bus.Publish(text, cat, opts...), nil
}

func (c *requestContext) ActiveToasts() []toast.Message {
	if c.app.toasts == nil {
		return nil
	}
	sess, err := c.Session()
	if err != nil || sess == nil {
		return nil
	}
	return c.app.toasts.Bus(sess.ID).Active()
}

// toastRegion renders the active toasts for an out-of-band swap, or nil
// when no region renderer is configured.
func (c *requestContext) toastRegion() Component {
	if c.app.toastRegion == nil {
		return nil
	}
	return c.app.toastRegion(c.ActiveToasts())
}

func (c *requestContext) Enqueue(name string, payload any, opts ...job.EnqueueOption) error {
	if c.app.jobs == nil {
		return job.ErrNotConfigured
	}
	return c.app.jobs.Enqueue(c.request.Context(), name, payload, opts...)
}

func (c *requestContext) EnqueueTx(tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error {
	if c.app.jobs == nil {
		return job.ErrNotConfigured
	}
	return c.app.jobs.EnqueueTx(c.request.Context(), tx, name, payload, opts...)
}

func (c *requestContext) Storage() (storage.Storage, error) {
	if c.app.storage == nil {
		return nil, storage.ErrNotConfigured
	}
	return c.app.storage, nil
}
