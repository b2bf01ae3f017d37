// Package handlers serves the portal's pages and form actions.
//
// Every GET page is declared once in a navigation table. The table drives
// route registration and also answers for paths no route knows: those fall
// back to the home page, the same way the client-side router behaves.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/royalton/portal"
	"github.com/royalton/portal/internal/auth"
	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/internal/store"
	"github.com/royalton/portal/internal/views"
	"github.com/royalton/portal/pkg/cache"
	"github.com/royalton/portal/pkg/navigation"
	"github.com/royalton/portal/pkg/oauth"
	"github.com/royalton/portal/pkg/toast"
)

// Deps are the collaborators every handler shares.
type Deps struct {
	Store   store.Store
	Auth    *auth.Service
	Catalog *shipping.Catalog
	// Tracking caches lookups by tracking number. Nil disables caching.
	Tracking cache.Cache[Lookup]
	// Google enables "Continue with Google" when set.
	Google *oauth.Google
	// StorageExport enables the asynchronous export to object storage.
	StorageExport bool
	Now           func() time.Time
	Logger        *slog.Logger
}

// Site is the whole portal: marketing pages, customer flows and the back
// office.
type Site struct {
	Deps
	pages *navigation.Table[portal.HandlerFunc]
}

// New builds the site. Missing optional deps get defaults.
func New(d Deps) *Site {
	if d.Catalog == nil {
		d.Catalog = shipping.DefaultCatalog()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	s := &Site{Deps: d}
	s.pages = navigation.NewTable(s.bindings(),
		navigation.WithFallback[portal.HandlerFunc](navigation.DefaultFallbackPath),
		navigation.WithNotFound[portal.HandlerFunc](s.notFoundPage),
	)
	return s
}

// bindings is the page table in declaration order. Guards are applied here
// so a page resolved through the fallback keeps its protection.
func (s *Site) bindings() []navigation.Binding[portal.HandlerFunc] {
	requireAuth := auth.RequireAuth()
	requireAdmin := auth.RequireAdmin()

	b := []navigation.Binding[portal.HandlerFunc]{
		{Path: "/", Content: s.home},
		{Path: "/track", Content: s.track},
		{Path: "/ship", Content: requireAuth(s.shipForm)},
		{Path: "/quote", Content: s.quoteForm},
		{Path: "/services", Content: s.services},
	}
	for _, svc := range s.Catalog.Services {
		b = append(b, navigation.Binding[portal.HandlerFunc]{Path: svc.Path(), Content: s.serviceDetail(svc)})
	}
	return append(b,
		navigation.Binding[portal.HandlerFunc]{Path: "/locations", Content: s.locations},
		navigation.Binding[portal.HandlerFunc]{Path: "/support", Content: s.supportForm},
		navigation.Binding[portal.HandlerFunc]{Path: auth.SignInPath, Content: s.signInForm},
		navigation.Binding[portal.HandlerFunc]{Path: "/dashboard", Content: requireAuth(s.dashboard)},
		navigation.Binding[portal.HandlerFunc]{Path: "/shipments", Content: requireAuth(s.shipments)},
		navigation.Binding[portal.HandlerFunc]{Path: "/notifications", Content: requireAuth(s.notifications)},
		navigation.Binding[portal.HandlerFunc]{Path: "/addresses", Content: requireAuth(s.addresses)},
		navigation.Binding[portal.HandlerFunc]{Path: "/about", Content: s.about},
		navigation.Binding[portal.HandlerFunc]{Path: "/privacy", Content: s.privacy},
		navigation.Binding[portal.HandlerFunc]{Path: "/terms", Content: s.terms},
		navigation.Binding[portal.HandlerFunc]{Path: "/admin", Content: requireAdmin(s.admin)},
	)
}

// Pages lists the page paths in declaration order.
func (s *Site) Pages() []string { return s.pages.Paths() }

// Resolve reports which page a target would render and how it was chosen.
func (s *Site) Resolve(target string) navigation.Match[portal.HandlerFunc] {
	return s.pages.Resolve(target)
}

// Routes implements portal.Handler.
func (s *Site) Routes(r portal.Router) {
	for _, path := range s.pages.Paths() {
		r.GET(path, s.pages.Match(path).Content)
	}
	s.accountRoutes(r)
	s.shippingRoutes(r)
	s.customerRoutes(r)
	s.adminRoutes(r)
	s.toastRoutes(r)

	r.POST("/api/payment/create-intent", s.createPaymentIntent)
}

// NotFound resolves unknown GET paths through the page table. Anything
// else is a plain 404.
func (s *Site) NotFound(c portal.Context) error {
	method := c.Request().Method
	if method != http.MethodGet && method != http.MethodHead {
		return portal.ErrNotFound("Page not found")
	}
	m := s.pages.Resolve(c.Request().URL.RequestURI())
	if m.Kind == navigation.Fallback {
		c.LogDebug("unknown path, rendering fallback page",
			slog.String("path", m.Location.Path),
			slog.String("fallback", m.Path),
		)
	}
	return m.Content(c)
}

func (s *Site) notFoundPage(c portal.Context) error {
	return page(c, http.StatusNotFound, "Not found", views.NotFound())
}

// ErrorPage adapts views.ErrorPage for middlewares.HandleErrors.
func ErrorPage(code int, message string) portal.Component {
	return views.ErrorPage(code, message)
}

// page renders body as a full document, or as a #main swap for htmx.
func page(c portal.Context, code int, title string, body templ.Component) error {
	return c.RenderPartial(code, views.Page(title, body), views.Partial(title, body))
}

// notify publishes a toast, ignoring apps without toasts.
func notify(c portal.Context, text string, cat toast.Category, opts ...toast.PublishOption) {
	if _, err := c.Toast(text, cat, opts...); err != nil && !errors.Is(err, portal.ErrToastsNotConfigured) {
		c.LogWarn("publish toast", slog.Any("error", err))
	}
}

// currentUser returns the signed-in user for routes behind RequireAuth.
func currentUser(c portal.Context) (*shipping.User, error) {
	u, ok := auth.CurrentUser(c)
	if !ok {
		return nil, portal.ErrUnauthorized("Please sign in to continue")
	}
	return u, nil
}

func (s *Site) createPaymentIntent(c portal.Context) error {
	return portal.ErrNotImplemented("Online payments are not available yet")
}
