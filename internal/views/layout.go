// Package views renders the portal's HTML. Pages are plain functions that
// return templ components; per-request state such as the signed-in user and
// the active toasts is read from the render context.
package views

import (
	"context"
	"embed"
	"io"
	"io/fs"

	"github.com/a-h/templ"

	"github.com/royalton/portal"
	"github.com/royalton/portal/internal/auth"
	"github.com/royalton/portal/pkg/navigation"
	"github.com/royalton/portal/pkg/toast"
)

// Brand is the company name shown in titles and the header.
const Brand = "Royalton Logistics"

//go:embed static
var static embed.FS

// Static returns the stylesheet and images served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// htmxConfig lets 422 responses swap so re-rendered forms show their errors.
const htmxConfig = `{"responseHandling":[{"code":"204","swap":false},{"code":"[23]..","swap":true},{"code":"422","swap":true},{"code":"[45]..","swap":false,"error":true}]}`

// Page renders a complete document around body.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!DOCTYPE html>"); err != nil {
			return err
		}
		return E("html", A{"lang", "en"},
			E("head",
				E("meta", A{"charset", "utf-8"}),
				E("meta", Name("viewport"), A{"content", "width=device-width, initial-scale=1"}),
				E("meta", Name("htmx-config"), A{"content", htmxConfig}),
				E("title", pageTitle(title)),
				E("link", A{"rel", "stylesheet"}, Href("/static/app.css")),
				E("script", A{"src", "https://unpkg.com/htmx.org@2.0.4"}),
				E("script", A{"src", "https://unpkg.com/htmx-ext-ws@2.0.2"}),
			),
			E("body",
				header(false),
				E("main", ID("main"), Class("container"), body),
				E("div", Hx("ext", "ws"), A{"ws-connect", "/toasts/ws"},
					ToastRegion(portal.ActiveToasts(ctx)),
				),
				footer(),
			),
		).Render(ctx, w)
	})
}

// Partial renders body for a swap into #main. The title and the header are
// updated alongside it so the signed-in state and active link stay current.
func Partial(title string, body templ.Component) templ.Component {
	return Group(
		E("title", pageTitle(title)),
		header(true),
		body,
	)
}

func pageTitle(title string) string {
	if title == "" {
		return Brand
	}
	return title + " | " + Brand
}

type navItem struct {
	path  string
	label string
}

var (
	publicNav = []navItem{
		{"/", "Home"},
		{"/services", "Services"},
		{"/track", "Track"},
		{"/quote", "Get a Quote"},
		{"/locations", "Locations"},
		{"/support", "Support"},
	}
	memberNav = []navItem{
		{"/dashboard", "Dashboard"},
		{"/ship", "Ship"},
		{"/shipments", "Shipments"},
		{"/notifications", "Notifications"},
	}
)

func header(oob bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		current := portal.CurrentPath(ctx)
		items := publicNav
		u, signedIn := auth.CurrentUser(ctx)
		if signedIn {
			items = append(append([]navItem(nil), publicNav...), memberNav...)
			if u.IsAdmin() {
				items = append(items, navItem{"/admin", "Admin"})
			}
		}

		links := Map(items, func(it navItem) templ.Component {
			class := "nav-link"
			if it.path == current {
				class += " active"
			}
			return E("li", navigation.Link(it.path, navigation.Text(it.label), navigation.Class(class)))
		})

		var account templ.Component
		if signedIn {
			account = E("form", A{"method", "post"}, A{"action", "/signout"}, Class("nav-account"),
				E("span", Class("muted"), u.Name()),
				E("button", Type("submit"), Class("btn btn-link"), "Sign out"),
			)
		} else {
			account = navigation.Link("/signin", navigation.Text("Sign in"), navigation.Class("btn btn-primary"))
		}

		var swap any
		if oob {
			swap = Hx("swap-oob", "true")
		}
		return E("header", ID("site-header"), Class("site-header"), swap,
			E("nav", Class("container nav"),
				navigation.Link("/", E("strong", Brand), navigation.Class("brand")),
				E("ul", Class("nav-links"), links),
				account,
			),
		).Render(ctx, w)
	})
}

func footer() templ.Component {
	return E("footer", Class("site-footer"),
		E("div", Class("container footer-grid"),
			E("p", "© ", Brand, ". Delivering reliability since 1998."),
			E("ul", Class("footer-links"),
				E("li", navigation.Link("/about", navigation.Text("About"))),
				E("li", navigation.Link("/privacy", navigation.Text("Privacy"))),
				E("li", navigation.Link("/terms", navigation.Text("Terms"))),
				E("li", navigation.Link("/support", navigation.Text("Contact"))),
			),
		),
	)
}

// ToastRegion renders the active toasts. It carries hx-swap-oob so the same
// fragment refreshes the region when appended to a partial response or
// pushed over the websocket.
func ToastRegion(msgs []toast.Message) templ.Component {
	return E("div", ID("toasts"), Class("toasts"), Hx("swap-oob", "true"), A{"aria-live", "polite"},
		Map(msgs, func(m toast.Message) templ.Component {
			return E("div", ID("toast-"+m.ID), Class("toast toast-"+string(m.Category)), A{"role", "status"},
				E("span", m.Text),
				E("button", Type("button"), Class("toast-close"), A{"aria-label", "Dismiss"},
					Hx("delete", "/toasts/"+m.ID), Hx("swap", "none"), "×"),
			)
		}),
	)
}
