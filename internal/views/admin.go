package views

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/pkg/navigation"
)

// Admin tabs.
const (
	TabShipments = "shipments"
	TabPayments  = "payments"
	TabUsers     = "users"
)

// AdminTabs is the tab order.
var AdminTabs = []string{TabShipments, TabPayments, TabUsers}

// AdminData is the back-office state for one tab.
type AdminData struct {
	Tab       string
	Filter    shipping.Filter
	Shipments []shipping.Shipment
	Payments  []shipping.Payment
	Users     []shipping.User
	Logs      []shipping.AdminLog
	ActorID   string
	// StorageExport enables the asynchronous export button.
	StorageExport bool
}

func Admin(d AdminData) templ.Component {
	var body templ.Component
	switch d.Tab {
	case TabPayments:
		body = adminPayments(d.Payments)
	case TabUsers:
		body = adminUsers(d)
	default:
		body = adminShipments(d)
	}
	return Group(
		E("h1", "Admin"),
		E("nav", Class("tabs"), Map(AdminTabs, func(tab string) templ.Component {
			class := ""
			if tab == d.Tab {
				class = "active"
			}
			return navigation.Link("/admin?tab="+tab, navigation.Text(titleCase(tab)), navigation.Class(class))
		})),
		E("div", ID("admin-body"), body),
	)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func statusOptions(withAll bool) []Option {
	var opts []Option
	if withAll {
		opts = append(opts, Option{shipping.StatusAll, "All statuses"})
	}
	for _, s := range shipping.Statuses {
		opts = append(opts, Option{string(s), s.Label()})
	}
	return opts
}

func adminShipments(d AdminData) templ.Component {
	filter := Form{Values: url.Values{"q": {d.Filter.Search}, "status": {d.Filter.Status}}}
	var export any
	if d.StorageExport {
		export = E("button", Class("btn btn-small btn-link"), Hx("post", "/admin/exports"), Hx("swap", "none"), "Export to storage")
	}
	return Group(
		E("form", Class("filters"), A{"method", "get"}, A{"action", "/admin"},
			Hx("get", "/admin"), Hx("target", "#main"), Hx("push-url", "true"),
			Hx("trigger", "change, keyup changed delay:300ms from:input[name=q]"),
			E("input", Type("hidden"), Name("tab"), Value(TabShipments)),
			E("input", Type("search"), Name("q"), Value(d.Filter.Search), A{"placeholder", "Tracking #, recipient or email"}),
			filter.Field(Field{Name: "status", Label: "Status", Options: statusOptions(true)}),
			E("a", Href("/admin/export.csv?"+url.Values{"q": {d.Filter.Search}, "status": {d.Filter.Status}}.Encode()),
				Class("btn btn-small btn-accent"), "Download CSV"),
			export,
		),
		If(len(d.Shipments) == 0, Empty("No shipments match.")),
		If(len(d.Shipments) > 0, E("table",
			E("thead", E("tr", E("th", "Tracking #"), E("th", "Recipient"), E("th", "Route"), E("th", "Created"), E("th", "Update"), E("th", ""))),
			E("tbody", Map(d.Shipments, AdminShipmentRow)),
		)),
	)
}

// AdminShipmentRow is one editable row of the shipments tab.
func AdminShipmentRow(s shipping.Shipment) templ.Component {
	row := "shipment-" + s.ID
	form := Form{Values: url.Values{
		"status":             {string(s.Status)},
		"estimated_delivery": {isoDate(s.EstimatedDelivery)},
		"actual_delivery":    {isoDate(s.ActualDelivery)},
	}}
	return E("tr", ID(row),
		E("td", s.TrackingNumber, E("br"), Badge(s.Status.Label(), s.Status.Tone())),
		E("td", s.Recipient.Name, E("br"), E("span", Class("muted"), s.Recipient.Email)),
		E("td", s.Origin.Short(), " → ", s.Destination.Short()),
		E("td", formatDate(s.CreatedAt)),
		E("td",
			E("form", Class("filters"), Hx("post", "/admin/shipments/"+s.ID), Hx("target", "#"+row), Hx("swap", "outerHTML"),
				form.Field(Field{Name: "status", Label: "Status", Options: statusOptions(false)}),
				form.Field(Field{Name: "estimated_delivery", Label: "ETA", Type: "date"}),
				form.Field(Field{Name: "actual_delivery", Label: "Delivered", Type: "date"}),
				E("button", Type("submit"), Class("btn btn-small btn-primary"), "Save"),
			),
		),
		E("td", E("button", Class("btn btn-small btn-danger"),
			Hx("delete", "/admin/shipments/"+s.ID), Hx("target", "#"+row), Hx("swap", "outerHTML"),
			Hx("confirm", "Delete shipment "+s.TrackingNumber+"?"), "Delete")),
	)
}

func isoDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func adminPayments(list []shipping.Payment) templ.Component {
	if len(list) == 0 {
		return Empty("No payments recorded.")
	}
	return E("table",
		E("thead", E("tr", E("th", "Date"), E("th", "Shipment"), E("th", "Amount"), E("th", "Method"), E("th", "Status"))),
		E("tbody", Map(list, func(p shipping.Payment) templ.Component {
			return E("tr",
				E("td", formatDate(p.CreatedAt)),
				E("td", p.ShipmentID),
				E("td", formatMoney(p.Amount, p.Currency)),
				E("td", p.Method),
				E("td", Badge(titleCase(string(p.Status)), p.Status.Tone())),
			)
		})),
	)
}

func adminUsers(d AdminData) templ.Component {
	return Group(
		E("form", Class("filters"), Hx("post", "/admin/roles"), Hx("target", "#main"),
			E("input", Type("email"), Name("email"), A{"placeholder", "user@example.com"}, A{"aria-label", "Email"}, Flag("required")),
			E("button", Type("submit"), Name("role"), Value(string(shipping.RoleAdmin)), Class("btn btn-small btn-primary"), "Promote"),
			E("button", Type("submit"), Name("role"), Value(string(shipping.RoleUser)), Class("btn btn-small btn-link"), "Demote"),
		),
		E("table",
			E("thead", E("tr", E("th", "User"), E("th", "Role"), E("th", "Joined"), E("th", "Status"), E("th", "Actions"))),
			E("tbody", Map(d.Users, func(u shipping.User) templ.Component { return AdminUserRow(u, d.ActorID) })),
		),
		E("div", ID("user-history")),
		If(len(d.Logs) > 0, E("section",
			E("h2", "Recent admin activity"),
			E("ul", Map(d.Logs, func(l shipping.AdminLog) templ.Component {
				return E("li", E("span", Class("muted"), formatDateTime(l.Timestamp)), " ", l.Action, " ", l.Target, " ", details(l.Details))
			})),
		)),
	)
}

// AdminUserRow is one user with the role and access controls. The acting
// admin gets no controls on their own row.
func AdminUserRow(u shipping.User, actorID string) templ.Component {
	row := "user-" + u.ID
	status := Badge("Active", "green")
	if u.Disabled {
		status = Badge("Disabled", "red")
	}
	roleTone := "gray"
	if u.IsAdmin() {
		roleTone = "blue"
	}

	var actions templ.Component
	if u.ID != actorID {
		nextRole, roleLabel := shipping.RoleAdmin, "Make admin"
		if u.IsAdmin() {
			nextRole, roleLabel = shipping.RoleUser, "Make user"
		}
		toggleLabel := "Disable"
		if u.Disabled {
			toggleLabel = "Enable"
		}
		target := []A{Hx("target", "#"+row), Hx("swap", "outerHTML")}
		actions = Group(
			E("button", Class("btn btn-small btn-link"), Hx("post", "/admin/users/"+u.ID+"/role"),
				Hx("vals", fmt.Sprintf(`{"role":%q}`, nextRole)), target, roleLabel),
			" ",
			E("button", Class("btn btn-small btn-link"), Hx("post", "/admin/users/"+u.ID+"/toggle"), target, toggleLabel),
			" ",
			E("button", Class("btn btn-small btn-danger"), Hx("delete", "/admin/users/"+u.ID), target,
				Hx("confirm", "Delete "+u.Email+"? This cannot be undone."), "Delete"),
		)
	}

	return E("tr", ID(row),
		E("td", u.Name(), E("br"), E("span", Class("muted"), u.Email)),
		E("td", Badge(string(u.Role), roleTone)),
		E("td", formatDate(u.CreatedAt)),
		E("td", status),
		E("td",
			E("button", Class("btn btn-small btn-link"), Hx("get", "/admin/users/"+u.ID+"/history"), Hx("target", "#user-history"), "History"),
			" ",
			actions,
		),
	)
}

// UserHistory lists a user's activity, oldest first.
func UserHistory(u shipping.User, entries []shipping.HistoryEntry) templ.Component {
	return E("section", Class("card"), ID("user-history"),
		E("h2", "History for ", u.Email),
		If(len(entries) == 0, E("p", Class("muted"), "No activity recorded.")),
		E("ol", Map(entries, func(e shipping.HistoryEntry) templ.Component {
			return E("li", E("span", Class("muted"), formatDateTime(e.Timestamp)), " ", E("strong", e.Type), " ", details(e.Payload))
		})),
	)
}

func details(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, m[k])
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
