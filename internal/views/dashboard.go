package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/pkg/navigation"
)

// DashboardData is what the customer dashboard shows.
type DashboardData struct {
	User          shipping.User
	Stats         shipping.Stats
	Shipments     []shipping.Shipment
	Notifications []shipping.Notification
	Quotes        []shipping.Quote
}

func Dashboard(d DashboardData) templ.Component {
	return Group(
		E("h1", "Welcome back, ", d.User.Name()),
		E("div", Class("grid"),
			stat(strconv.Itoa(d.Stats.Total), "Total shipments"),
			stat(strconv.Itoa(d.Stats.InTransit), "In transit"),
			stat(strconv.Itoa(d.Stats.Delivered), "Delivered"),
			stat(strconv.Itoa(d.Stats.Pending), "Pending"),
		),
		E("div", Class("filters"),
			navigation.Link("/ship", navigation.Text("New shipment"), navigation.Class("btn btn-primary")),
			navigation.Link("/quote", navigation.Text("Get a quote"), navigation.Class("btn btn-accent")),
			navigation.Link("/addresses", navigation.Text("Address book"), navigation.Class("btn btn-link")),
		),
		E("div", Class("grid"),
			E("section",
				E("h2", "Recent shipments"),
				If(len(d.Shipments) == 0, Empty("No shipments yet.")),
				If(len(d.Shipments) > 0, shipmentTable(d.Shipments)),
				navigation.Link("/shipments", navigation.Text("View all shipments")),
			),
			E("section",
				E("h2", "Notifications"),
				If(len(d.Notifications) == 0, Empty("You're all caught up.")),
				Map(d.Notifications, notificationCard),
				navigation.Link("/notifications", navigation.Text("View all notifications")),
			),
		),
		If(len(d.Quotes) > 0, E("section",
			E("h2", "Saved quotes"),
			E("table",
				E("thead", E("tr", E("th", "Service"), E("th", "Route"), E("th", "Price"), E("th", "Valid until"), E("th", "Status"))),
				E("tbody", Map(d.Quotes, func(q shipping.Quote) templ.Component {
					tone := "green"
					if q.Status == shipping.QuoteExpired {
						tone = "gray"
					}
					return E("tr",
						E("td", q.ServiceType.Label()),
						E("td", q.Origin.Short(), " → ", q.Destination.Short()),
						E("td", formatMoney(q.Price, q.Currency)),
						E("td", formatDate(q.ValidUntil)),
						E("td", Badge(string(q.Status), tone)),
					)
				})),
			),
		)),
	)
}

func shipmentTable(list []shipping.Shipment) templ.Component {
	return E("table",
		E("thead", E("tr", E("th", "Tracking #"), E("th", "Route"), E("th", "Service"), E("th", "Status"), E("th", "ETA"))),
		E("tbody", Map(list, func(s shipping.Shipment) templ.Component {
			return E("tr",
				E("td", navigation.Link("/track?number="+s.TrackingNumber, navigation.Text(s.TrackingNumber))),
				E("td", s.Origin.Short(), " → ", s.Destination.Short()),
				E("td", s.ServiceType.Label()),
				E("td", Badge(s.Status.Label(), s.Status.Tone())),
				E("td", formatDatePtr(s.EstimatedDelivery)),
			)
		})),
	)
}

// Shipments is the customer's full shipment list with a status filter.
func Shipments(list []shipping.Shipment, status string) templ.Component {
	opts := []Option{{shipping.StatusAll, "All statuses"}}
	for _, s := range shipping.Statuses {
		opts = append(opts, Option{string(s), s.Label()})
	}
	form := Form{Values: map[string][]string{"status": {status}}}

	return Group(
		E("h1", "My shipments"),
		E("form", Class("filters"), A{"method", "get"}, A{"action", "/shipments"},
			Hx("get", "/shipments"), Hx("target", "#main"), Hx("push-url", "true"), Hx("trigger", "change"),
			form.Field(Field{Name: "status", Label: "Status", Options: opts}),
			E("noscript", E("button", Type("submit"), Class("btn btn-small btn-primary"), "Filter")),
		),
		If(len(list) == 0, Empty("No shipments match this filter.")),
		If(len(list) > 0, shipmentTable(list)),
	)
}
