package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/pkg/navigation"
)

type tool struct {
	path, title, blurb string
}

var quickTools = []tool{
	{"/track", "Track", "Follow a parcel from pickup to doorstep."},
	{"/ship", "Schedule Pickup", "Book a collection from your address."},
	{"/locations", "Find Location", "Service centers and drop-off points near you."},
	{"/quote", "Shipping Calculator", "Get a price in seconds."},
}

// Home is the landing page.
func Home(services []shipping.Service) templ.Component {
	return Group(
		E("section", Class("hero"),
			E("h1", "Shipping that arrives when you said it would"),
			E("p", "Road, sea, air and freight across 120 countries, tracked at every step."),
			trackForm(""),
		),
		E("section",
			E("h2", "Quick tools"),
			E("div", Class("grid"), Map(quickTools, func(t tool) templ.Component {
				return E("div", Class("card"),
					E("h3", navigation.Link(t.path, navigation.Text(t.title))),
					E("p", Class("muted"), t.blurb),
				)
			})),
		),
		E("section",
			E("h2", "Our services"),
			E("div", Class("grid"), Map(services, serviceCard)),
		),
		E("section", Class("grid"),
			stat("25+", "Years in logistics"),
			stat("120", "Countries served"),
			stat("99.2%", "On-time delivery"),
			stat("24/7", "Customer support"),
		),
	)
}

func stat(value, label string) templ.Component {
	return E("div", Class("card"), E("div", Class("stat"), value), E("div", Class("muted"), label))
}

func trackForm(number string) templ.Component {
	return E("form", A{"action", "/track"}, A{"method", "get"}, Class("filters"),
		Hx("get", "/track"), Hx("target", "#main"), Hx("push-url", "true"),
		E("input", Type("text"), Name("number"), Value(number), A{"placeholder", "Enter tracking number"},
			A{"aria-label", "Tracking number"}, Flag("required")),
		E("button", Type("submit"), Class("btn btn-accent"), "Track"),
	)
}

func serviceCard(s shipping.Service) templ.Component {
	return E("div", Class("card"),
		E("h3", s.Name),
		E("p", Class("muted"), s.Summary),
		E("p", E("strong", "Starting at $"+strconv.FormatFloat(s.Rate, 'f', -1, 64)+"/kg")),
		navigation.Link(s.Path(), navigation.Text("Learn more"), navigation.Class("btn btn-primary btn-small")),
	)
}

// Services lists the catalog.
func Services(services []shipping.Service) templ.Component {
	return Group(
		E("h1", "Shipping services"),
		E("p", Class("muted"), "Pick the speed and mode that fits your shipment."),
		E("div", Class("grid"), Map(services, func(s shipping.Service) templ.Component {
			return E("div", Class("card"),
				E("h3", s.Name),
				E("p", s.Summary),
				E("ul", Map(s.Features, func(f string) templ.Component { return E("li", f) })),
				E("p", E("strong", "Starting at $"+strconv.FormatFloat(s.Rate, 'f', -1, 64)+"/kg")),
				navigation.Link(s.Path(), navigation.Text("Details"), navigation.Class("btn btn-primary btn-small")),
			)
		})),
	)
}

// ServiceDetail is one service's page with a quote shortcut.
func ServiceDetail(s shipping.Service) templ.Component {
	return Group(
		navigation.Link("/services", navigation.Text("← All services")),
		E("h1", s.Name),
		E("p", s.Summary),
		E("div", Class("grid"),
			E("div", Class("card"),
				E("h3", "What's included"),
				E("ul", Map(s.Features, func(f string) templ.Component { return E("li", f) })),
			),
			E("div", Class("card"),
				E("h3", "Pricing"),
				E("p", Class("price"), "$"+strconv.FormatFloat(s.Rate, 'f', -1, 64)+"/kg"),
				E("p", Class("muted"), Textf("Typical transit %d days. A flat handling fee applies to every shipment.", s.TransitDays)),
				navigation.Link("/quote?service="+string(s.ID), navigation.Text("Get a quote"), navigation.Class("btn btn-accent")),
			),
		),
	)
}

// About is the company page.
func About() templ.Component {
	return Group(
		E("h1", "About ", Brand),
		E("p", "We started with a single truck and a promise to deliver on time. Today our network spans road, sea and air, with service centers on four continents."),
		E("div", Class("grid"),
			E("div", Class("card"), E("h3", "Mission"), E("p", "Move goods reliably and transparently, at a fair price.")),
			E("div", Class("card"), E("h3", "Network"), E("p", "Over 300 partner hubs and our own fleet for last-mile delivery.")),
			E("div", Class("card"), E("h3", "Sustainability"), E("p", "Route optimisation and consolidated freight cut emissions per parcel every year.")),
		),
	)
}

// Privacy is the privacy policy.
func Privacy() templ.Component {
	return legal("Privacy Policy",
		section("Information we collect", "Account details you provide, shipment addresses and recipient contacts, and tracking lookups you make while signed in."),
		section("How we use it", "To deliver your shipments, notify you about status changes, and answer support requests. We do not sell personal data."),
		section("Retention", "Shipment records are kept for seven years for customs and accounting purposes. Account history is deleted with the account."),
		section("Contact", "Write to privacy@royalton.example with any request about your data."),
	)
}

// Terms is the terms of service.
func Terms() templ.Component {
	return legal("Terms of Service",
		section("Quotes", "Quotes are estimates valid for seven days and assume the declared weight is accurate."),
		section("Prohibited items", "Hazardous materials, weapons, and perishables without prior arrangement are not accepted."),
		section("Liability", "Claims must be filed within 30 days of delivery. Coverage is limited to the declared value."),
		section("Accounts", "You are responsible for activity under your account. We may suspend accounts that break these terms."),
	)
}

func legal(title string, sections ...templ.Component) templ.Component {
	return Group(E("h1", title), E("p", Class("muted"), "Last updated January 1, 2026"), sections)
}

func section(title, body string) templ.Component {
	return E("section", E("h2", title), E("p", body))
}

// NotFound is shown when the route table has neither a match nor a
// fallback page.
func NotFound() templ.Component {
	return Group(
		E("h1", "Page not found"),
		E("p", "The page you are looking for does not exist."),
		navigation.Link("/", navigation.Text("Back to home"), navigation.Class("btn btn-primary")),
	)
}

// ErrorPage is the full-page rendering of a failed request.
func ErrorPage(code int, message string) templ.Component {
	return Page("Error", Group(
		E("h1", Textf("%d", code)),
		E("p", message),
		navigation.Link("/", navigation.Text("Back to home"), navigation.Class("btn btn-primary")),
	))
}
