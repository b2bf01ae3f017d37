package views

import (
	"github.com/a-h/templ"
)

type faq struct{ q, a string }

var faqs = []faq{
	{"How do I track my package?", "Enter your tracking number on the Track page. Numbers start with TXP and are printed on your receipt and confirmation email."},
	{"How are shipping rates calculated?", "Rates depend on the service and the weight: the per-kilogram rate times the weight plus a flat handling fee. Use the shipping calculator for an exact quote."},
	{"How long does international shipping take?", "International sea transport usually takes 5 to 7 business days door to door. Express air freight arrives the next business day for most destinations."},
	{"Can I schedule a pickup?", "Yes. Sign in, open Ship and choose a pickup date. A driver collects the parcel from the origin address that day."},
	{"What items are prohibited?", "Hazardous materials, weapons, cash and perishables without prior arrangement. Contact support if you are unsure about an item."},
	{"How do I file a claim?", "Send us a support request with your tracking number within 30 days of delivery. Claims are covered up to the declared value."},
}

// Support shows the FAQ and the contact form.
func Support(f Form, sent bool) templ.Component {
	var body templ.Component
	if sent {
		body = E("div", Class("card"), ID("support-form"),
			E("h3", "Thanks, we got your message"),
			E("p", "Our team replies within one business day."),
		)
	} else {
		body = E("form", Class("stack card"), ID("support-form"), A{"method", "post"}, A{"action", "/support"},
			Hx("post", "/support"), Hx("target", "#main"),
			E("h3", "Contact support"),
			E("div", Class("row"),
				f.Field(Field{Name: "name", Label: "Name", Required: true}),
				f.Field(Field{Name: "email", Label: "Email", Type: "email", Required: true}),
			),
			f.Field(Field{Name: "subject", Label: "Subject", Required: true}),
			f.Field(Field{Name: "tracking_number", Label: "Tracking number (optional)"}),
			f.Field(Field{Name: "message", Label: "Message", Type: "textarea", Rows: 6, Required: true}),
			E("button", Type("submit"), Class("btn btn-primary"), "Send"),
		)
	}

	return Group(
		E("h1", "Support"),
		E("div", Class("grid"),
			E("section",
				E("h2", "Frequently asked questions"),
				Map(faqs, func(q faq) templ.Component {
					return E("details", Class("card"), E("summary", E("strong", q.q)), E("p", q.a))
				}),
			),
			E("section",
				body,
				E("div", Class("card"),
					E("h3", "Other ways to reach us"),
					E("p", "Phone: +1 800 555 0199, daily 7:00 to 22:00"),
					E("p", "Email: support@royalton.example"),
				),
			),
		),
	)
}
