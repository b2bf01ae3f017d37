package views

import (
	"github.com/a-h/templ"

	"github.com/royalton/portal/internal/shipping"
)

func serviceOptions(services []shipping.Service) []Option {
	opts := make([]Option, 0, len(services)+1)
	opts = append(opts, Option{"", "Select a service"})
	for _, s := range services {
		opts = append(opts, Option{string(s.ID), s.Name})
	}
	return opts
}

// Quote renders the calculator and, after a submission, the priced quote.
func Quote(services []shipping.Service, f Form, q *shipping.Quote) templ.Component {
	return Group(
		E("h1", "Shipping calculator"),
		E("div", Class("grid"),
			E("form", Class("stack card"), A{"method", "post"}, A{"action", "/quote"},
				Hx("post", "/quote"), Hx("target", "#main"),
				f.Field(Field{Name: "service_type", Label: "Service", Options: serviceOptions(services), Required: true}),
				E("div", Class("row"),
					f.Field(Field{Name: "origin_city", Label: "Origin city", Required: true}),
					f.Field(Field{Name: "origin_country", Label: "Origin country", Required: true}),
				),
				E("div", Class("row"),
					f.Field(Field{Name: "destination_city", Label: "Destination city", Required: true}),
					f.Field(Field{Name: "destination_country", Label: "Destination country", Required: true}),
				),
				E("div", Class("row"),
					f.Field(Field{Name: "weight", Label: "Weight (kg)", Type: "number", Step: "0.1", Required: true}),
					f.Field(Field{Name: "declared_value", Label: "Declared value (USD)", Type: "number", Step: "0.01"}),
				),
				E("button", Type("submit"), Class("btn btn-primary"), "Calculate price"),
			),
			quoteResult(q),
		),
	)
}

func quoteResult(q *shipping.Quote) templ.Component {
	if q == nil {
		return E("div", Class("card"),
			E("h3", "How pricing works"),
			E("p", Class("muted"), "Price is the service rate per kilogram times the weight, plus a flat handling fee."),
		)
	}
	return E("div", Class("card"), ID("quote-result"),
		E("h3", "Your quote"),
		E("p", Class("price"), formatMoney(q.Price, q.Currency)),
		E("p", q.ServiceType.Label(), " service, ", Textf("%g kg", q.Weight)),
		If(q.Origin.Short() != "" || q.Destination.Short() != "",
			E("p", Class("muted"), q.Origin.Short(), " → ", q.Destination.Short())),
		E("p", Class("muted"), "Valid until ", formatDate(q.ValidUntil)),
		E("a", Href("/ship"), Class("btn btn-accent"), "Book this shipment"),
	)
}
