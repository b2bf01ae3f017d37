package views

import (
	"github.com/a-h/templ"

	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/pkg/navigation"
)

// Ship renders the booking form. Saved addresses link back to the form with
// the origin prefilled.
func Ship(services []shipping.Service, f Form, addresses []shipping.SavedAddress) templ.Component {
	return Group(
		E("h1", "Create a shipment"),
		If(len(addresses) > 0, E("div", Class("filters"),
			E("span", Class("muted"), "Ship from:"),
			Map(addresses, func(a shipping.SavedAddress) templ.Component {
				return navigation.Link("/ship?origin="+a.ID, navigation.Text(a.Label), navigation.Class("btn btn-small btn-link"))
			}),
		)),
		E("form", Class("stack"), A{"method", "post"}, A{"action", "/ship"}, Hx("post", "/ship"), Hx("target", "#main"),
			f.Field(Field{Name: "service_type", Label: "Service", Options: serviceOptions(services), Required: true}),
			E("fieldset",
				E("legend", "Pickup from"),
				f.Field(Field{Name: "origin_address", Label: "Street address", Required: true}),
				E("div", Class("row"),
					f.Field(Field{Name: "origin_city", Label: "City", Required: true}),
					f.Field(Field{Name: "origin_country", Label: "Country", Required: true}),
				),
				f.Field(Field{Name: "pickup_date", Label: "Pickup date", Type: "date"}),
			),
			E("fieldset",
				E("legend", "Deliver to"),
				f.Field(Field{Name: "recipient_name", Label: "Recipient name", Required: true}),
				E("div", Class("row"),
					f.Field(Field{Name: "recipient_email", Label: "Recipient email", Type: "email"}),
					f.Field(Field{Name: "recipient_phone", Label: "Recipient phone", Type: "tel"}),
				),
				f.Field(Field{Name: "destination_address", Label: "Street address", Required: true}),
				E("div", Class("row"),
					f.Field(Field{Name: "destination_city", Label: "City", Required: true}),
					f.Field(Field{Name: "destination_country", Label: "Country", Required: true}),
				),
			),
			E("fieldset",
				E("legend", "Package"),
				E("div", Class("row"),
					f.Field(Field{Name: "weight", Label: "Weight (kg)", Type: "number", Step: "0.1"}),
					f.Field(Field{Name: "declared_value", Label: "Declared value (USD)", Type: "number", Step: "0.01"}),
				),
				E("div", Class("row"),
					f.Field(Field{Name: "length", Label: "Length (cm)", Type: "number", Step: "0.1"}),
					f.Field(Field{Name: "width", Label: "Width (cm)", Type: "number", Step: "0.1"}),
					f.Field(Field{Name: "height", Label: "Height (cm)", Type: "number", Step: "0.1"}),
				),
				f.Field(Field{Name: "notes", Label: "Notes for the driver", Type: "textarea", Rows: 3}),
			),
			E("button", Type("submit"), Class("btn btn-primary"), "Create shipment"),
		),
	)
}
