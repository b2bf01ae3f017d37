package views

import (
	"github.com/a-h/templ"

	"github.com/royalton/portal/internal/shipping"
)

// Addresses is the address book with a form to add an entry.
func Addresses(list []shipping.SavedAddress, f Form) templ.Component {
	return Group(
		E("h1", "Address book"),
		If(len(list) == 0, Empty("No saved addresses yet.")),
		E("div", Class("grid"), Map(list, func(a shipping.SavedAddress) templ.Component {
			return E("div", Class("card"), ID("address-"+a.ID),
				E("h3", a.Label, " ", If(a.IsDefault, Badge("Default", "green"))),
				E("p", a.RecipientName),
				E("p", a.Address().String()),
				If(a.Phone != "", E("p", Class("muted"), a.Phone)),
				E("div", Class("filters"),
					If(!a.IsDefault, E("button", Class("btn btn-small btn-link"),
						Hx("post", "/addresses/"+a.ID+"/default"), Hx("target", "#main"), "Make default")),
					E("button", Class("btn btn-small btn-danger"),
						Hx("delete", "/addresses/"+a.ID), Hx("target", "#main"),
						Hx("confirm", "Delete this address?"), "Delete"),
				),
			)
		})),
		E("h2", "Add an address"),
		E("form", Class("stack"), A{"method", "post"}, A{"action", "/addresses"}, Hx("post", "/addresses"), Hx("target", "#main"),
			E("div", Class("row"),
				f.Field(Field{Name: "label", Label: "Label", Placeholder: "Home, Office...", Required: true}),
				f.Field(Field{Name: "recipient_name", Label: "Recipient name", Required: true}),
			),
			f.Field(Field{Name: "address_line1", Label: "Address line 1", Required: true}),
			f.Field(Field{Name: "address_line2", Label: "Address line 2"}),
			E("div", Class("row"),
				f.Field(Field{Name: "city", Label: "City", Required: true}),
				f.Field(Field{Name: "state", Label: "State / region"}),
				f.Field(Field{Name: "postal_code", Label: "Postal code", Required: true}),
				f.Field(Field{Name: "country", Label: "Country", Required: true}),
			),
			f.Field(Field{Name: "phone", Label: "Phone", Type: "tel"}),
			E("label", E("span", E("input", Type("checkbox"), Name("is_default"), Value("true")), " Use as default")),
			E("button", Type("submit"), Class("btn btn-primary"), "Save address"),
		),
	)
}
