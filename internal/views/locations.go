package views

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/royalton/portal/internal/shipping"
)

// Locations lists the network with a type filter and free-text search.
func Locations(list []shipping.Location, f shipping.LocationFilter) templ.Component {
	types := []Option{{"all", "All types"}}
	for _, t := range shipping.LocationTypes {
		types = append(types, Option{string(t), t.Label()})
	}
	form := Form{Values: map[string][]string{"type": {f.Type}, "q": {f.Search}}}

	return Group(
		E("h1", "Locations"),
		E("form", Class("filters"), A{"method", "get"}, A{"action", "/locations"},
			Hx("get", "/locations"), Hx("target", "#main"), Hx("push-url", "true"),
			Hx("trigger", "change, keyup changed delay:300ms from:input[name=q]"),
			E("input", Type("search"), Name("q"), Value(f.Search), A{"placeholder", "Search by name, city or country"}),
			form.Field(Field{Name: "type", Label: "Type", Options: types}),
		),
		If(len(list) == 0, Empty("No locations match your search.")),
		E("div", Class("grid"), Map(list, locationCard)),
	)
}

func locationCard(l shipping.Location) templ.Component {
	addr := []string{l.Address, l.City}
	if l.State != "" {
		addr = append(addr, l.State)
	}
	addr = append(addr, l.PostalCode, l.Country)

	return E("div", Class("card"),
		E("h3", l.Name),
		Badge(l.Type.Label(), "blue"),
		E("p", strings.Join(nonEmpty(addr), ", ")),
		If(l.Phone != "", E("p", "Phone: ", E("a", Href("tel:"+l.Phone), l.Phone))),
		If(l.Email != "", E("p", "Email: ", E("a", Href("mailto:"+l.Email), l.Email))),
		If(len(l.Hours) > 0, E("dl", hours(l.Hours))),
		If(len(l.Services) > 0, E("p", Class("muted"), strings.Join(l.Services, " · "))),
	)
}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func hours(h map[string]string) []templ.Component {
	out := make([]templ.Component, 0, len(h)*2)
	for _, day := range weekdays {
		if v, ok := h[day]; ok {
			out = append(out, E("dt", strings.ToUpper(day[:1])+day[1:]), E("dd", v))
		}
	}
	return out
}

func nonEmpty(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
