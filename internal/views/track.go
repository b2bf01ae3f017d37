package views

import (
	"github.com/a-h/templ"

	"github.com/royalton/portal/internal/shipping"
)

// TrackNotFound is shown when a lookup finds nothing.
const TrackNotFound = "Tracking number not found. Please check and try again."

// Tracking is the outcome of a lookup.
type Tracking struct {
	Shipment *shipping.Shipment
	Number   string
	Events   []shipping.TrackingEvent
}

// Track renders the lookup form and, once a number was submitted, the result.
func Track(t Tracking) templ.Component {
	return Group(
		E("h1", "Track a shipment"),
		trackForm(t.Number),
		E("div", ID("track-result"), trackResult(t)),
	)
}

func trackResult(t Tracking) templ.Component {
	if t.Number == "" {
		return E("p", Class("muted"), "Enter the tracking number from your receipt, e.g. TXP1714567890123.")
	}
	if t.Shipment == nil {
		return E("p", Class("card field-error"), TrackNotFound)
	}
	s := t.Shipment
	return E("div", Class("card"),
		E("h2", s.TrackingNumber, " ", Badge(s.Status.Label(), s.Status.Tone())),
		E("div", Class("grid"),
			E("div", E("strong", "From"), E("p", s.Origin.Short())),
			E("div", E("strong", "To"), E("p", s.Destination.Short())),
			E("div", E("strong", "Service"), E("p", s.ServiceType.Label())),
			E("div", E("strong", "Estimated delivery"), E("p", formatDatePtr(s.EstimatedDelivery))),
			If(s.ActualDelivery != nil, E("div", E("strong", "Delivered"), E("p", formatDatePtr(s.ActualDelivery)))),
		),
		E("h3", "History"),
		timeline(t.Events),
	)
}

func timeline(events []shipping.TrackingEvent) templ.Component {
	if len(events) == 0 {
		return E("p", Class("muted"), "No scans yet. Updates appear here once the parcel is picked up.")
	}
	return E("ol", Class("timeline"), Map(events, func(e shipping.TrackingEvent) templ.Component {
		return E("li",
			E("div", Badge(e.Status.Label(), e.Status.Tone()), " ", E("span", Class("muted"), formatDateTime(e.Timestamp))),
			E("div", e.Location),
			If(e.Description != "", E("div", Class("muted"), e.Description)),
		)
	}))
}
