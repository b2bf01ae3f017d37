// Package toast provides a process-wide bus of short-lived user-facing
// messages.
//
// Any part of the application publishes a message with a category and an
// optional lifetime; every subscribed display surface sees the same stream
// of events. Messages expire automatically after their lifetime (3 seconds
// by default) or are dismissed early by id. Dismissal is idempotent.
//
//	bus := toast.New()
//	defer bus.Close()
//
//	id := bus.Publish("Shipment created", toast.Success)
//	bus.Active() // [{ID: id, Text: "Shipment created", ...}]
//	bus.Dismiss(id)
//	bus.Dismiss(id) // no-op
//
// Messages live only in process memory. Ordering of Active is insertion
// order, oldest first, and removal never reorders the remaining messages.
package toast
