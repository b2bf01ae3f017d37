// Package internal holds the application core behind the root portal package.
//
// Import "github.com/royalton/portal" instead; it re-exports the types below.
//
//   - App wires chi routing, sessions, toasts, jobs and graceful shutdown.
//   - Context wraps one request with rendering, navigation and toast helpers.
//   - Router is what Handler implementations use to declare routes.
//
// A single Context is created per request and shared by every middleware
// and the final handler, so values stored with Context.Set in a middleware
// are visible downstream.
//
// Navigation:
//
//	func (h *ShipHandler) create(c portal.Context) error {
//	    // ...
//	    _ = c.Toast("Shipment created successfully!", toast.Success)
//	    return c.Navigate("/dashboard")
//	}
//
// For htmx requests Navigate answers with an HX-Location instruction that
// swaps the new page into the main region and pushes it into history. Plain
// requests get 303 See Other.
package internal
