// Package portal is the web core of the Royalton Logistics site: the public
// marketing pages, the customer portal and the admin console.
//
// It is a thin layer over chi, templ and htmx. Handlers declare routes and
// return errors; the App renders pages, keeps the session, and carries
// per-visitor toast notifications.
//
//	app := portal.New(
//	    portal.WithLogger(log),
//	    portal.WithSession(store),
//	    portal.WithToasts(toast.NewHub(0), toastRegion),
//	    portal.WithHandlers(handlers.New(deps)),
//	)
//	err := app.Run(":8080")
//
// # Navigation
//
// Context.Navigate moves the visitor to another page. For htmx requests the
// response is an HX-Location instruction that swaps the page body into
// #main and pushes a history entry, so the address bar and back button stay
// in sync. Without JavaScript the browser follows a 303 redirect.
//
// # Toasts
//
// Context.Toast publishes a notification to the current visitor only. The
// active set is appended to every htmx render as an out-of-band swap of
// #toasts and is also streamed over the toast websocket.
package portal
