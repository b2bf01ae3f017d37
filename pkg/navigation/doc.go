// Package navigation provides exact-path route matching and a back/forward
// location history with synchronous observers.
//
// A Table is an ordered list of path bindings declared once at startup.
// Matching is exact string equality on the pathname; the query string is
// never part of the key. When nothing matches, the binding registered under
// the fallback path (the root path by default) is used, and when that is
// absent too the not-found placeholder is returned. Matching never fails.
//
//	table := navigation.NewTable(
//	    []navigation.Binding[templ.Component]{
//	        {Path: "/", Content: views.Home()},
//	        {Path: "/track", Content: views.Track()},
//	    },
//	    navigation.WithNotFound(views.NotFound()),
//	)
//	m := table.Resolve("/track?number=TXP123")
//	// m.Kind == navigation.Exact, m.Location.Query().Get("number") == "TXP123"
//
// # History
//
// History is an explicitly constructed back/forward stack. Push always adds
// a new entry, Back and Forward only move the cursor. Every change notifies
// the registered observers after the state has been updated, so an observer
// reading Current always sees the new location.
//
//	h := navigation.NewHistory("/")
//	r := navigation.NewRouter(table, h)
//	defer r.Close()
//
//	h.Push("/track")
//	h.Back()
//	r.Current().Location.Path // "/"
//
// # Links
//
// Link renders a real anchor element with an href, so middle-click and
// open-in-new-tab keep working, and adds htmx attributes so a left click is
// performed as a partial swap with the address bar updated through
// hx-push-url.
package navigation
