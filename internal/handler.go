package internal

// Handler declares a group of routes.
//
//	type TrackHandler struct{ store store.Store }
//
//	func (h *TrackHandler) Routes(r portal.Router) {
//	    r.GET("/track", h.page)
//	    r.POST("/track", h.lookup)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc serves one request. A returned error goes to the ErrorHandler
// unless the response has already been written.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc. It may short-circuit by not calling next.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders errors returned from handlers.
type ErrorHandler func(Context, error) error
