// Package middlewares holds the portal's cross-cutting request handling.
//
//	app := portal.New(
//	    portal.WithLogger(logger.New(cfg.Log, middlewares.RequestIDExtractor())),
//	    portal.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Logger(),
//	        middlewares.Recover(),
//	    ),
//	    portal.WithErrorHandler(middlewares.HandleErrors(views.ErrorPage)),
//	)
//
// RequestID tags each request with an ID taken from the incoming headers or
// freshly generated. Recover turns panics into *PanicError values. Logger
// writes one line per request. HandleErrors renders returned errors: a full
// error page for normal requests, an error toast for htmx swaps.
package middlewares
