package htmx

import "net/http"

// Response headers.
const (
	HeaderLocation   = "HX-Location"
	HeaderPushURL    = "HX-Push-Url"
	HeaderRedirect   = "HX-Redirect"
	HeaderRefresh    = "HX-Refresh"
	HeaderReplaceURL = "HX-Replace-Url"
	HeaderReswap     = "HX-Reswap"
	HeaderRetarget   = "HX-Retarget"
	HeaderTrigger    = "HX-Trigger"
)

// Request headers.
const (
	HeaderRequest        = "HX-Request"
	HeaderBoosted        = "HX-Boosted"
	HeaderCurrentURL     = "HX-Current-URL"
	HeaderHistoryRestore = "HX-History-Restore-Request"
	HeaderTarget         = "HX-Target"
)

// IsHTMX reports whether r was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HeaderRequest) == "true"
}

// IsPartial reports whether the response may omit the page layout. History
// restore requests need the full document.
func IsPartial(r *http.Request) bool {
	return IsHTMX(r) && r.Header.Get(HeaderHistoryRestore) != "true"
}

// Target returns the id of the element htmx will swap into, without '#'.
func Target(r *http.Request) string {
	return r.Header.Get(HeaderTarget)
}

// Swap is an hx-swap strategy.
type Swap string

const (
	SwapInnerHTML Swap = "innerHTML"
	SwapOuterHTML Swap = "outerHTML"
	SwapBeforeEnd Swap = "beforeend"
	SwapDelete    Swap = "delete"
	SwapNone      Swap = "none"
)
