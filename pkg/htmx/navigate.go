package htmx

import (
	"encoding/json"
	"net/http"
)

// Location is the JSON form of the HX-Location header.
type Location struct {
	Path   string `json:"path"`
	Target string `json:"target,omitempty"`
	Swap   Swap   `json:"swap,omitempty"`
}

// Navigate sends the browser to path. htmx requests get an HX-Location
// instruction that fetches path into target and pushes it into history;
// other requests get 303 See Other.
func Navigate(w http.ResponseWriter, r *http.Request, path, target string) {
	if !IsHTMX(r) {
		http.Redirect(w, r, path, http.StatusSeeOther)
		return
	}
	value := path
	if target != "" {
		if data, err := json.Marshal(Location{Path: path, Target: target}); err == nil {
			value = string(data)
		}
	}
	w.Header().Set(HeaderLocation, value)
	w.WriteHeader(http.StatusOK)
}

// Redirect performs a full page load of url: HX-Redirect for htmx, 303
// otherwise. Use it when the layout itself changes, such as after sign-in.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if IsHTMX(r) {
		w.Header().Set(HeaderRedirect, url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
