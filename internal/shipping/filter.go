package shipping

import "strings"

// StatusAll disables status filtering.
const StatusAll = "all"

// Filter narrows a shipment listing. Search is a case-insensitive substring
// over tracking number, recipient name and recipient email.
type Filter struct {
	Search string
	Status string
}

func (f Filter) Match(s Shipment) bool {
	if f.Status != "" && f.Status != StatusAll {
		st, err := ParseStatus(f.Status)
		if err != nil || s.Status != st {
			return false
		}
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return containsFold(s.TrackingNumber, q) ||
		containsFold(s.Recipient.Name, q) ||
		containsFold(s.Recipient.Email, q)
}

// Apply returns the matching shipments in their original order.
func (f Filter) Apply(list []Shipment) []Shipment {
	out := make([]Shipment, 0, len(list))
	for _, s := range list {
		if f.Match(s) {
			out = append(out, s)
		}
	}
	return out
}

// Stats summarizes a customer's shipments for the dashboard.
type Stats struct {
	Total     int
	InTransit int
	Delivered int
	Pending   int
}

// Summarize counts shipments by status. Only shipments exactly in transit
// count as in transit; out-for-delivery ones appear in Total alone.
func Summarize(list []Shipment) Stats {
	st := Stats{Total: len(list)}
	for _, s := range list {
		switch s.Status {
		case StatusInTransit:
			st.InTransit++
		case StatusDelivered:
			st.Delivered++
		case StatusPending:
			st.Pending++
		}
	}
	return st
}

// LocationFilter narrows the locations page. Type "all" or "" matches
// every type; Search matches name, city or country.
type LocationFilter struct {
	Type   string
	Search string
}

func (f LocationFilter) Match(l Location) bool {
	if f.Type != "" && f.Type != StatusAll && string(l.Type) != f.Type {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return containsFold(l.Name, q) || containsFold(l.City, q) || containsFold(l.Country, q)
}

func (f LocationFilter) Apply(list []Location) []Location {
	out := make([]Location, 0, len(list))
	for _, l := range list {
		if f.Match(l) {
			out = append(out, l)
		}
	}
	return out
}

func containsFold(s, lowerSub string) bool {
	return strings.Contains(strings.ToLower(s), lowerSub)
}
