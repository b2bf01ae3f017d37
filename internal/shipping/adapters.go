package shipping

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Shipments arrive in two shapes: documents with nested origin/destination
// objects, and flat rows with prefixed columns (originAddress or
// origin_address). Both are converted to Shipment here so nothing else
// branches on the source shape.

// FromDocument reads the nested shape:
//
//	{"trackingNumber": "...", "origin": {"address": "...", "city": "..."}, ...}
func FromDocument(doc map[string]any) (Shipment, error) {
	f := normalize(doc)
	s, err := common(f)
	if err != nil {
		return Shipment{}, err
	}
	s.Origin = addressFrom(normalize(asMap(f["origin"])))
	s.Destination = addressFrom(normalize(asMap(f["destination"])))
	if dims := normalize(asMap(f["dimensions"])); len(dims) > 0 {
		s.Dimensions = dimensionsFrom(dims)
	}
	return s, nil
}

// FromFlat reads the flat shape with origin_/destination_ prefixed keys.
func FromFlat(row map[string]any) (Shipment, error) {
	f := normalize(row)
	s, err := common(f)
	if err != nil {
		return Shipment{}, err
	}
	s.Origin = addressFrom(prefixed(f, "origin"))
	s.Destination = addressFrom(prefixed(f, "destination"))
	s.Dimensions = dimensionsFrom(f)
	return s, nil
}

// ToFlat maps s to the relational column set.
func ToFlat(s Shipment) map[string]any {
	row := map[string]any{
		"id":                  s.ID,
		"user_id":             s.UserID,
		"tracking_number":     s.TrackingNumber,
		"status":              string(s.Status),
		"service_type":        string(s.ServiceType),
		"origin_address":      s.Origin.Address,
		"origin_city":         s.Origin.City,
		"origin_country":      s.Origin.Country,
		"destination_address": s.Destination.Address,
		"destination_city":    s.Destination.City,
		"destination_country": s.Destination.Country,
		"recipient_name":      s.Recipient.Name,
		"recipient_email":     s.Recipient.Email,
		"recipient_phone":     s.Recipient.Phone,
		"weight":              s.Weight,
		"declared_value":      s.DeclaredValue,
		"pickup_date":         s.PickupDate,
		"estimated_delivery":  s.EstimatedDelivery,
		"actual_delivery":     s.ActualDelivery,
		"notes":               s.Notes,
		"created_at":          s.CreatedAt,
		"updated_at":          s.UpdatedAt,
	}
	var l, w, h *float64
	if d := s.Dimensions; d != nil {
		l, w, h = &d.Length, &d.Width, &d.Height
	}
	row["length"], row["width"], row["height"] = l, w, h
	return row
}

func common(f map[string]any) (Shipment, error) {
	s := Shipment{
		ID:             str(f, "id"),
		UserID:         str(f, "userid"),
		TrackingNumber: str(f, "trackingnumber"),
		Notes:          str(f, "notes"),
		Recipient: Recipient{
			Name:  str(f, "recipientname"),
			Email: str(f, "recipientemail"),
			Phone: str(f, "recipientphone"),
		},
		Weight:            num(f, "weight"),
		DeclaredValue:     num(f, "declaredvalue"),
		PickupDate:        date(f, "pickupdate"),
		EstimatedDelivery: date(f, "estimateddelivery"),
		ActualDelivery:    date(f, "actualdelivery"),
	}
	if t := date(f, "createdat"); t != nil {
		s.CreatedAt = *t
	}
	if t := date(f, "updatedat"); t != nil {
		s.UpdatedAt = *t
	}

	s.Status = StatusPending
	if raw := str(f, "status"); raw != "" {
		st, err := ParseStatus(raw)
		if err != nil {
			return Shipment{}, fmt.Errorf("shipment %s: %w", s.TrackingNumber, err)
		}
		s.Status = st
	}
	if raw := str(f, "servicetype"); raw != "" {
		st, err := ParseServiceType(raw)
		if err != nil {
			return Shipment{}, fmt.Errorf("shipment %s: %w", s.TrackingNumber, err)
		}
		s.ServiceType = st
	}
	return s, nil
}

func addressFrom(f map[string]any) Address {
	return Address{Address: str(f, "address"), City: str(f, "city"), Country: str(f, "country")}
}

func dimensionsFrom(f map[string]any) *Dimensions {
	l, w, h := num(f, "length"), num(f, "width"), num(f, "height")
	if l == nil || w == nil || h == nil {
		return nil
	}
	return &Dimensions{Length: *l, Width: *w, Height: *h}
}

// normalize folds keys so that trackingNumber, tracking_number and
// TRACKING-NUMBER compare equal.
func normalize(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		k = strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(k))
		out[k] = v
	}
	return out
}

func prefixed(f map[string]any, prefix string) map[string]any {
	out := map[string]any{}
	for k, v := range f {
		if rest, ok := strings.CutPrefix(k, prefix); ok && rest != "" {
			out[rest] = v
		}
	}
	return out
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func str(f map[string]any, key string) string {
	switch v := f[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func num(f map[string]any, key string) *float64 {
	var n float64
	switch v := f[key].(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		p, err := v.Float64()
		if err != nil {
			return nil
		}
		n = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		n = p
	case *float64:
		return v
	default:
		return nil
	}
	return &n
}

var dateLayouts = []string{time.RFC3339Nano, time.DateTime, time.DateOnly}

func date(f map[string]any, key string) *time.Time {
	switch v := f[key].(type) {
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return &v
	case *time.Time:
		return v
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return &t
			}
		}
	}
	return nil
}
