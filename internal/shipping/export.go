package shipping

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

var exportHeader = []string{
	"tracking_number", "status", "service_type",
	"origin", "destination", "recipient_name", "recipient_email",
	"weight_kg", "declared_value", "estimated_delivery", "actual_delivery", "created_at",
}

// WriteCSV writes list as a CSV document with a header row.
func WriteCSV(w io.Writer, list []Shipment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, s := range list {
		if err := cw.Write([]string{
			s.TrackingNumber,
			string(s.Status),
			string(s.ServiceType),
			s.Origin.String(),
			s.Destination.String(),
			s.Recipient.Name,
			s.Recipient.Email,
			csvFloat(s.Weight),
			csvFloat(s.DeclaredValue),
			csvDate(s.EstimatedDelivery),
			csvDate(s.ActualDelivery),
			s.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func csvDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}
