package shipping_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/royalton/portal/internal/shipping"
)

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	w := 2.5
	eta := booked.AddDate(0, 0, 3)
	list := []shipping.Shipment{
		{
			TrackingNumber: "TXP1", Status: shipping.StatusInTransit, ServiceType: shipping.ServiceDomestic,
			Origin:      shipping.Address{Address: "1 Dock Rd", City: "Leeds", Country: "UK"},
			Destination: shipping.Address{City: "Hull", Country: "UK"},
			Recipient:   shipping.Recipient{Name: "Ada, Countess", Email: "ada@example.com"},
			Weight:      &w, EstimatedDelivery: &eta, CreatedAt: booked,
		},
		{TrackingNumber: "TXP2", Status: shipping.StatusPending, CreatedAt: booked},
	}

	var buf bytes.Buffer
	require.NoError(t, shipping.WriteCSV(&buf, list))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "tracking_number", rows[0][0])
	require.Equal(t, []string{
		"TXP1", "in_transit", "domestic", "1 Dock Rd, Leeds, UK", "Hull, UK", "Ada, Countess", "ada@example.com",
		"2.5", "", "2026-05-07", "", "2026-05-04T09:30:00Z",
	}, rows[1])
	require.Equal(t, "", rows[2][7])
}
