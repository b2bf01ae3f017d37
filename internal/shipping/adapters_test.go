package shipping_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/royalton/portal/internal/shipping"
)

func ptr[T any](v T) *T { return &v }

func TestAdapters(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	eta := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
	want := shipping.Shipment{
		ID:                "s-1",
		UserID:            "u-1",
		TrackingNumber:    "TXP1767366245000417",
		Status:            shipping.StatusInTransit,
		ServiceType:       shipping.ServiceInternational,
		Origin:            shipping.Address{Address: "1 Dock Rd", City: "Leeds", Country: "UK"},
		Destination:       shipping.Address{Address: "9 Rue Haute", City: "Lyon", Country: "FR"},
		Recipient:         shipping.Recipient{Name: "Ada Byron", Email: "ada@example.com"},
		Weight:            ptr(4.5),
		Dimensions:        &shipping.Dimensions{Length: 10, Width: 20, Height: 30},
		EstimatedDelivery: &eta,
		CreatedAt:         created,
	}

	document := map[string]any{
		"id":                "s-1",
		"userId":            "u-1",
		"trackingNumber":    "TXP1767366245000417",
		"status":            "in-transit",
		"serviceType":       "international",
		"origin":            map[string]any{"address": "1 Dock Rd", "city": "Leeds", "country": "UK"},
		"destination":       map[string]any{"address": "9 Rue Haute", "city": "Lyon", "country": "FR"},
		"recipientName":     "Ada Byron",
		"recipientEmail":    "ada@example.com",
		"weight":            4.5,
		"dimensions":        map[string]any{"length": 10.0, "width": 20.0, "height": 30.0},
		"estimatedDelivery": "2026-01-09",
		"createdAt":         "2026-01-02T15:04:05Z",
	}

	flat := map[string]any{
		"id":                  "s-1",
		"user_id":             "u-1",
		"tracking_number":     "TXP1767366245000417",
		"status":              "in_transit",
		"service_type":        "international",
		"originAddress":       "1 Dock Rd",
		"origin_city":         "Leeds",
		"origin_country":      "UK",
		"destination_address": "9 Rue Haute",
		"destinationCity":     "Lyon",
		"destination_country": "FR",
		"recipient_name":      "Ada Byron",
		"recipient_email":     "ada@example.com",
		"weight":              "4.5",
		"length":              10,
		"width":               20,
		"height":              30,
		"estimated_delivery":  eta,
		"created_at":          created,
	}

	t.Run("document shape", func(t *testing.T) {
		t.Parallel()
		got, err := shipping.FromDocument(document)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("FromDocument mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("flat shape", func(t *testing.T) {
		t.Parallel()
		got, err := shipping.FromFlat(flat)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("FromFlat mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("flat round trip", func(t *testing.T) {
		t.Parallel()
		got, err := shipping.FromFlat(shipping.ToFlat(want))
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing status defaults to pending", func(t *testing.T) {
		t.Parallel()
		got, err := shipping.FromDocument(map[string]any{"trackingNumber": "TXP1"})
		require.NoError(t, err)
		require.Equal(t, shipping.StatusPending, got.Status)
		require.Nil(t, got.Dimensions)
		require.Nil(t, got.Weight)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := shipping.FromFlat(map[string]any{"tracking_number": "TXP1", "status": "teleported"})
		require.ErrorIs(t, err, shipping.ErrUnknownStatus)
	})
}
