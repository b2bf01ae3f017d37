package shipping_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/royalton/portal/internal/shipping"
)

func TestFilter(t *testing.T) {
	t.Parallel()

	list := []shipping.Shipment{
		{TrackingNumber: "TXP100", Status: shipping.StatusPending, Recipient: shipping.Recipient{Name: "Ada Byron", Email: "ada@example.com"}},
		{TrackingNumber: "TXP200", Status: shipping.StatusInTransit, Recipient: shipping.Recipient{Name: "Grace Hopper"}},
		{TrackingNumber: "TXP300", Status: shipping.StatusDelivered, Recipient: shipping.Recipient{Name: "Alan", Email: "alan@EXAMPLE.org"}},
		{TrackingNumber: "TXP400", Status: shipping.StatusOutForDelivery, Recipient: shipping.Recipient{Name: "Edsger"}},
	}
	numbers := func(list []shipping.Shipment) []string {
		out := make([]string, 0, len(list))
		for _, s := range list {
			out = append(out, s.TrackingNumber)
		}
		return out
	}

	tests := []struct {
		name   string
		filter shipping.Filter
		want   []string
	}{
		{"empty filter keeps everything", shipping.Filter{}, []string{"TXP100", "TXP200", "TXP300", "TXP400"}},
		{"status all keeps everything", shipping.Filter{Status: "all"}, []string{"TXP100", "TXP200", "TXP300", "TXP400"}},
		{"status narrows", shipping.Filter{Status: "in_transit"}, []string{"TXP200"}},
		{"hyphenated status narrows", shipping.Filter{Status: "out-for-delivery"}, []string{"TXP400"}},
		{"unknown status matches nothing", shipping.Filter{Status: "lost"}, []string{}},
		{"search on tracking number", shipping.Filter{Search: "txp3"}, []string{"TXP300"}},
		{"search on recipient name", shipping.Filter{Search: "HOPPER"}, []string{"TXP200"}},
		{"search on recipient email", shipping.Filter{Search: "example.org"}, []string{"TXP300"}},
		{"search and status combine", shipping.Filter{Search: "example", Status: "pending"}, []string{"TXP100"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, numbers(tt.filter.Apply(list)))
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	list := []shipping.Shipment{
		{Status: shipping.StatusPending},
		{Status: shipping.StatusInTransit},
		{Status: shipping.StatusInTransit},
		{Status: shipping.StatusOutForDelivery},
		{Status: shipping.StatusDelivered},
		{Status: shipping.StatusCancelled},
	}

	require.Equal(t, shipping.Stats{Total: 6, InTransit: 2, Delivered: 1, Pending: 1}, shipping.Summarize(list))
	require.Equal(t, shipping.Stats{}, shipping.Summarize(nil))
}

func TestLocationFilter(t *testing.T) {
	t.Parallel()

	list := []shipping.Location{
		{Name: "Leeds Hub", City: "Leeds", Country: "UK", Type: shipping.LocationServiceCenter},
		{Name: "Corner Shop", City: "Lyon", Country: "France", Type: shipping.LocationDropOff},
		{Name: "Depot 9", City: "Porto", Country: "Portugal", Type: shipping.LocationPickup},
	}

	require.Len(t, shipping.LocationFilter{}.Apply(list), 3)
	require.Len(t, shipping.LocationFilter{Type: "all", Search: "port"}.Apply(list), 1)
	require.Equal(t, "Corner Shop", shipping.LocationFilter{Search: "FRANCE"}.Apply(list)[0].Name)
	require.Empty(t, shipping.LocationFilter{Type: "drop_off", Search: "leeds"}.Apply(list))
	require.Equal(t, "Service Center", shipping.LocationServiceCenter.Label())
}
