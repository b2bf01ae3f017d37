package shipping

import (
	"time"

	"github.com/royalton/portal/pkg/validator"
)

// Draft is the booking form before it becomes a Shipment.
type Draft struct {
	PickupDate    time.Time
	Weight        float64
	Length        float64
	Width         float64
	Height        float64
	DeclaredValue float64
	Recipient     Recipient
	Origin        Address
	Destination   Address
	ServiceType   string
	Notes         string
}

// Validate checks the draft against the booking rules. today is the first
// acceptable pickup date.
func (d Draft) Validate(today time.Time) error {
	return validator.Apply(
		validator.OneOf("service_type", ServiceType(d.ServiceType), ServiceTypes...),
		validator.RequiredString("origin_address", d.Origin.Address),
		validator.RequiredString("origin_city", d.Origin.City),
		validator.RequiredString("origin_country", d.Origin.Country),
		validator.RequiredString("destination_address", d.Destination.Address),
		validator.RequiredString("destination_city", d.Destination.City),
		validator.RequiredString("destination_country", d.Destination.Country),
		validator.MinNum("weight", d.Weight, 0),
		validator.MinNum("declared_value", d.DeclaredValue, 0),
		validator.RequiredString("recipient_name", d.Recipient.Name),
		validator.Email("recipient_email", d.Recipient.Email),
		validator.MaxLenString("recipient_phone", d.Recipient.Phone, 32),
		validator.NotBefore("pickup_date", d.PickupDate, today),
		validator.MaxLenString("notes", d.Notes, 2000),
	)
}

// Book turns a validated draft into a pending shipment owned by userID.
// Dimensions are recorded only when all three are given.
func (d Draft) Book(userID string, now time.Time) Shipment {
	service := ServiceType(d.ServiceType)
	eta := EstimateDelivery(service, now)

	s := Shipment{
		UserID:            userID,
		TrackingNumber:    NewTrackingNumber(now),
		Status:            StatusPending,
		ServiceType:       service,
		Origin:            d.Origin,
		Destination:       d.Destination,
		Recipient:         d.Recipient,
		Notes:             d.Notes,
		EstimatedDelivery: &eta,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if d.Length > 0 && d.Width > 0 && d.Height > 0 {
		s.Dimensions = &Dimensions{Length: d.Length, Width: d.Width, Height: d.Height}
	}
	if d.Weight > 0 {
		w := d.Weight
		s.Weight = &w
	}
	if d.DeclaredValue > 0 {
		v := d.DeclaredValue
		s.DeclaredValue = &v
	}
	if !d.PickupDate.IsZero() {
		p := d.PickupDate
		s.PickupDate = &p
	}
	return s
}
