package shipping

import (
	_ "embed"
	"fmt"
	"math"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/royalton/portal/pkg/validator"
)

//go:embed services.yaml
var servicesYAML []byte

// Service is one entry of the service catalog.
type Service struct {
	ID          ServiceType `yaml:"id"`
	Name        string      `yaml:"name"`
	Summary     string      `yaml:"summary"`
	Features    []string    `yaml:"features"`
	Rate        float64     `yaml:"rate"`
	TransitDays int         `yaml:"transit_days"`
}

// Path is the service's detail page.
func (s Service) Path() string { return "/services/" + string(s.ID) }

// Catalog prices quotes. The zero value is not usable; see LoadCatalog.
type Catalog struct {
	Currency    string    `yaml:"currency"`
	Services    []Service `yaml:"services"`
	HandlingFee float64   `yaml:"handling_fee"`
	DefaultRate float64   `yaml:"default_rate"`
	ValidDays   int       `yaml:"quote_validity_days"`
}

// LoadCatalog parses a catalog document.
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("shipping: parse catalog: %w", err)
	}
	if c.Currency == "" {
		c.Currency = "USD"
	}
	if c.ValidDays <= 0 {
		c.ValidDays = 7
	}
	return &c, nil
}

// DefaultCatalog is the embedded catalog. It panics on a malformed file,
// which can only happen at build time.
func DefaultCatalog() *Catalog {
	c, err := LoadCatalog(servicesYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Service looks up a catalog entry.
func (c *Catalog) Service(id ServiceType) (Service, bool) {
	for _, s := range c.Services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

// Rate is the per-kilogram price; unknown services use DefaultRate.
func (c *Catalog) Rate(id ServiceType) float64 {
	if s, ok := c.Service(id); ok {
		return s.Rate
	}
	return c.DefaultRate
}

// Price is rate * weight + handling fee, rounded to cents.
func (c *Catalog) Price(id ServiceType, weight float64) float64 {
	return math.Round((c.Rate(id)*weight+c.HandlingFee)*100) / 100
}

// QuoteStatus is the state of a saved quote.
type QuoteStatus string

const (
	QuoteQuoted  QuoteStatus = "quoted"
	QuoteExpired QuoteStatus = "expired"
)

// QuoteRequest is the quote form.
type QuoteRequest struct {
	ServiceType   string
	Origin        Address
	Destination   Address
	Weight        float64
	DeclaredValue float64
}

func (r QuoteRequest) Validate() error {
	return validator.Apply(
		validator.OneOf("service_type", ServiceType(r.ServiceType), ServiceTypes...),
		validator.RequiredString("origin_city", r.Origin.City),
		validator.RequiredString("origin_country", r.Origin.Country),
		validator.RequiredString("destination_city", r.Destination.City),
		validator.RequiredString("destination_country", r.Destination.Country),
		validator.Positive("weight", r.Weight),
		validator.MinNum("declared_value", r.DeclaredValue, 0),
	)
}

// Quote is a saved price estimate. Anonymous visitors get quotes too, so
// UserID may be empty.
type Quote struct {
	CreatedAt     time.Time   `json:"createdAt"`
	ValidUntil    time.Time   `json:"validUntil"`
	DeclaredValue *float64    `json:"declaredValue,omitempty"`
	Origin        Address     `json:"origin"`
	Destination   Address     `json:"destination"`
	ID            string      `json:"id"`
	UserID        string      `json:"userId,omitempty"`
	ServiceType   ServiceType `json:"serviceType"`
	Status        QuoteStatus `json:"status"`
	Currency      string      `json:"currency"`
	Weight        float64     `json:"weight"`
	Price         float64     `json:"quotedPrice"`
}

// Quote prices r for userID.
func (c *Catalog) Quote(r QuoteRequest, userID string, now time.Time) Quote {
	service := ServiceType(r.ServiceType)
	q := Quote{
		UserID:      userID,
		ServiceType: service,
		Origin:      r.Origin,
		Destination: r.Destination,
		Weight:      r.Weight,
		Price:       c.Price(service, r.Weight),
		Currency:    c.Currency,
		Status:      QuoteQuoted,
		ValidUntil:  now.AddDate(0, 0, c.ValidDays),
		CreatedAt:   now,
	}
	if r.DeclaredValue > 0 {
		v := r.DeclaredValue
		q.DeclaredValue = &v
	}
	return q
}

// Expired reports whether the quote can no longer be honoured at now.
func (q Quote) Expired(now time.Time) bool {
	return q.Status == QuoteExpired || !now.Before(q.ValidUntil)
}
