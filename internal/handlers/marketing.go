package handlers

import (
	"net/http"
	"strings"

	"github.com/royalton/portal"
	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/internal/views"
)

func (s *Site) home(c portal.Context) error {
	return page(c, http.StatusOK, "", views.Home(s.Catalog.Services))
}

func (s *Site) services(c portal.Context) error {
	return page(c, http.StatusOK, "Services", views.Services(s.Catalog.Services))
}

func (s *Site) serviceDetail(svc shipping.Service) portal.HandlerFunc {
	return func(c portal.Context) error {
		return page(c, http.StatusOK, svc.Name, views.ServiceDetail(svc))
	}
}

func (s *Site) about(c portal.Context) error {
	return page(c, http.StatusOK, "About", views.About())
}

func (s *Site) privacy(c portal.Context) error {
	return page(c, http.StatusOK, "Privacy Policy", views.Privacy())
}

func (s *Site) terms(c portal.Context) error {
	return page(c, http.StatusOK, "Terms of Service", views.Terms())
}

func (s *Site) locations(c portal.Context) error {
	list, err := s.Store.ActiveLocations(c)
	if err != nil {
		return err
	}
	f := shipping.LocationFilter{
		Type:   strings.TrimSpace(c.Query("type")),
		Search: strings.TrimSpace(c.Query("q")),
	}
	return page(c, http.StatusOK, "Locations", views.Locations(f.Apply(list), f))
}
