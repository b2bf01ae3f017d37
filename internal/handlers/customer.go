package handlers

import (
	"errors"
	"net/http"

	"github.com/royalton/portal"
	"github.com/royalton/portal/internal/auth"
	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/internal/store"
	"github.com/royalton/portal/internal/views"
	"github.com/royalton/portal/pkg/toast"
	"github.com/royalton/portal/pkg/validator"
)

// Dashboard list sizes.
const (
	recentShipments     = 5
	recentNotifications = 5
	notificationsPage   = 50
)

func (s *Site) customerRoutes(r portal.Router) {
	r.Group(func(r portal.Router) {
		r.Use(auth.RequireAuth())
		r.POST("/notifications/read-all", s.readAllNotifications)
		r.POST("/notifications/{id}/read", s.readNotification)
		r.POST("/addresses", s.addAddress)
		r.POST("/addresses/{id}/default", s.defaultAddress)
		r.DELETE("/addresses/{id}", s.deleteAddress)
	})
}

func (s *Site) dashboard(c portal.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := s.Store.UserShipments(c, u.ID)
	if err != nil {
		return err
	}
	notes, err := s.Store.UserNotifications(c, u.ID, recentNotifications)
	if err != nil {
		return err
	}
	quotes, err := s.Store.UserQuotes(c, u.ID)
	if err != nil {
		return err
	}

	d := views.DashboardData{
		User:          *u,
		Stats:         shipping.Summarize(list),
		Shipments:     list[:min(len(list), recentShipments)],
		Notifications: notes,
		Quotes:        quotes,
	}
	return page(c, http.StatusOK, "Dashboard", views.Dashboard(d))
}

func (s *Site) shipments(c portal.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := s.Store.UserShipments(c, u.ID)
	if err != nil {
		return err
	}
	status := c.QueryDefault("status", shipping.StatusAll)
	list = shipping.Filter{Status: status}.Apply(list)
	return page(c, http.StatusOK, "Shipments", views.Shipments(list, status))
}

func (s *Site) notifications(c portal.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := s.Store.UserNotifications(c, u.ID, notificationsPage)
	if err != nil {
		return err
	}
	return page(c, http.StatusOK, "Notifications", views.Notifications(list))
}

func (s *Site) readNotification(c portal.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if err := s.Store.MarkNotificationRead(c, u.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return portal.ErrNotFound("Notification not found")
		}
		return err
	}
	if !c.IsHTMX() {
		return c.Redirect("/notifications")
	}
	list, err := s.Store.UserNotifications(c, u.ID, notificationsPage)
	if err != nil {
		return err
	}
	for _, n := range list {
		if n.ID == id {
			return c.Render(http.StatusOK, views.NotificationCard(n))
		}
	}
	return c.NoContent(http.StatusOK)
}

func (s *Site) readAllNotifications(c portal.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	n, err := s.Store.MarkAllNotificationsRead(c, u.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		notify(c, "All notifications marked as read", toast.Success)
	}
	if !c.IsHTMX() {
		return c.Redirect("/notifications")
	}
	list, err := s.Store.UserNotifications(c, u.ID, notificationsPage)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, views.Notifications(list))
}

func (s *Site) addresses(c portal.Context) error {
	return s.renderAddresses(c, http.StatusOK, views.Form{})
}

func (s *Site) renderAddresses(c portal.Context, code int, f views.Form) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := s.Store.SavedAddresses(c, u.ID)
	if err != nil {
		return err
	}
	return page(c, code, "Address book", views.Addresses(list, f))
}

func (s *Site) addAddress(c portal.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	a := shipping.SavedAddress{
		UserID:        u.ID,
		Label:         text(c, "label"),
		RecipientName: text(c, "recipient_name"),
		AddressLine1:  text(c, "address_line1"),
		AddressLine2:  text(c, "address_line2"),
		City:          text(c, "city"),
		State:         text(c, "state"),
		PostalCode:    text(c, "postal_code"),
		Country:       text(c, "country"),
		Phone:         text(c, "phone"),
		IsDefault:     portal.FormBool(c, "is_default"),
	}
	err = validator.Apply(
		validator.RequiredString("label", a.Label),
		validator.MaxLenString("label", a.Label, 60),
		validator.RequiredString("recipient_name", a.RecipientName),
		validator.RequiredString("address_line1", a.AddressLine1),
		validator.RequiredString("city", a.City),
		validator.RequiredString("postal_code", a.PostalCode),
		validator.RequiredString("country", a.Country),
		validator.MaxLenString("phone", a.Phone, 32),
	)
	if err != nil {
		return s.renderAddresses(c, http.StatusUnprocessableEntity, views.NewForm(posted(c), err))
	}
	if err := s.Store.AddSavedAddress(c, &a); err != nil {
		return err
	}
	notify(c, "Address saved", toast.Success)
	return s.renderAddresses(c, http.StatusOK, views.Form{})
}

// ownAddress loads one of the signed-in user's addresses.
func (s *Site) ownAddress(c portal.Context, userID string) (shipping.SavedAddress, error) {
	list, err := s.Store.SavedAddresses(c, userID)
	if err != nil {
		return shipping.SavedAddress{}, err
	}
	for _, a := range list {
		if a.ID == c.Param("id") {
			return a, nil
		}
	}
	return shipping.SavedAddress{}, portal.ErrNotFound("Address not found")
}

func (s *Site) defaultAddress(c portal.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	a, err := s.ownAddress(c, u.ID)
	if err != nil {
		return err
	}
	a.IsDefault = true
	if err := s.Store.UpdateSavedAddress(c, a); err != nil {
		return err
	}
	notify(c, a.Label+" is now your default address", toast.Success)
	return s.renderAddresses(c, http.StatusOK, views.Form{})
}

func (s *Site) deleteAddress(c portal.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	err = s.Store.DeleteSavedAddress(c, u.ID, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return portal.ErrNotFound("Address not found")
	}
	if err != nil {
		return err
	}
	notify(c, "Address deleted", toast.Info)
	return s.renderAddresses(c, http.StatusOK, views.Form{})
}
