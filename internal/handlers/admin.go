package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/royalton/portal"
	"github.com/royalton/portal/internal/auth"
	"github.com/royalton/portal/internal/jobs"
	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/internal/store"
	"github.com/royalton/portal/internal/views"
	"github.com/royalton/portal/pkg/job"
	"github.com/royalton/portal/pkg/toast"
)

const adminLogLimit = 20

func (s *Site) adminRoutes(r portal.Router) {
	r.Group(func(r portal.Router) {
		r.Use(auth.RequireAdmin())
		r.POST("/admin/shipments/{id}", s.updateShipment)
		r.DELETE("/admin/shipments/{id}", s.deleteShipment)
		r.POST("/admin/roles", s.changeRoleByEmail)
		r.POST("/admin/users/{id}/role", s.changeRole)
		r.POST("/admin/users/{id}/toggle", s.toggleUser)
		r.DELETE("/admin/users/{id}", s.deleteUser)
		r.GET("/admin/users/{id}/history", s.userHistory)
		r.GET("/admin/export.csv", s.exportCSV)
		r.POST("/admin/exports", s.exportToStorage)
	})
}

func adminTab(raw string) string {
	for _, t := range views.AdminTabs {
		if t == raw {
			return t
		}
	}
	return views.TabShipments
}

func (s *Site) admin(c portal.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	tab := adminTab(c.Query("tab"))
	d, err := s.adminData(c, tab, u.ID)
	if err != nil {
		return err
	}
	if c.Query("tab") != "" && !c.IsHTMX() {
		notify(c, "Opened "+tabLabel(tab)+" tab", toast.Info)
	}
	return page(c, http.StatusOK, "Admin", views.Admin(d))
}

func tabLabel(tab string) string {
	return strings.ToUpper(tab[:1]) + tab[1:]
}

func (s *Site) adminData(c portal.Context, tab, actorID string) (views.AdminData, error) {
	d := views.AdminData{
		Tab:           tab,
		ActorID:       actorID,
		StorageExport: s.StorageExport,
		Filter: shipping.Filter{
			Search: strings.TrimSpace(c.Query("q")),
			Status: c.QueryDefault("status", shipping.StatusAll),
		},
	}
	var err error
	switch tab {
	case views.TabPayments:
		d.Payments, err = s.Store.ListPayments(c)
	case views.TabUsers:
		if d.Users, err = s.Store.ListUsers(c); err == nil {
			d.Logs, err = s.Store.AdminLogs(c, adminLogLimit)
		}
	default:
		var all []shipping.Shipment
		if all, err = s.Store.ListShipments(c); err == nil {
			d.Shipments = d.Filter.Apply(all)
		}
	}
	return d, err
}

func (s *Site) updateShipment(c portal.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	before, err := s.Store.ShipmentByID(c, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return portal.ErrNotFound("Shipment not found")
	}
	if err != nil {
		return err
	}

	var upd store.ShipmentUpdate
	if raw := c.Form("status"); raw != "" {
		st, perr := shipping.ParseStatus(raw)
		if perr != nil {
			return portal.ErrBadRequest("Unknown status", portal.WithError(perr))
		}
		upd.Status = &st
	}
	upd.EstimatedDelivery = optionalDate(c, "estimated_delivery")
	upd.ActualDelivery = optionalDate(c, "actual_delivery")
	now := s.Now()
	if upd.Status != nil && *upd.Status == shipping.StatusDelivered && upd.ActualDelivery == nil && before.ActualDelivery == nil {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		upd.ActualDelivery = &today
	}

	after, err := s.Store.UpdateShipment(c, before.ID, upd)
	if err != nil {
		return err
	}
	s.forget(c, after.TrackingNumber)
	s.Auth.Audit(c, actor.ID, "update_shipment", after.ID, map[string]any{
		"trackingNumber": after.TrackingNumber,
		"status":         string(after.Status),
	})
	if after.Status != before.Status {
		s.announceStatus(c, after, now)
	}

	notify(c, "Shipment "+after.TrackingNumber+" updated", toast.Success)
	return c.Render(http.StatusOK, views.AdminShipmentRow(after))
}

// announceStatus records the scan and tells the owner. Both are side
// effects of an update that already succeeded, so failures are logged.
func (s *Site) announceStatus(c portal.Context, sh shipping.Shipment, now time.Time) {
	err := s.Store.AddTrackingEvent(c, &shipping.TrackingEvent{
		ShipmentID:  sh.ID,
		Status:      sh.Status,
		Location:    sh.Destination.Short(),
		Description: "Status changed to " + sh.Status.Label(),
		Timestamp:   now,
	})
	if err != nil {
		c.LogWarn("tracking event not saved", slog.String("shipment_id", sh.ID), slog.Any("error", err))
	}
	if sh.UserID == "" {
		return
	}

	n := shipping.Notification{
		UserID:     sh.UserID,
		ShipmentID: sh.ID,
		Type:       shipping.NotifyStatusChanged,
		Title:      "Shipment update",
		Message:    fmt.Sprintf("Shipment %s is now %s.", sh.TrackingNumber, strings.ToLower(sh.Status.Label())),
		Link:       "/track?number=" + url.QueryEscape(sh.TrackingNumber),
	}
	if sh.Delivered() {
		n.Type, n.Title = shipping.NotifyDelivered, "Delivered"
		n.Message = fmt.Sprintf("Shipment %s has been delivered.", sh.TrackingNumber)
	}
	if err := s.Store.AddNotification(c, &n); err != nil {
		c.LogWarn("status notification not saved", slog.String("shipment_id", sh.ID), slog.Any("error", err))
	}
}

func (s *Site) deleteShipment(c portal.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	sh, err := s.Store.ShipmentByID(c, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return portal.ErrNotFound("Shipment not found")
	}
	if err != nil {
		return err
	}
	if err := s.Store.DeleteShipment(c, sh.ID); err != nil {
		return err
	}
	s.forget(c, sh.TrackingNumber)
	s.Auth.Audit(c, actor.ID, "delete_shipment", sh.ID, map[string]any{"trackingNumber": sh.TrackingNumber})

	notify(c, "Shipment "+sh.TrackingNumber+" deleted", toast.Info)
	if !c.IsHTMX() {
		return c.Redirect("/admin")
	}
	return c.Render(http.StatusOK, templ.NopComponent)
}

// userError maps account errors to messages an admin can act on.
func userError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return portal.ErrNotFound("User not found")
	case errors.Is(err, auth.ErrSelfDemotion):
		return portal.ErrConflict("You cannot change your own account")
	default:
		return err
	}
}

func (s *Site) setRole(c portal.Context, actorID, email, role string) (shipping.User, error) {
	switch shipping.Role(role) {
	case shipping.RoleAdmin:
		u, err := s.Auth.Promote(c, actorID, email)
		if err == nil {
			notify(c, "User promoted to admin", toast.Success)
		}
		return u, userError(err)
	case shipping.RoleUser:
		u, err := s.Auth.Demote(c, actorID, email)
		if err == nil {
			notify(c, "User demoted to user", toast.Success)
		}
		return u, userError(err)
	default:
		return shipping.User{}, portal.ErrBadRequest("Unknown role")
	}
}

func (s *Site) changeRoleByEmail(c portal.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	email := strings.ToLower(text(c, "email"))
	if email == "" {
		return portal.ErrBadRequest("Enter an email address")
	}
	if _, err := s.setRole(c, actor.ID, email, c.Form("role")); err != nil {
		return err
	}
	d, err := s.adminData(c, views.TabUsers, actor.ID)
	if err != nil {
		return err
	}
	return page(c, http.StatusOK, "Admin", views.Admin(d))
}

func (s *Site) changeRole(c portal.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	target, err := s.Store.UserByID(c, c.Param("id"))
	if err != nil {
		return userError(err)
	}
	u, err := s.setRole(c, actor.ID, target.Email, c.Form("role"))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, views.AdminUserRow(u, actor.ID))
}

func (s *Site) toggleUser(c portal.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	target, err := s.Store.UserByID(c, c.Param("id"))
	if err != nil {
		return userError(err)
	}
	u, err := s.Auth.SetDisabled(c, actor.ID, target.ID, !target.Disabled)
	if err != nil {
		return userError(err)
	}
	if u.Disabled {
		notify(c, u.Email+" disabled", toast.Warning)
	} else {
		notify(c, u.Email+" enabled", toast.Success)
	}
	return c.Render(http.StatusOK, views.AdminUserRow(u, actor.ID))
}

func (s *Site) deleteUser(c portal.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := s.Auth.DeleteUser(c, actor.ID, c.Param("id")); err != nil {
		return userError(err)
	}
	notify(c, "User deleted", toast.Info)
	return c.Render(http.StatusOK, templ.NopComponent)
}

func (s *Site) userHistory(c portal.Context) error {
	u, err := s.Store.UserByID(c, c.Param("id"))
	if err != nil {
		return userError(err)
	}
	entries, err := s.Store.UserHistory(c, u.ID)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, views.UserHistory(u, entries))
}

func (s *Site) exportCSV(c portal.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	all, err := s.Store.ListShipments(c)
	if err != nil {
		return err
	}
	f := shipping.Filter{Search: strings.TrimSpace(c.Query("q")), Status: c.Query("status")}
	list := f.Apply(all)
	s.Auth.Audit(c, actor.ID, "export_shipments", "csv", map[string]any{"rows": len(list)})

	w := c.Response()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="shipments-`+s.Now().Format(time.DateOnly)+`.csv"`)
	w.WriteHeader(http.StatusOK)
	return shipping.WriteCSV(w, list)
}

func (s *Site) exportToStorage(c portal.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	req := jobs.ExportRequest{
		UserID: actor.ID,
		Search: strings.TrimSpace(c.Form("q")),
		Status: c.Form("status"),
	}
	if err := c.Enqueue(jobs.ExportShipmentsTask, req); err != nil {
		if errors.Is(err, job.ErrNotConfigured) {
			return portal.ErrServiceUnavailable("Exports to storage are not available")
		}
		return err
	}
	s.Auth.Audit(c, actor.ID, "export_shipments", "storage", map[string]any{"status": req.Status, "q": req.Search})
	// Stays until dismissed; the link arrives as a notification.
	notify(c, "Export started. You'll get a notification with the download link.", toast.Info, toast.WithLifetime(0))
	return c.Render(http.StatusAccepted, templ.NopComponent)
}
