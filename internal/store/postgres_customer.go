package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/pkg/db"
	"github.com/royalton/portal/pkg/id"
)

func (p *Postgres) UserNotifications(ctx context.Context, userID string, limit int) ([]shipping.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.pool.Query(ctx, `SELECT id, user_id, COALESCE(shipment_id, ''), type, title, message, link, is_read, created_at
		FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (shipping.Notification, error) {
		var n shipping.Notification
		err := row.Scan(&n.ID, &n.UserID, &n.ShipmentID, &n.Type, &n.Title, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt)
		return n, err
	})
}

func (p *Postgres) AddNotification(ctx context.Context, n *shipping.Notification) error {
	if n.ID == "" {
		n.ID = id.NewULID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = p.now()
	}
	_, err := p.pool.Exec(ctx, `INSERT INTO notifications (id, user_id, shipment_id, type, title, message, link, is_read, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9)`,
		n.ID, n.UserID, n.ShipmentID, string(n.Type), n.Title, n.Message, n.Link, n.IsRead, n.CreatedAt)
	return err
}

func (p *Postgres) MarkNotificationRead(ctx context.Context, userID, id string) error {
	tag, err := p.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return affected(tag.RowsAffected())
}

func (p *Postgres) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	tag, err := p.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) ActiveLocations(ctx context.Context) ([]shipping.Location, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, name, type, address, city, state, country, postal_code,
			phone, email, latitude, longitude, hours, services, is_active
		FROM locations WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (shipping.Location, error) {
		var l shipping.Location
		err := row.Scan(&l.ID, &l.Name, &l.Type, &l.Address, &l.City, &l.State, &l.Country, &l.PostalCode,
			&l.Phone, &l.Email, &l.Latitude, &l.Longitude, &l.Hours, &l.Services, &l.IsActive)
		return l, err
	})
}

const addressColumns = `id, user_id, label, recipient_name, address_line1, address_line2,
	city, state, postal_code, country, phone, is_default, created_at`

func (p *Postgres) SavedAddresses(ctx context.Context, userID string) ([]shipping.SavedAddress, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+addressColumns+` FROM saved_addresses
		WHERE user_id = $1 ORDER BY is_default DESC, created_at`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (shipping.SavedAddress, error) {
		var a shipping.SavedAddress
		err := row.Scan(&a.ID, &a.UserID, &a.Label, &a.RecipientName, &a.AddressLine1, &a.AddressLine2,
			&a.City, &a.State, &a.PostalCode, &a.Country, &a.Phone, &a.IsDefault, &a.CreatedAt)
		return a, err
	})
}

func (p *Postgres) AddSavedAddress(ctx context.Context, a *shipping.SavedAddress) error {
	if a.ID == "" {
		a.ID = id.NewULID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = p.now()
	}
	return db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		if err := clearDefault(ctx, tx, a); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `INSERT INTO saved_addresses (`+addressColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			a.ID, a.UserID, a.Label, a.RecipientName, a.AddressLine1, a.AddressLine2,
			a.City, a.State, a.PostalCode, a.Country, a.Phone, a.IsDefault, a.CreatedAt)
		return err
	})
}

func (p *Postgres) UpdateSavedAddress(ctx context.Context, a shipping.SavedAddress) error {
	return db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		if err := clearDefault(ctx, tx, &a); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `UPDATE saved_addresses SET label = $3, recipient_name = $4,
				address_line1 = $5, address_line2 = $6, city = $7, state = $8, postal_code = $9,
				country = $10, phone = $11, is_default = $12
			WHERE id = $1 AND user_id = $2`,
			a.ID, a.UserID, a.Label, a.RecipientName, a.AddressLine1, a.AddressLine2,
			a.City, a.State, a.PostalCode, a.Country, a.Phone, a.IsDefault)
		if err != nil {
			return err
		}
		return affected(tag.RowsAffected())
	})
}

func clearDefault(ctx context.Context, tx pgx.Tx, a *shipping.SavedAddress) error {
	if !a.IsDefault {
		return nil
	}
	_, err := tx.Exec(ctx, `UPDATE saved_addresses SET is_default = FALSE WHERE user_id = $1 AND id <> $2`, a.UserID, a.ID)
	return err
}

func (p *Postgres) DeleteSavedAddress(ctx context.Context, userID, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM saved_addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return affected(tag.RowsAffected())
}

func (p *Postgres) ListPayments(ctx context.Context) ([]shipping.Payment, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, COALESCE(shipment_id, ''), COALESCE(user_id, ''), amount, currency,
			status, payment_method, stripe_payment_id, created_at
		FROM payments ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (shipping.Payment, error) {
		var pm shipping.Payment
		err := row.Scan(&pm.ID, &pm.ShipmentID, &pm.UserID, &pm.Amount, &pm.Currency,
			&pm.Status, &pm.Method, &pm.ProviderPayment, &pm.CreatedAt)
		return pm, err
	})
}

func (p *Postgres) AddSupportTicket(ctx context.Context, t *shipping.SupportTicket) error {
	if t.ID == "" {
		t.ID = id.NewULID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = p.now()
	}
	_, err := p.pool.Exec(ctx, `INSERT INTO support_tickets (id, user_id, name, email, subject, message, tracking_number, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)`,
		t.ID, t.UserID, t.Name, t.Email, t.Subject, t.Message, t.TrackingNumber, t.CreatedAt)
	return err
}
