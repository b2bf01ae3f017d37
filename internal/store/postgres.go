package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/pkg/db"
	"github.com/royalton/portal/pkg/id"
)

// Postgres implements Store on a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, now: time.Now}
}

// notFound maps pgx.ErrNoRows to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func affected(n int64) error {
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const shipmentColumns = `id, user_id, tracking_number, status, service_type,
	origin_address, origin_city, origin_country,
	destination_address, destination_city, destination_country,
	recipient_name, recipient_email, recipient_phone,
	weight, length, width, height, declared_value,
	pickup_date, estimated_delivery, actual_delivery, notes, created_at, updated_at`

// Rows are read as column maps and converted with shipping.FromFlat, the
// same adapter used for any other flat source.
func (p *Postgres) shipments(ctx context.Context, sql string, args ...any) ([]shipping.Shipment, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	out := make([]shipping.Shipment, 0, len(maps))
	for _, m := range maps {
		s, err := shipping.FromFlat(m)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (p *Postgres) shipment(ctx context.Context, sql string, args ...any) (shipping.Shipment, error) {
	list, err := p.shipments(ctx, sql, args...)
	if err != nil {
		return shipping.Shipment{}, err
	}
	if len(list) == 0 {
		return shipping.Shipment{}, ErrNotFound
	}
	return list[0], nil
}

func (p *Postgres) CreateShipment(ctx context.Context, s *shipping.Shipment) error {
	if s.ID == "" {
		s.ID = id.NewULID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = p.now()
	}
	s.UpdatedAt = s.CreatedAt

	row := shipping.ToFlat(*s)
	_, err := p.pool.Exec(ctx, `INSERT INTO shipments (`+shipmentColumns+`)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`,
		row["id"], row["user_id"], row["tracking_number"], row["status"], row["service_type"],
		row["origin_address"], row["origin_city"], row["origin_country"],
		row["destination_address"], row["destination_city"], row["destination_country"],
		row["recipient_name"], row["recipient_email"], row["recipient_phone"],
		row["weight"], row["length"], row["width"], row["height"], row["declared_value"],
		row["pickup_date"], row["estimated_delivery"], row["actual_delivery"], row["notes"],
		row["created_at"], row["updated_at"],
	)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: tracking number %s", ErrDuplicate, s.TrackingNumber)
	}
	return err
}

func (p *Postgres) ShipmentByID(ctx context.Context, id string) (shipping.Shipment, error) {
	return p.shipment(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id)
}

func (p *Postgres) ShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (shipping.Shipment, error) {
	return p.shipment(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE tracking_number = $1`, trackingNumber)
}

func (p *Postgres) UserShipments(ctx context.Context, userID string) ([]shipping.Shipment, error) {
	return p.shipments(ctx, `SELECT `+shipmentColumns+` FROM shipments
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (p *Postgres) ListShipments(ctx context.Context) ([]shipping.Shipment, error) {
	return p.shipments(ctx, `SELECT `+shipmentColumns+` FROM shipments ORDER BY created_at DESC`)
}

func (p *Postgres) UpdateShipment(ctx context.Context, id string, u ShipmentUpdate) (shipping.Shipment, error) {
	var status *string
	if u.Status != nil {
		s := string(*u.Status)
		status = &s
	}
	return p.shipment(ctx, `UPDATE shipments SET
			status = COALESCE($2, status),
			estimated_delivery = COALESCE($3, estimated_delivery),
			actual_delivery = COALESCE($4, actual_delivery),
			updated_at = $5
		WHERE id = $1
		RETURNING `+shipmentColumns,
		id, status, u.EstimatedDelivery, u.ActualDelivery, p.now())
}

func (p *Postgres) DeleteShipment(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM shipments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return affected(tag.RowsAffected())
}

func (p *Postgres) TrackingEvents(ctx context.Context, shipmentID string) ([]shipping.TrackingEvent, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, shipment_id, status, location, description, occurred_at
		FROM tracking_events WHERE shipment_id = $1 ORDER BY occurred_at DESC`, shipmentID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (shipping.TrackingEvent, error) {
		var e shipping.TrackingEvent
		err := row.Scan(&e.ID, &e.ShipmentID, &e.Status, &e.Location, &e.Description, &e.Timestamp)
		return e, err
	})
}

func (p *Postgres) AddTrackingEvent(ctx context.Context, e *shipping.TrackingEvent) error {
	if e.ID == "" {
		e.ID = id.NewULID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = p.now()
	}
	_, err := p.pool.Exec(ctx, `INSERT INTO tracking_events (id, shipment_id, status, location, description, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.ShipmentID, string(e.Status), e.Location, e.Description, e.Timestamp)
	return err
}

func (p *Postgres) AddQuote(ctx context.Context, q *shipping.Quote) error {
	if q.ID == "" {
		q.ID = id.NewULID()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = p.now()
	}
	_, err := p.pool.Exec(ctx, `INSERT INTO quotes (id, user_id, service_type,
			origin_city, origin_country, destination_city, destination_country,
			weight, declared_value, quoted_price, currency, status, valid_until, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		q.ID, q.UserID, string(q.ServiceType),
		q.Origin.City, q.Origin.Country, q.Destination.City, q.Destination.Country,
		q.Weight, q.DeclaredValue, q.Price, q.Currency, string(q.Status), q.ValidUntil, q.CreatedAt)
	return err
}

func (p *Postgres) UserQuotes(ctx context.Context, userID string) ([]shipping.Quote, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, COALESCE(user_id, ''), service_type,
			origin_city, origin_country, destination_city, destination_country,
			weight, declared_value, quoted_price, currency, status, valid_until, created_at
		FROM quotes WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (shipping.Quote, error) {
		var q shipping.Quote
		err := row.Scan(&q.ID, &q.UserID, &q.ServiceType,
			&q.Origin.City, &q.Origin.Country, &q.Destination.City, &q.Destination.Country,
			&q.Weight, &q.DeclaredValue, &q.Price, &q.Currency, &q.Status, &q.ValidUntil, &q.CreatedAt)
		return q, err
	})
}

func (p *Postgres) ExpireQuotes(ctx context.Context, now time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, `UPDATE quotes SET status = $1 WHERE status = $2 AND valid_until <= $3`,
		string(shipping.QuoteExpired), string(shipping.QuoteQuoted), now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Store = (*Postgres)(nil)
