package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/pkg/db"
	"github.com/royalton/portal/pkg/id"
)

const userColumns = `id, email, display_name, password_hash, COALESCE(google_id, ''), role, disabled, created_at`

func scanUser(row pgx.CollectableRow) (shipping.User, error) {
	var u shipping.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.GoogleID, &u.Role, &u.Disabled, &u.CreatedAt)
	return u, err
}

func (p *Postgres) user(ctx context.Context, where string, arg any) (shipping.User, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	if err != nil {
		return shipping.User{}, err
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	return u, notFound(err)
}

func (p *Postgres) CreateUser(ctx context.Context, u *shipping.User) error {
	if u.ID == "" {
		u.ID = id.NewULID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = p.now()
	}
	if u.Role == "" {
		u.Role = shipping.RoleUser
	}
	_, err := p.pool.Exec(ctx, `INSERT INTO users (id, email, display_name, password_hash, google_id, role, disabled, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)`,
		u.ID, u.Email, u.DisplayName, u.PasswordHash, u.GoogleID, string(u.Role), u.Disabled, u.CreatedAt)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: email %s", ErrDuplicate, u.Email)
	}
	return err
}

func (p *Postgres) UserByID(ctx context.Context, id string) (shipping.User, error) {
	return p.user(ctx, `id = $1`, id)
}

func (p *Postgres) UserByEmail(ctx context.Context, email string) (shipping.User, error) {
	return p.user(ctx, `lower(email) = lower($1)`, email)
}

func (p *Postgres) UserByGoogleID(ctx context.Context, googleID string) (shipping.User, error) {
	return p.user(ctx, `google_id = $1`, googleID)
}

func (p *Postgres) LinkGoogle(ctx context.Context, userID, googleID string) error {
	tag, err := p.pool.Exec(ctx, `UPDATE users SET google_id = $2 WHERE id = $1`, userID, googleID)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: google account already linked", ErrDuplicate)
	}
	if err != nil {
		return err
	}
	return affected(tag.RowsAffected())
}

func (p *Postgres) ListUsers(ctx context.Context) ([]shipping.User, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanUser)
}

func (p *Postgres) SetRole(ctx context.Context, userID string, role shipping.Role) error {
	tag, err := p.pool.Exec(ctx, `UPDATE users SET role = $2 WHERE id = $1`, userID, string(role))
	if err != nil {
		return err
	}
	return affected(tag.RowsAffected())
}

func (p *Postgres) SetDisabled(ctx context.Context, userID string, disabled bool) error {
	tag, err := p.pool.Exec(ctx, `UPDATE users SET disabled = $2 WHERE id = $1`, userID, disabled)
	if err != nil {
		return err
	}
	return affected(tag.RowsAffected())
}

func (p *Postgres) DeleteUser(ctx context.Context, userID string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	return affected(tag.RowsAffected())
}

func (p *Postgres) AppendHistory(ctx context.Context, userID string, e shipping.HistoryEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = p.now()
	}
	_, err := p.pool.Exec(ctx, `INSERT INTO user_history (user_id, type, payload, created_at) VALUES ($1, $2, $3, $4)`,
		userID, e.Type, e.Payload, e.Timestamp)
	return err
}

func (p *Postgres) UserHistory(ctx context.Context, userID string) ([]shipping.HistoryEntry, error) {
	rows, err := p.pool.Query(ctx, `SELECT type, payload, created_at FROM user_history
		WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (shipping.HistoryEntry, error) {
		var e shipping.HistoryEntry
		err := row.Scan(&e.Type, &e.Payload, &e.Timestamp)
		return e, err
	})
}

func (p *Postgres) LogAdminAction(ctx context.Context, l *shipping.AdminLog) error {
	if l.ID == "" {
		l.ID = id.NewULID()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = p.now()
	}
	_, err := p.pool.Exec(ctx, `INSERT INTO admin_logs (id, actor, action, target, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.Actor, l.Action, l.Target, l.Details, l.Timestamp)
	return err
}

func (p *Postgres) AdminLogs(ctx context.Context, limit int) ([]shipping.AdminLog, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, actor, action, target, details, created_at
		FROM admin_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (shipping.AdminLog, error) {
		var l shipping.AdminLog
		err := row.Scan(&l.ID, &l.Actor, &l.Action, &l.Target, &l.Details, &l.Timestamp)
		return l, err
	})
}
