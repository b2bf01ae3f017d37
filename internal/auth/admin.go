package auth

import (
	"context"
	"log/slog"

	"github.com/royalton/portal/internal/shipping"
)

// Promote gives the account with email the admin role.
func (s *Service) Promote(ctx context.Context, actor, email string) (shipping.User, error) {
	return s.setRole(ctx, actor, email, shipping.RoleAdmin, "promote_user")
}

// Demote returns the account with email to the user role.
func (s *Service) Demote(ctx context.Context, actor, email string) (shipping.User, error) {
	return s.setRole(ctx, actor, email, shipping.RoleUser, "demote_user")
}

func (s *Service) setRole(ctx context.Context, actor, email string, role shipping.Role, action string) (shipping.User, error) {
	u, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		return shipping.User{}, err
	}
	if u.ID == actor {
		return shipping.User{}, ErrSelfDemotion
	}
	if err := s.store.SetRole(ctx, u.ID, role); err != nil {
		return shipping.User{}, err
	}
	u.Role = role

	s.audit(ctx, actor, action, u.ID, map[string]any{"email": u.Email})
	s.Record(ctx, u.ID, EventRoleChanged, map[string]any{"by": actor, "to": string(role)})
	return u, nil
}

// SetDisabled blocks or unblocks sign-in for userID.
func (s *Service) SetDisabled(ctx context.Context, actor, userID string, disabled bool) (shipping.User, error) {
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return shipping.User{}, err
	}
	if u.ID == actor {
		return shipping.User{}, ErrSelfDemotion
	}
	if err := s.store.SetDisabled(ctx, userID, disabled); err != nil {
		return shipping.User{}, err
	}
	u.Disabled = disabled

	action := EventEnabled
	if disabled {
		action = EventDisabled
	}
	s.audit(ctx, actor, action, userID, map[string]any{"email": u.Email})
	s.Record(ctx, userID, action, map[string]any{"by": actor})
	return u, nil
}

// DeleteUser removes the account and its history.
func (s *Service) DeleteUser(ctx context.Context, actor, userID string) error {
	if userID == actor {
		return ErrSelfDemotion
	}
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.audit(ctx, actor, "delete_user", userID, map[string]any{"email": u.Email})
	return nil
}

// Audit writes an admin log entry; failures are logged, not returned.
func (s *Service) Audit(ctx context.Context, actor, action, target string, details map[string]any) {
	s.audit(ctx, actor, action, target, details)
}

func (s *Service) audit(ctx context.Context, actor, action, target string, details map[string]any) {
	entry := &shipping.AdminLog{Actor: actor, Action: action, Target: target, Details: details, Timestamp: s.now()}
	if err := s.store.LogAdminAction(ctx, entry); err != nil {
		s.log.WarnContext(ctx, "admin log not saved",
			slog.String("action", action), slog.String("target", target), slog.Any("error", err))
	}
}
