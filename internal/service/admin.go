package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-gin-auth-service/internal/domain"
	"go-gin-auth-service/internal/events"
)

// AdminService backs the admin API and the dev token CLI.
type AdminService struct {
	users  domain.UserRepository
	tokens domain.TokenRepository
	issuer Tokens
	events events.Publisher
	log    *zap.Logger
}

func NewAdminService(users domain.UserRepository, tokens domain.TokenRepository, issuer Tokens, pub events.Publisher, log *zap.Logger) *AdminService {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminService{users: users, tokens: tokens, issuer: issuer, events: pub, log: log}
}

type UserPage struct {
	Total int64               `json:"total"`
	Items []domain.PublicUser `json:"items"`
}

func (s *AdminService) ListUsers(ctx context.Context, q string, offset, limit int) (UserPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	us, total, err := s.users.List(ctx, q, offset, limit)
	if err != nil {
		return UserPage{}, err
	}
	page := UserPage{Total: total, Items: make([]domain.PublicUser, 0, len(us))}
	for i := range us {
		page.Items = append(page.Items, us[i].Public())
	}
	return page, nil
}

// ChangeRole sets the user's role. The actor may not grant a role ranked
// above its own.
func (s *AdminService) ChangeRole(ctx context.Context, actor domain.PublicUser, userID, role string) (domain.PublicUser, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return domain.PublicUser{}, err
	}
	if r.Rank() > actor.Role.Rank() {
		return domain.PublicUser{}, fmt.Errorf("%w: cannot grant %s", domain.ErrForbidden, r)
	}
	u, err := s.users.Update(ctx, userID, domain.UserUpdate{Role: &r})
	if err != nil {
		return domain.PublicUser{}, err
	}
	s.log.Info("role changed", zap.String("user_id", u.ID), zap.String("role", string(r)), zap.String("by", actor.ID))
	s.publish(ctx, events.Event{Type: events.TypeRoleChanged, UserID: u.ID, Role: string(r)})
	return u.Public(), nil
}

// DeactivateUser disables the account and revokes all of its tokens.
func (s *AdminService) DeactivateUser(ctx context.Context, userID string) (domain.PublicUser, int64, error) {
	off := false
	u, err := s.users.Update(ctx, userID, domain.UserUpdate{IsActive: &off})
	if err != nil {
		return domain.PublicUser{}, 0, err
	}
	n, err := s.tokens.DeactivateByUser(ctx, userID)
	if err != nil {
		return domain.PublicUser{}, 0, err
	}
	s.log.Info("user deactivated", zap.String("user_id", userID), zap.Int64("revoked", n))
	s.publish(ctx, events.Event{Type: events.TypeUserDeactivated, UserID: userID, Count: n})
	return u.Public(), n, nil
}

func (s *AdminService) ListTokens(ctx context.Context, userID string) ([]domain.Token, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
	}
	return s.tokens.ListByUser(ctx, userID)
}

// MintToken issues a real, persisted token for an existing active user.
// Used by the dev CLI.
func (s *AdminService) MintToken(ctx context.Context, email string, opts ...IssueOption) (string, error) {
	norm, err := domain.NormalizeEmail(email)
	if err != nil {
		return "", err
	}
	u, err := s.users.FindByEmail(ctx, norm)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", fmt.Errorf("%w: user %s", domain.ErrNotFound, norm)
	}
	if !u.IsActive {
		return "", fmt.Errorf("%w: user %s is inactive", domain.ErrValidation, norm)
	}
	return s.issuer.Issue(ctx, u, opts...)
}

func (s *AdminService) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Warn("publish event failed", zap.String("type", e.Type), zap.Error(err))
	}
}
