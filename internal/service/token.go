package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-gin-auth-service/internal/core/auth"
	"go-gin-auth-service/internal/domain"
	"go-gin-auth-service/pkg/utils"
)

// TokenService bridges persisted token records and the signed strings
// handed to clients. A token is usable only while it decodes and its
// record exists and is active.
type TokenService struct {
	repo domain.TokenRepository
	jwt  Codec
	ttl  time.Duration
	now  func() time.Time
}

// Codec signs and parses bearer strings. *auth.JWTer is the production codec.
type Codec interface {
	Sign(userID, tokenID string, exp time.Time) (string, error)
	Parse(encoded string) (*auth.Claims, error)
}

func NewTokenService(repo domain.TokenRepository, jwt Codec, defaultTTL time.Duration) *TokenService {
	return &TokenService{
		repo: repo,
		jwt:  jwt,
		ttl:  defaultTTL,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

type issueOpts struct {
	ttl time.Duration
	ip  string
}

type IssueOption func(*issueOpts)

// WithTTL overrides the configured token lifetime. Non-positive values are
// rejected by Issue.
func WithTTL(d time.Duration) IssueOption { return func(o *issueOpts) { o.ttl = d } }

func WithIPAddress(ip string) IssueOption { return func(o *issueOpts) { o.ip = ip } }

func (s *TokenService) Issue(ctx context.Context, u *domain.User, opts ...IssueOption) (string, error) {
	o := issueOpts{ttl: s.ttl}
	for _, fn := range opts {
		fn(&o)
	}
	if o.ttl <= 0 {
		return "", fmt.Errorf("%w: token ttl must be positive", domain.ErrValidation)
	}

	t := &domain.Token{
		UserID:    u.ID,
		ExpiresAt: s.now().Add(o.ttl),
		IsActive:  true,
		IPAddress: o.ip,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return "", err
	}

	signed, err := s.jwt.Sign(u.ID, t.ID, t.ExpiresAt)
	if err != nil {
		err = fmt.Errorf("sign token: %w", err)
		if derr := s.repo.Delete(ctx, t.ID); derr != nil {
			err = errors.Join(err, fmt.Errorf("drop unsigned token %s: %w", t.ID, derr))
		}
		return "", err
	}
	return signed, nil
}

// Decode checks signature, issuer and expiry only. It never touches the store.
func (s *TokenService) Decode(encoded string) (*auth.Claims, error) {
	c, err := s.jwt.Parse(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	return c, nil
}

// Validate reports whether the token record exists and is active.
// expires_at is not consulted; the signed exp is checked by Decode.
func (s *TokenService) Validate(ctx context.Context, tokenID string) (bool, error) {
	if !utils.IsID(tokenID) {
		return false, nil
	}
	t, err := s.repo.Get(ctx, tokenID)
	if err != nil {
		return false, err
	}
	return t != nil && t.IsActive, nil
}

// Deactivate marks the record inactive. Unknown ids are ignored.
func (s *TokenService) Deactivate(ctx context.Context, tokenID string) error {
	if !utils.IsID(tokenID) {
		return nil
	}
	off := false
	_, err := s.repo.Update(ctx, tokenID, domain.TokenUpdate{IsActive: &off})
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
