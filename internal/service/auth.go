package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"go-gin-auth-service/internal/core/auth"
	"go-gin-auth-service/internal/core/metrics"
	"go-gin-auth-service/internal/domain"
	"go-gin-auth-service/internal/events"
)

// Tokens is the part of TokenService the auth flows need.
type Tokens interface {
	Issue(ctx context.Context, u *domain.User, opts ...IssueOption) (string, error)
	Decode(encoded string) (*auth.Claims, error)
	Validate(ctx context.Context, tokenID string) (bool, error)
	Deactivate(ctx context.Context, tokenID string) error
}

type AuthService struct {
	users   domain.UserRepository
	creds   CredentialVerifier
	tokens  Tokens
	events  events.Publisher
	metrics *metrics.Metrics
	log     *zap.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

func NewAuthService(users domain.UserRepository, creds CredentialVerifier, tokens Tokens, pub events.Publisher, m *metrics.Metrics, log *zap.Logger) *AuthService {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, creds: creds, tokens: tokens, events: pub, metrics: m, log: log}
}

type RegisterInput struct {
	Email    string
	Password string
	Role     string // empty means MEMBER
	IsActive *bool  // nil means true
}

var errBadCredentials = fmt.Errorf("%w: incorrect email or password", domain.ErrUnauthorized)

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (pu domain.PublicUser, err error) {
	defer func() { s.metrics.Auth("register", err) }()

	email, err := domain.NormalizeEmail(in.Email)
	if err != nil {
		return domain.PublicUser{}, err
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return domain.PublicUser{}, err
	}
	role := domain.RoleMember
	if strings.TrimSpace(in.Role) != "" {
		if role, err = domain.ParseRole(in.Role); err != nil {
			return domain.PublicUser{}, err
		}
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return domain.PublicUser{}, err
	}
	if existing != nil {
		return domain.PublicUser{}, fmt.Errorf("%w: email already registered", domain.ErrAlreadyExists)
	}

	digest, err := s.creds.Hash(in.Password)
	if err != nil {
		return domain.PublicUser{}, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{Email: email, PasswordDigest: digest, Role: role, IsActive: active}
	if err := s.users.Create(ctx, u); err != nil {
		return domain.PublicUser{}, err
	}

	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	s.publish(ctx, events.Event{Type: events.TypeUserRegistered, UserID: u.ID, Role: string(u.Role)})
	return u.Public(), nil
}

// Authenticate returns a fresh bearer token. Every credential failure
// yields the same error so callers cannot tell which part was wrong.
func (s *AuthService) Authenticate(ctx context.Context, email, password, ip string) (tok string, err error) {
	defer func() { s.metrics.Auth("authenticate", err) }()

	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", err
	}
	if u == nil {
		// burn a comparable amount of time for unknown emails
		s.creds.Verify(password, s.dummy())
		return "", errBadCredentials
	}
	if !s.creds.Verify(password, u.PasswordDigest) || !u.IsActive {
		return "", errBadCredentials
	}

	tok, err = s.tokens.Issue(ctx, u, WithIPAddress(ip))
	if err != nil {
		return "", err
	}
	s.publish(ctx, events.Event{Type: events.TypeUserAuthenticated, UserID: u.ID})
	return tok, nil
}

func (s *AuthService) ResolveCurrentUser(ctx context.Context, encoded string) (pu domain.PublicUser, err error) {
	defer func() { s.metrics.Auth("resolve", err) }()

	c, err := s.tokens.Decode(encoded)
	if err != nil {
		return domain.PublicUser{}, err
	}
	ok, err := s.tokens.Validate(ctx, c.Subject)
	if err != nil {
		return domain.PublicUser{}, err
	}
	if !ok {
		return domain.PublicUser{}, fmt.Errorf("%w: token revoked or unknown", domain.ErrUnauthorized)
	}
	if c.UserID == "" {
		return domain.PublicUser{}, fmt.Errorf("%w: token has no user", domain.ErrUnauthorized)
	}
	u, err := s.users.FindByID(ctx, c.UserID)
	if err != nil {
		return domain.PublicUser{}, err
	}
	if u == nil || !u.IsActive {
		return domain.PublicUser{}, fmt.Errorf("%w: user not found", domain.ErrUnauthorized)
	}
	return u.Public(), nil
}

// Logout revokes the token's record. Repeating it is harmless.
func (s *AuthService) Logout(ctx context.Context, encoded string) (err error) {
	defer func() { s.metrics.Auth("logout", err) }()

	c, err := s.tokens.Decode(encoded)
	if err != nil {
		return err
	}
	if err := s.tokens.Deactivate(ctx, c.Subject); err != nil {
		return err
	}
	s.publish(ctx, events.Event{Type: events.TypeUserLoggedOut, UserID: c.UserID, TokenID: c.Subject})
	return nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyDigest, _ = s.creds.Hash("not-a-real-password-1!")
	})
	return s.dummyDigest
}

func (s *AuthService) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Warn("publish event failed", zap.String("type", e.Type), zap.Error(err))
	}
}
