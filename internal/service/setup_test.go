package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-gin-auth-service/internal/core/auth"
	"go-gin-auth-service/internal/domain"
	"go-gin-auth-service/internal/events"
	"go-gin-auth-service/internal/repo"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	db     *gorm.DB
	users  *repo.UserRepo
	tokens *repo.TokenRepo
	jwt    *auth.JWTer
	tokSvc *TokenService
	auth   *AuthService
	pub    *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:svc_"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(repo.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	f := &fixture{
		db:     db,
		users:  repo.NewUserRepo(db),
		tokens: repo.NewTokenRepo(db),
		jwt:    &auth.JWTer{Secret: []byte(testSecret), Issuer: "auth-test"},
		pub:    &recordingPublisher{},
	}
	f.tokSvc = NewTokenService(f.tokens, f.jwt, time.Hour)
	f.auth = NewAuthService(f.users, NewBcryptCredentials(bcrypt.MinCost), f.tokSvc, f.pub, nil, nil)
	return f
}

func (f *fixture) register(t *testing.T, email, password string, role domain.Role) domain.PublicUser {
	t.Helper()
	pu, err := f.auth.Register(t.Context(), RegisterInput{Email: email, Password: password, Role: string(role)})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", email, err)
	}
	return pu
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
