package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-gin-auth-service/internal/core/auth"
	"go-gin-auth-service/internal/core/database"
	"go-gin-auth-service/internal/core/metrics"
	"go-gin-auth-service/internal/repo"
	"go-gin-auth-service/internal/service"
	resp "go-gin-auth-service/internal/transport/http/response"
)

const testPassword = "Passw0rd!"

func init() { gin.SetMode(gin.TestMode) }

type env struct {
	db    *gorm.DB
	api   *gin.Engine
	admin *gin.Engine
}

func newEnv(t *testing.T) *env {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:http_"+name+"?mode=memory&cache=shared"), &gorm.Config{
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

	users := repo.NewUserRepo(db)
	tokens := repo.NewTokenRepo(db)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	jwter := &auth.JWTer{Secret: []byte("0123456789abcdef0123456789abcdef"), Issuer: "auth-test"}
	tokSvc := service.NewTokenService(tokens, jwter, time.Hour)
	authSvc := service.NewAuthService(users, service.NewBcryptCredentials(bcrypt.MinCost), tokSvc, nil, m, nil)
	adminSvc := service.NewAdminService(users, tokens, tokSvc, nil, nil)
	reaper := service.NewReaper(tokens, service.ReaperOpts{}, nil, m, nil)
	ready := func(ctx context.Context) error { return database.Ping(ctx, db) }
	lim := Limits{MaxBodyBytes: 1 << 10}

	api := NewAPIEngine(APIDeps{
		Auth: authSvc, Metrics: m, Gatherer: reg, Ready: ready, Limits: lim,
		AppName: "auth-service", Env: "test", DBDriver: "sqlite",
	})
	admin := NewAdminEngine(AdminDeps{
		Auth: authSvc, Admin: adminSvc, Reaper: reaper, Ready: ready, Limits: lim,
	})
	return &env{db: db, api: api, admin: admin}
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// envelope decodes {code,msg,data} and unmarshals data into out when given.
func envelope(t *testing.T, w *httptest.ResponseRecorder, out any) resp.Resp {
	t.Helper()
	var raw struct {
		Code int             `json:"code"`
		Msg  string          `json:"msg"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	if out != nil {
		if err := json.Unmarshal(raw.Data, out); err != nil {
			t.Fatalf("decode data %s: %v", raw.Data, err)
		}
	}
	return resp.Resp{Code: raw.Code, Msg: raw.Msg}
}

type publicUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

func (e *env) register(t *testing.T, email, role string) publicUser {
	t.Helper()
	w := call(t, e.api, http.MethodPost, "/auth/register", "", map[string]any{
		"email": email, "password": testPassword, "role": role,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: status %d body %s", email, w.Code, w.Body.String())
	}
	var u publicUser
	envelope(t, w, &u)
	return u
}

func (e *env) login(t *testing.T, email string) string {
	t.Helper()
	w := call(t, e.api, http.MethodPost, "/auth/token", "", map[string]string{"email": email, "password": testPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, w.Code, w.Body.String())
	}
	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	envelope(t, w, &out)
	if out.TokenType != "bearer" || out.AccessToken == "" {
		t.Fatalf("token response = %+v", out)
	}
	return out.AccessToken
}

var errDown = errors.New("db down")
