package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-gin-auth-service/internal/core/metrics"
	"go-gin-auth-service/internal/core/server"
	"go-gin-auth-service/internal/domain"
	"go-gin-auth-service/internal/service"
	mdw "go-gin-auth-service/internal/transport/http/middleware"
	resp "go-gin-auth-service/internal/transport/http/response"
)

// Limits are the per-engine request guards.
type Limits struct {
	MaxConcurrency int64
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

type APIDeps struct {
	Log      *zap.Logger
	Auth     *service.AuthService
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer // nil hides /metrics
	Ready    func(ctx context.Context) error
	Limits   Limits

	AppName  string
	Env      string
	DBDriver string
}

var healthSkip = []string{"/health", "/ready", "/metrics"}

func baseEngine(l *zap.Logger, m *metrics.Metrics, lim Limits) *gin.Engine {
	if l == nil {
		l = zap.NewNop()
	}
	r := server.NewRouter()
	r.Use(
		mdw.Recovery(l),
		mdw.RequestID(),
		mdw.ConcurrencyLimit(lim.MaxConcurrency),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(lim.RequestTimeout),
		mdw.Metrics(m),
		mdw.AccessLog(l, healthSkip...),
	)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, resp.Error(resp.CodeNotFound, ""))
	})
	return r
}

func mountProbes(r *gin.Engine, ready func(context.Context) error, g prometheus.Gatherer) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if ready != nil {
			if err := ready(c.Request.Context()); err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable, resp.Error(resp.CodeUnavailable, "database unavailable"))
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if g != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
	}
}

// NewAPIEngine builds the public engine: auth endpoints, probes and /info.
func NewAPIEngine(d APIDeps) *gin.Engine {
	r := baseEngine(d.Log, d.Metrics, d.Limits)
	mountProbes(r, d.Ready, d.Gatherer)

	r.GET("/v1/ping", func(c *gin.Context) { c.String(http.StatusOK, "PONG") })

	authed := mdw.Authenticate(d.Auth)
	mountAuthActions(r.Group("/auth"), d.Auth, authed)

	type infoOut struct {
		App      string `json:"app"`
		Env      string `json:"env"`
		DBDriver string `json:"db_driver"`
	}
	Register(r, Action[struct{}, infoOut]{
		Method: http.MethodGet,
		Path:   "/info",
		Binder: BindNone,
		Handler: func(*gin.Context, *struct{}) (infoOut, error) {
			return infoOut{App: d.AppName, Env: d.Env, DBDriver: d.DBDriver}, nil
		},
	}, authed, mdw.RequireRole(domain.RoleMember))

	return r
}

func mountAuthActions(g *gin.RouterGroup, auth *service.AuthService, authed gin.HandlerFunc) {
	type registerIn struct {
		Email    string `json:"email"    binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
		IsActive *bool  `json:"is_active"`
	}
	Register(g, Action[registerIn, domain.PublicUser]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *registerIn) (domain.PublicUser, error) {
			return auth.Register(c.Request.Context(), service.RegisterInput{
				Email:    in.Email,
				Password: in.Password,
				Role:     in.Role,
				IsActive: in.IsActive,
			})
		},
	})

	type credsIn struct {
		Email    string `json:"email"    binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	type tokenOut struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	Register(g, Action[credsIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/token",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *credsIn) (tokenOut, error) {
			tok, err := auth.Authenticate(c.Request.Context(), in.Email, in.Password, c.ClientIP())
			if err != nil {
				return tokenOut{}, err
			}
			return tokenOut{AccessToken: tok, TokenType: "bearer"}, nil
		},
	})

	type messageOut struct {
		Message string `json:"message"`
	}
	Register(g, Action[struct{}, messageOut]{
		Method: http.MethodPost,
		Path:   "/logout",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (messageOut, error) {
			if err := auth.Logout(c.Request.Context(), mdw.CurrentToken(c)); err != nil {
				return messageOut{}, err
			}
			return messageOut{Message: "Successfully logged out"}, nil
		},
	}, mdw.RequireBearer())

	Register(g, Action[struct{}, domain.PublicUser]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (domain.PublicUser, error) {
			u, _ := mdw.CurrentUser(c)
			return u, nil
		},
	}, authed)
}
