package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"go-gin-auth-service/internal/core/metrics"
	"go-gin-auth-service/internal/domain"
	"go-gin-auth-service/internal/service"
	mdw "go-gin-auth-service/internal/transport/http/middleware"
)

// Sweeper runs both reaper sweeps on demand.
type Sweeper interface {
	SweepAll(ctx context.Context) (service.SweepResult, error)
}

type AdminDeps struct {
	Log      *zap.Logger
	Auth     mdw.UserResolver
	Admin    *service.AdminService
	Reaper   Sweeper
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Ready    func(ctx context.Context) error
	Limits   Limits
}

// NewAdminEngine serves /admin/v1. Every route needs an ADMIN bearer; the
// manual sweep needs OWNER.
func NewAdminEngine(d AdminDeps) *gin.Engine {
	r := baseEngine(d.Log, d.Metrics, d.Limits)
	mountProbes(r, d.Ready, d.Gatherer)

	admin := r.Group("/admin/v1", mdw.Authenticate(d.Auth), mdw.RequireRole(domain.RoleAdmin))
	mountAdminActions(admin, d.Admin, d.Reaper)
	return r
}

func mountAdminActions(g *gin.RouterGroup, admin *service.AdminService, sweeper Sweeper) {
	type listQ struct {
		Offset int    `form:"offset,default=0"`
		Limit  int    `form:"limit,default=20"`
		Q      string `form:"q"`
	}
	Register(g, Action[listQ, service.UserPage]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: BindQuery,
		Handler: func(c *gin.Context, in *listQ) (service.UserPage, error) {
			return admin.ListUsers(c.Request.Context(), in.Q, in.Offset, in.Limit)
		},
	})

	type roleIn struct {
		Role string `json:"role" binding:"required"`
	}
	Register(g, Action[roleIn, domain.PublicUser]{
		Method: http.MethodPut,
		Path:   "/users/:id/role",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *roleIn) (domain.PublicUser, error) {
			actor, _ := mdw.CurrentUser(c)
			return admin.ChangeRole(c.Request.Context(), actor, c.Param("id"), in.Role)
		},
	})

	type deactivateOut struct {
		User          domain.PublicUser `json:"user"`
		RevokedTokens int64             `json:"revoked_tokens"`
	}
	Register(g, Action[struct{}, deactivateOut]{
		Method: http.MethodPost,
		Path:   "/users/:id/deactivate",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (deactivateOut, error) {
			u, n, err := admin.DeactivateUser(c.Request.Context(), c.Param("id"))
			if err != nil {
				return deactivateOut{}, err
			}
			return deactivateOut{User: u, RevokedTokens: n}, nil
		},
	})

	Register(g, Action[struct{}, []domain.Token]{
		Method: http.MethodGet,
		Path:   "/users/:id/tokens",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Token, error) {
			return admin.ListTokens(c.Request.Context(), c.Param("id"))
		},
	})

	Register(g, Action[struct{}, service.SweepResult]{
		Method: http.MethodPost,
		Path:   "/tokens/sweep",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (service.SweepResult, error) {
			return sweeper.SweepAll(c.Request.Context())
		},
	}, mdw.RequireRole(domain.RoleOwner))
}
