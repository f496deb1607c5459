package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-auth-service/internal/domain"
	"go-gin-auth-service/internal/service"
	resp "go-gin-auth-service/internal/transport/http/response"
)

const (
	keyCurrentUser = "currentUser"
	keyBearer      = "bearerToken"
)

// UserResolver turns a bearer token into the caller.
type UserResolver interface {
	ResolveCurrentUser(ctx context.Context, encoded string) (domain.PublicUser, error)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) (string, bool) {
	scheme, tok, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// Authenticate resolves the bearer token and stores the caller in the
// context. Any failure aborts with 401 and a WWW-Authenticate challenge.
func Authenticate(r UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := BearerToken(c)
		if !ok {
			Abort(c, fmt.Errorf("%w: not authenticated", domain.ErrUnauthorized))
			return
		}
		u, err := r.ResolveCurrentUser(c.Request.Context(), tok)
		if err != nil {
			Abort(c, err)
			return
		}
		c.Set(keyCurrentUser, u)
		c.Set(keyBearer, tok)
		c.Next()
	}
}

// RequireBearer only demands a well-formed bearer header. Logout uses it
// so an already revoked token can be logged out again.
func RequireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := BearerToken(c)
		if !ok {
			Abort(c, fmt.Errorf("%w: not authenticated", domain.ErrUnauthorized))
			return
		}
		c.Set(keyBearer, tok)
		c.Next()
	}
}

// RequireRole rejects callers ranked below min. It must run after Authenticate.
func RequireRole(min domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			Abort(c, fmt.Errorf("%w: not authenticated", domain.ErrUnauthorized))
			return
		}
		if _, err := service.Authorize(u, min); err != nil {
			Abort(c, err)
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (domain.PublicUser, bool) {
	v, ok := c.Get(keyCurrentUser)
	if !ok {
		return domain.PublicUser{}, false
	}
	u, ok := v.(domain.PublicUser)
	return u, ok
}

// CurrentToken returns the bearer token accepted by Authenticate.
func CurrentToken(c *gin.Context) string { return c.GetString(keyBearer) }

// Abort writes the mapped error response. 401s carry a Bearer challenge.
func Abort(c *gin.Context, err error) {
	status, body := resp.FromError(err)
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}
