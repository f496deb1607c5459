package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	mdw "go-gin-auth-service/internal/transport/http/middleware"
	resp "go-gin-auth-service/internal/transport/http/response"
)

// Binder selects where an action's input comes from.
type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none" // handler reads c.Param itself
)

// Action is one endpoint: bind I, run Handler, answer with O wrapped in
// the standard envelope. Errors go through response.FromError.
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Status  int // 0 means 200
	Handler func(c *gin.Context, in *I) (O, error)
}

// Register mounts a on g. Extra handlers run before the action, e.g.
// role guards for a single route.
func Register[I any, O any](g gin.IRoutes, a Action[I, O], pre ...gin.HandlerFunc) {
	h := func(c *gin.Context) {
		var in I
		var err error
		switch a.Binder {
		case BindJSON:
			err = c.ShouldBindJSON(&in)
		case BindQuery:
			err = c.ShouldBindQuery(&in)
		}
		if err != nil {
			bindFailed(c, err)
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			mdw.Abort(c, err)
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		c.JSON(status, resp.OK(out))
	}

	handlers := append(append([]gin.HandlerFunc{}, pre...), h)
	g.Handle(strings.ToUpper(a.Method), a.Path, handlers...)
}

func bindFailed(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, resp.Error(resp.CodeTooLarge, ""))
		return
	}
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, resp.Error(resp.CodeUnprocessable, err.Error()))
}
