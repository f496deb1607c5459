package response

import (
	"errors"
	"net/http"

	"go-gin-auth-service/internal/domain"
)

// FromError maps a domain error to an HTTP status and a client-safe body.
// Unknown errors become a bare 500.
func FromError(err error) (int, Resp) {
	switch {
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, Error(CodeUnauthorized, "could not validate credentials")
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, Error(CodeUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, Error(CodeForbidden, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusBadRequest, Error(CodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, Error(CodeUnprocessable, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, Error(CodeNotFound, err.Error())
	default:
		return http.StatusInternalServerError, Error(CodeServerError, "internal error")
	}
}
