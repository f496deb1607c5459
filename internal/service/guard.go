package service

import (
	"fmt"

	"go-gin-auth-service/internal/domain"
)

// Authorize passes u through when its role ranks at least min.
func Authorize(u domain.PublicUser, min domain.Role) (domain.PublicUser, error) {
	if !u.Role.AtLeast(min) {
		return domain.PublicUser{}, fmt.Errorf("%w: requires role %s or higher", domain.ErrForbidden, min)
	}
	return u, nil
}
