package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleViewer Role = "VIEWER"
	RoleAPIKey Role = "API_KEY"
)

// Rank is the role's position in the privilege order. Unknown roles rank 0,
// so they never satisfy any minimum.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 100
	case RoleAdmin:
		return 75
	case RoleMember:
		return 50
	case RoleViewer:
		return 25
	case RoleAPIKey:
		return 10
	default:
		return 0
	}
}

func (r Role) Valid() bool { return r.Rank() > 0 }

// AtLeast reports whether r is ranked at or above min.
func (r Role) AtLeast(min Role) bool { return r.Rank() >= min.Rank() }

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
	}
	return r, nil
}
