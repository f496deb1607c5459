package service

import (
	"errors"
	"testing"

	"go-gin-auth-service/internal/domain"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		role    domain.Role
		min     domain.Role
		allowed bool
	}{
		{domain.RoleViewer, domain.RoleMember, false},
		{domain.RoleOwner, domain.RoleAdmin, true},
		{domain.RoleAdmin, domain.RoleAdmin, true},
		{domain.RoleMember, domain.RoleViewer, true},
		{domain.RoleAPIKey, domain.RoleViewer, false},
		{domain.RoleAPIKey, domain.RoleAPIKey, true},
		{domain.Role("GOD"), domain.RoleAPIKey, false},
		{domain.Role(""), domain.RoleViewer, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+">="+string(tt.min), func(t *testing.T) {
			u := domain.PublicUser{ID: "u", Role: tt.role}
			got, err := Authorize(u, tt.min)
			if tt.allowed {
				if err != nil || got.ID != "u" {
					t.Errorf("Authorize() = %+v, %v, want pass-through", got, err)
				}
				return
			}
			if !errors.Is(err, domain.ErrForbidden) {
				t.Errorf("Authorize() error = %v, want ErrForbidden", err)
			}
		})
	}
}

func TestRoleRanks(t *testing.T) {
	want := map[domain.Role]int{
		domain.RoleOwner:  100,
		domain.RoleAdmin:  75,
		domain.RoleMember: 50,
		domain.RoleViewer: 25,
		domain.RoleAPIKey: 10,
		"UNKNOWN":         0,
	}
	for r, rank := range want {
		if got := r.Rank(); got != rank {
			t.Errorf("%s.Rank() = %d, want %d", r, got, rank)
		}
	}
}
