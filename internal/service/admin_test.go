package service

import (
	"errors"
	"testing"

	"go-gin-auth-service/internal/domain"
)

func newAdmin(f *fixture) *AdminService {
	return NewAdminService(f.users, f.tokens, f.tokSvc, f.pub, nil)
}

func TestAdmin_ChangeRole(t *testing.T) {
	f := newFixture(t)
	target := f.register(t, "t@b.com", "Abc123!", "")
	a := newAdmin(f)
	admin := domain.PublicUser{ID: "admin", Role: domain.RoleAdmin}

	got, err := a.ChangeRole(t.Context(), admin, target.ID, "admin")
	if err != nil || got.Role != domain.RoleAdmin {
		t.Fatalf("ChangeRole() = %+v, %v", got, err)
	}
	if _, err := a.ChangeRole(t.Context(), admin, target.ID, "OWNER"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("granting above own rank: error = %v, want ErrForbidden", err)
	}
	if _, err := a.ChangeRole(t.Context(), admin, target.ID, "SUPERUSER"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown role: error = %v, want ErrValidation", err)
	}
	if _, err := a.ChangeRole(t.Context(), admin, "00000000-0000-0000-0000-000000000000", "VIEWER"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing user: error = %v, want ErrNotFound", err)
	}
}

func TestAdmin_DeactivateUserRevokesTokens(t *testing.T) {
	f := newFixture(t)
	f.register(t, "d@b.com", "Abc123!", "")
	tok1, _ := f.auth.Authenticate(t.Context(), "d@b.com", "Abc123!", "")
	tok2, _ := f.auth.Authenticate(t.Context(), "d@b.com", "Abc123!", "")
	me, _ := f.auth.ResolveCurrentUser(t.Context(), tok1)

	pu, n, err := newAdmin(f).DeactivateUser(t.Context(), me.ID)
	if err != nil || n != 2 || pu.IsActive {
		t.Fatalf("DeactivateUser() = %+v, %d, %v", pu, n, err)
	}
	for _, tok := range []string{tok1, tok2} {
		if _, err := f.auth.ResolveCurrentUser(t.Context(), tok); !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("ResolveCurrentUser() error = %v, want ErrUnauthorized", err)
		}
	}
	if _, err := f.auth.Authenticate(t.Context(), "d@b.com", "Abc123!", ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("login after deactivation: error = %v", err)
	}
}

func TestAdmin_ListUsersAndTokens(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "l1@b.com", "Abc123!", "")
	f.register(t, "l2@b.com", "Abc123!", "")
	_, _ = f.auth.Authenticate(t.Context(), "l1@b.com", "Abc123!", "")
	a := newAdmin(f)

	page, err := a.ListUsers(t.Context(), "", 0, 0)
	if err != nil || page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("ListUsers() = %+v, %v", page, err)
	}
	toks, err := a.ListTokens(t.Context(), u.ID)
	if err != nil || len(toks) != 1 {
		t.Fatalf("ListTokens() = %+v, %v", toks, err)
	}
	if _, err := a.ListTokens(t.Context(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ListTokens(missing) error = %v", err)
	}
}

func TestAdmin_MintToken(t *testing.T) {
	f := newFixture(t)
	f.register(t, "dev@b.com", "Abc123!", "")
	a := newAdmin(f)

	tok, err := a.MintToken(t.Context(), "DEV@b.com")
	if err != nil {
		t.Fatalf("MintToken() error = %v", err)
	}
	if _, err := f.auth.ResolveCurrentUser(t.Context(), tok); err != nil {
		t.Errorf("minted token does not resolve: %v", err)
	}
	if _, err := a.MintToken(t.Context(), "ghost@b.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("MintToken(missing) error = %v", err)
	}
}
