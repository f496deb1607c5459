package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in, want string
		ok       bool
	}{
		{"A@B.com", "a@b.com", true},
		{"  x.y+z@sub.example.org ", "x.y+z@sub.example.org", true},
		{"no-at.example.com", "", false},
		{"a@b", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := NormalizeEmail(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("NormalizeEmail(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
		if !tt.ok && !errors.Is(err, ErrValidation) {
			t.Errorf("NormalizeEmail(%q) error = %v, want ErrValidation", tt.in, err)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	for pw, ok := range map[string]bool{
		"Abc123!": true,
		"a1!b":    true,
		"a1!":     false,
		"abcd!":   false,
		"1234!":   false,
		"Abcd12":  false,
		"Ab1 ":    false,
	} {
		err := ValidatePassword(pw)
		if ok && err != nil {
			t.Errorf("ValidatePassword(%q) = %v", pw, err)
		}
		if !ok && !errors.Is(err, ErrValidation) {
			t.Errorf("ValidatePassword(%q) = %v, want ErrValidation", pw, err)
		}
	}
}

func TestValidatePassword_BcryptLimit(t *testing.T) {
	base := "Abc12!"
	if err := ValidatePassword(base + strings.Repeat("x", MaxPasswordBytes-len(base))); err != nil {
		t.Errorf("72-byte password rejected: %v", err)
	}
	if err := ValidatePassword(base + strings.Repeat("x", 80)); !errors.Is(err, ErrValidation) {
		t.Errorf("86-byte password: err = %v, want ErrValidation", err)
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole(" admin "); err != nil || r != RoleAdmin {
		t.Errorf("ParseRole(admin) = %q, %v", r, err)
	}
	if r, err := ParseRole("api_key"); err != nil || r != RoleAPIKey {
		t.Errorf("ParseRole(api_key) = %q, %v", r, err)
	}
	if _, err := ParseRole("root"); !errors.Is(err, ErrValidation) {
		t.Errorf("ParseRole(root) error = %v", err)
	}
}

func TestRoleAtLeast(t *testing.T) {
	if !RoleOwner.AtLeast(RoleAdmin) {
		t.Error("OWNER should satisfy ADMIN")
	}
	if RoleViewer.AtLeast(RoleMember) {
		t.Error("VIEWER should not satisfy MEMBER")
	}
	if Role("nobody").AtLeast(RoleAPIKey) {
		t.Error("unknown role should not satisfy anything")
	}
}

func TestPublicOmitsDigest(t *testing.T) {
	u := &User{ID: "1", Email: "a@b.com", PasswordDigest: "secret", Role: RoleMember, IsActive: true}
	p := u.Public()
	if p.ID != "1" || p.Email != "a@b.com" || p.Role != RoleMember || !p.IsActive {
		t.Errorf("Public() = %+v", p)
	}
}
