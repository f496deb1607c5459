package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

type User struct {
	ID             string
	Email          string
	PasswordDigest string
	Role           Role
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PublicUser is the outward projection of a User; it never carries the digest.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserUpdate lists the mutable user fields; nil means unchanged.
type UserUpdate struct {
	Role     *Role
	IsActive *bool
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, q string, offset, limit int) ([]User, int64, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*User, error)
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail trims and lowercases the address and checks its shape.
func NormalizeEmail(email string) (string, error) {
	e := strings.TrimSpace(email)
	if !emailPattern.MatchString(e) {
		return "", fmt.Errorf("%w: email must be a valid email address", ErrValidation)
	}
	return strings.ToLower(e), nil
}

const passwordSpecials = "!@#$%^&*()_+-=[]{}|;:,.<>?"

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

// ValidatePassword enforces the registration policy: 4 to 72 bytes with a
// letter, a digit and one of passwordSpecials.
func ValidatePassword(pw string) error {
	if len(pw) < 4 {
		return fmt.Errorf("%w: password must be at least 4 characters long", ErrValidation)
	}
	if len(pw) > MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes long", ErrValidation, MaxPasswordBytes)
	}
	var alpha, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			alpha = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	if !alpha {
		return fmt.Errorf("%w: password must contain a letter", ErrValidation)
	}
	if !digit {
		return fmt.Errorf("%w: password must contain a digit", ErrValidation)
	}
	if !special {
		return fmt.Errorf("%w: password must contain one of %s", ErrValidation, passwordSpecials)
	}
	return nil
}
