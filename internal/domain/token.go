package domain

import (
	"context"
	"time"
)

// Token is the persisted session record behind an issued bearer token.
// Its ID travels as the JWT "sub" claim.
type Token struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenUpdate lists the mutable token fields; nil means unchanged.
type TokenUpdate struct {
	IsActive *bool
}

type TokenRepository interface {
	// Create persists t, filling ID and timestamps. ExpiresAt must lie in
	// the future or ErrValidation is returned.
	Create(ctx context.Context, t *Token) error
	// Get returns (nil, nil) when no record matches.
	Get(ctx context.Context, id string) (*Token, error)
	// Update returns ErrNotFound when no record matches.
	Update(ctx context.Context, id string, upd TokenUpdate) (*Token, error)
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]Token, error)
	DeactivateByUser(ctx context.Context, userID string) (int64, error)
	TokenSweeper
}

// TokenSweeper is the bulk-delete side of the token store used by the reaper.
// Each call runs in a single transaction.
type TokenSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
