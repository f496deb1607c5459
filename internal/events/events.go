// Package events publishes auth lifecycle events to a message broker.
// Publishing is best-effort: callers log failures and carry on.
package events

import (
	"context"
	"time"
)

const (
	TypeUserRegistered    = "user.registered"
	TypeUserAuthenticated = "user.authenticated"
	TypeUserLoggedOut     = "user.logged_out"
	TypeUserDeactivated   = "user.deactivated"
	TypeRoleChanged       = "user.role_changed"
	TypeTokensReaped      = "tokens.reaped"
)

type Event struct {
	Type    string    `json:"type"`
	UserID  string    `json:"user_id,omitempty"`
	TokenID string    `json:"token_id,omitempty"`
	Role    string    `json:"role,omitempty"`
	Sweep   string    `json:"sweep,omitempty"`
	Count   int64     `json:"count,omitempty"`
	At      time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
