// Package session keeps server-side login sessions and the signed cookie
// tokens that point at them.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned for unknown, expired or revoked sessions.
var ErrNotFound = errors.New("session not found")

// Session ties a random id to a user until ExpiresAt.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

// Store persists sessions.
type Store interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (*Session, error)
	Lookup(ctx context.Context, sessionID string) (*Session, error)
	Destroy(ctx context.Context, sessionID string) error
}
