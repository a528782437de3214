package session

import (
	"context"
	"time"
)

// DefaultLifetime is how long a pending session stays approvable.
const DefaultLifetime = 5 * time.Minute

// Status of a pending login session.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusExpired  Status = "expired"
)

// Pending describes one QR-login attempt awaiting approval.
type Pending struct {
	CreatedAt time.Time
	ExpiresAt time.Time
	ID        string
	UserID    string // set on approval
	Token     string // auth token issued on approval
	UserAgent string
	IP        string
	Status    Status
}

// Expired reports whether the session's lifetime has elapsed.
func (p Pending) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Store persists pending QR-login sessions.
type Store interface {
	// Register creates a new pending session for the given browser
	// metadata and returns it with an assigned ID and expiry.
	Register(ctx context.Context, userAgent, ip string) (Pending, error)

	// Approve attaches a user and token to a pending session.
	// Returns ErrNotFound, ErrExpired, or ErrAlreadyResolved.
	Approve(ctx context.Context, id, userID, token string) error

	// Get returns the session, flipping its status to expired when
	// the lifetime has elapsed.
	Get(ctx context.Context, id string) (Pending, error)

	// Delete removes a session. Polling clients call this after
	// collecting an approved session's token.
	Delete(ctx context.Context, id string) error
}
