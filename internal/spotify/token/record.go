package token

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("token: no credentials for session")
	ErrMissingExpiry = errors.New("token: refusing to store credentials without expiry")
)

// Record holds one Spotify credential set, keyed by the session
// identity that completed the auth flow (normally a room host).
type Record struct {
	SessionID    string
	AccessToken  string
	RefreshToken string
	TokenType    string
	// ExpiresAt is derived from the receipt time of the token
	// response, never from a default. A nil value in a loaded record
	// marks a corrupt row that must be repaired by a forced refresh.
	ExpiresAt *time.Time
}

// Store persists credential records. One record per session identity.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Record, error)
	Upsert(ctx context.Context, rec Record) error
	Delete(ctx context.Context, sessionID string) error
}
