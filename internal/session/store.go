package session

import (
	"context"
	"time"
)

// Session is an anonymous per-browser identity. It carries no user
// account; RoomCode is the single-slot binding to the room the
// session is currently in ("" when not in a room).
type Session struct {
	SessionID string    // unique session identifier
	RoomCode  string    // code of the joined room, if any
	CreatedAt time.Time // issue time
	ExpiresAt time.Time // absolute expiry time
}

// Store defines how sessions are stored and retrieved.
// Implementations (e.g., Redis) must remain stateless and opaque.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}
