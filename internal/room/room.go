package room

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("room: not found")
	ErrInvalidVotesToSkip = errors.New("room: votes_to_skip must be at least 1")
)

// Room is one listening party. Host is the session identity that owns
// it; every remote playback call for this room authenticates as Host.
type Room struct {
	ID            uuid.UUID
	Code          string
	Host          string
	GuestCanPause bool
	VotesToSkip   int
	CurrentSong   *string // last observed track, nil when nothing is playing
	CreatedAt     time.Time
}
