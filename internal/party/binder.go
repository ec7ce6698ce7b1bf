// Package party ties sessions, rooms, votes and the playback gateway
// together: who is in which room, who may control playback, and when
// a skip threshold is crossed.
package party

import (
	"context"
	"errors"

	"github.com/amalbabu1997/music-controller-spotify/internal/room"
	"github.com/amalbabu1997/music-controller-spotify/internal/session"
)

var ErrNoSession = errors.New("party: unknown session")

// Rooms is the slice of the room registry the party layer needs.
type Rooms interface {
	FindByCode(ctx context.Context, code string) (*room.Room, error)
	FindByHost(ctx context.Context, host string) (*room.Room, error)
	DeleteByHost(ctx context.Context, host string) error
	SetCurrentSong(ctx context.Context, code string, songID *string) error
}

// Binder maps a session identity to at most one room code. The
// binding lives on the session record itself; joining a new room
// silently replaces the old binding.
type Binder struct {
	sessions session.Store
	rooms    Rooms
}

func NewBinder(sessions session.Store, rooms Rooms) *Binder {
	return &Binder{sessions: sessions, rooms: rooms}
}

// Join verifies the room exists and binds the session to its code.
func (b *Binder) Join(ctx context.Context, sessionID, code string) error {
	if _, err := b.rooms.FindByCode(ctx, code); err != nil {
		return err
	}

	sess, err := b.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrNoSession
	}

	sess.RoomCode = code
	return b.sessions.Update(ctx, *sess)
}

// Leave clears the binding. When the session is also a host, leaving
// tears down the whole party: the room is deleted and its votes go
// with it.
func (b *Binder) Leave(ctx context.Context, sessionID string) error {
	sess, err := b.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	if sess != nil && sess.RoomCode != "" {
		sess.RoomCode = ""
		if err := b.sessions.Update(ctx, *sess); err != nil {
			return err
		}
	}

	_, err = b.rooms.FindByHost(ctx, sessionID)
	if errors.Is(err, room.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return b.rooms.DeleteByHost(ctx, sessionID)
}

// CurrentRoom returns the code the session is bound to, or "" when
// the session is not in a room.
func (b *Binder) CurrentRoom(ctx context.Context, sessionID string) (string, error) {
	sess, err := b.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", nil
	}
	return sess.RoomCode, nil
}
