package vote

import (
	"context"
	"errors"

	"github.com/amalbabu1997/music-controller-spotify/internal/db"
)

var ErrAlreadyVoted = errors.New("vote: already voted for this song")

// Tally tracks skip votes per (room, song, voter). Uniqueness is
// enforced by the votes table constraint, so Cast is race-safe.
type Tally struct {
	db *db.DB
}

func NewTally(db *db.DB) *Tally {
	return &Tally{db: db}
}

// Cast records one vote. A second vote by the same voter for the same
// song returns ErrAlreadyVoted and leaves the count untouched.
func (t *Tally) Cast(ctx context.Context, roomCode, songID, voter string) error {
	res, err := t.db.ExecContext(ctx, `
		INSERT INTO votes (room_code, song_id, voter)
		VALUES ($1, $2, $3)
		ON CONFLICT (room_code, song_id, voter) DO NOTHING
	`, roomCode, songID, voter)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyVoted
	}

	return nil
}

func (t *Tally) Count(ctx context.Context, roomCode, songID string) (int, error) {
	var n int
	err := t.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM votes
		WHERE room_code = $1 AND song_id = $2
	`, roomCode, songID).Scan(&n)
	return n, err
}

func (t *Tally) HasVoted(ctx context.Context, roomCode, songID, voter string) (bool, error) {
	var exists bool
	err := t.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM votes
			WHERE room_code = $1 AND song_id = $2 AND voter = $3
		)
	`, roomCode, songID, voter).Scan(&exists)
	return exists, err
}

// Reset clears every vote for the room. Called when the observed song
// changes and after a threshold-triggered skip.
func (t *Tally) Reset(ctx context.Context, roomCode string) error {
	_, err := t.db.ExecContext(ctx, `
		DELETE FROM votes WHERE room_code = $1
	`, roomCode)
	return err
}
