package room

import (
	"context"
	"database/sql"

	"github.com/amalbabu1997/music-controller-spotify/internal/db"
	"github.com/amalbabu1997/music-controller-spotify/internal/utils"
)

const (
	// Alphabet excludes the ambiguous symbols 0/O/1/I. 32 symbols over
	// 6 positions keeps collisions rare enough that the retry loop
	// terminates quickly.
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

const roomColumns = `id, code, host, guest_can_pause, votes_to_skip, current_song, created_at`

type Registry struct {
	db *db.DB
}

func NewRegistry(db *db.DB) *Registry {
	return &Registry{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*Room, error) {
	var (
		r    Room
		song sql.NullString
	)

	err := row.Scan(
		&r.ID,
		&r.Code,
		&r.Host,
		&r.GuestCanPause,
		&r.VotesToSkip,
		&song,
		&r.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if song.Valid {
		r.CurrentSong = &song.String
	}

	return &r, nil
}

// CreateOrUpdate enforces the one-room-per-host rule: if the host
// already owns a room its config is updated in place (code unchanged),
// otherwise a new room is inserted under a fresh unique code.
func (r *Registry) CreateOrUpdate(
	ctx context.Context,
	host string,
	guestCanPause bool,
	votesToSkip int,
) (*Room, error) {

	if votesToSkip < 1 {
		return nil, ErrInvalidVotesToSkip
	}

	// 1. Update in place if the host already has a room
	row := r.db.QueryRowContext(ctx, `
		UPDATE rooms
		SET guest_can_pause = $2,
		    votes_to_skip = $3,
		    updated_at = NOW()
		WHERE host = $1
		RETURNING `+roomColumns, host, guestCanPause, votesToSkip)

	rm, err := scanRoom(row)
	if err == nil {
		return rm, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	// 2. Otherwise insert under a fresh code
	code, err := r.generateCode(ctx)
	if err != nil {
		return nil, err
	}

	row = r.db.QueryRowContext(ctx, `
		INSERT INTO rooms (code, host, guest_can_pause, votes_to_skip)
		VALUES ($1, $2, $3, $4)
		RETURNING `+roomColumns, code, host, guestCanPause, votesToSkip)

	return scanRoom(row)
}

func (r *Registry) generateCode(ctx context.Context) (string, error) {
	for {
		code := utils.RandomCode(codeAlphabet, codeLength)

		var exists bool
		err := r.db.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM rooms WHERE code = $1)
		`, code).Scan(&exists)

		if err != nil {
			return "", err
		}

		if !exists {
			return code, nil
		}
	}
}

func (r *Registry) FindByCode(ctx context.Context, code string) (*Room, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+roomColumns+`
		FROM rooms
		WHERE code = $1
	`, code)

	return scanRoom(row)
}

func (r *Registry) FindByHost(ctx context.Context, host string) (*Room, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+roomColumns+`
		FROM rooms
		WHERE host = $1
	`, host)

	return scanRoom(row)
}

// DeleteByHost removes the host's room, if any. Votes go with it via
// the foreign key cascade.
func (r *Registry) DeleteByHost(ctx context.Context, host string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM rooms WHERE host = $1
	`, host)
	return err
}

// SetCurrentSong records the last observed track; nil clears it.
func (r *Registry) SetCurrentSong(ctx context.Context, code string, songID *string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE rooms
		SET current_song = $2, updated_at = NOW()
		WHERE code = $1
	`, code, songID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Registry) List(ctx context.Context) ([]Room, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+roomColumns+`
		FROM rooms
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *rm)
	}

	return rooms, rows.Err()
}
