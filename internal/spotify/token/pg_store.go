package token

import (
	"context"
	"database/sql"

	"github.com/amalbabu1997/music-controller-spotify/internal/db"
)

type PGStore struct {
	db *db.DB
}

func NewPGStore(db *db.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Get(ctx context.Context, sessionID string) (*Record, error) {
	var (
		rec       Record
		expiresAt sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, access_token, refresh_token, token_type, expires_at
		FROM spotify_tokens
		WHERE session_id = $1
	`, sessionID).Scan(
		&rec.SessionID,
		&rec.AccessToken,
		&rec.RefreshToken,
		&rec.TokenType,
		&expiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		rec.ExpiresAt = &expiresAt.Time
	}

	return &rec, nil
}

// Upsert writes the full credential set in one statement. A record
// without an expiry is rejected rather than stored undefined.
func (s *PGStore) Upsert(ctx context.Context, rec Record) error {
	if rec.ExpiresAt == nil || rec.ExpiresAt.IsZero() {
		return ErrMissingExpiry
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO spotify_tokens (session_id, access_token, refresh_token, token_type, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    refresh_token = EXCLUDED.refresh_token,
		    token_type = EXCLUDED.token_type,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = NOW()
	`,
		rec.SessionID,
		rec.AccessToken,
		rec.RefreshToken,
		rec.TokenType,
		rec.ExpiresAt,
	)

	return err
}

func (s *PGStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM spotify_tokens WHERE session_id = $1
	`, sessionID)
	return err
}
