package db

import (
	"context"
	"database/sql"
)

const schemaMigration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS rooms (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    code text NOT NULL UNIQUE,
    host text NOT NULL UNIQUE,
    guest_can_pause boolean NOT NULL DEFAULT false,
    votes_to_skip integer NOT NULL DEFAULT 2 CHECK (votes_to_skip >= 1),
    current_song text,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS votes (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    room_code text NOT NULL REFERENCES rooms(code) ON DELETE CASCADE,
    song_id text NOT NULL,
    voter text NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    CONSTRAINT votes_once_per_song
        UNIQUE (room_code, song_id, voter)
);

CREATE INDEX IF NOT EXISTS votes_room_song_idx
ON votes (room_code, song_id);

CREATE TABLE IF NOT EXISTS spotify_tokens (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    session_id text NOT NULL UNIQUE,
    access_token text NOT NULL,
    refresh_token text NOT NULL,
    token_type text NOT NULL,
    expires_at timestamptz NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);
`

func RunSchemaMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaMigration)
	return err
}
