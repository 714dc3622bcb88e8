// Package database persists the snapshot of the active match in Postgres so
// a host can resume it after a restart.
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakan811/no-kitty-cards-game/internal/protocol"
)

// DB is the shared pool. It stays nil when no database is configured, and
// callers skip persistence in that case.
var DB *pgxpool.Pool

var (
	ErrNotConnected = errors.New("database not connected")
	ErrNoMatch      = errors.New("no stored match")
)

const schema = `
CREATE TABLE IF NOT EXISTS active_matches (
	match_id   UUID PRIMARY KEY,
	host_id    UUID NOT NULL,
	phase      TEXT NOT NULL,
	snapshot   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS active_matches_updated_idx ON active_matches (updated_at DESC);
`

// Connect opens the pool, pings it, creates the schema and installs the pool
// as DB.
func Connect(ctx context.Context, url string) error {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return fmt.Errorf("create schema: %w", err)
	}
	DB = pool
	return nil
}

// Close releases the shared pool.
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}

// UpsertMatchSnapshot stores the latest snapshot of a match, replacing the
// previous one.
func UpsertMatchSnapshot(ctx context.Context, hostID uuid.UUID, snap protocol.Snapshot) error {
	if DB == nil {
		return ErrNotConnected
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = DB.Exec(ctx, `
		INSERT INTO active_matches (match_id, host_id, phase, snapshot, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (match_id) DO UPDATE
		SET phase = EXCLUDED.phase, snapshot = EXCLUDED.snapshot, updated_at = now()
	`, snap.MatchID, hostID, snap.Phase, data)
	if err != nil {
		return fmt.Errorf("upsert match %s: %w", snap.MatchID, err)
	}
	return nil
}

// LoadMatchSnapshot returns the stored snapshot of a match.
func LoadMatchSnapshot(ctx context.Context, matchID uuid.UUID) (protocol.Snapshot, error) {
	return scanSnapshot(ctx, `SELECT snapshot FROM active_matches WHERE match_id = $1`, matchID)
}

// LatestMatch returns the most recently updated unfinished match.
func LatestMatch(ctx context.Context) (protocol.Snapshot, error) {
	return scanSnapshot(ctx, `
		SELECT snapshot FROM active_matches
		WHERE phase <> 'game_over'
		ORDER BY updated_at DESC
		LIMIT 1
	`)
}

func scanSnapshot(ctx context.Context, query string, args ...any) (protocol.Snapshot, error) {
	var snap protocol.Snapshot
	if DB == nil {
		return snap, ErrNotConnected
	}
	var data []byte
	if err := DB.QueryRow(ctx, query, args...).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return snap, ErrNoMatch
		}
		return snap, fmt.Errorf("load match: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// DeleteMatch removes a finished match.
func DeleteMatch(ctx context.Context, matchID uuid.UUID) error {
	if DB == nil {
		return ErrNotConnected
	}
	_, err := DB.Exec(ctx, `DELETE FROM active_matches WHERE match_id = $1`, matchID)
	return err
}
