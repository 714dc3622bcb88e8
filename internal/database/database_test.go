package database

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/sakan811/no-kitty-cards-game/engine"
	"github.com/sakan811/no-kitty-cards-game/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithoutDatabase(t *testing.T) {
	DB = nil
	ctx := context.Background()
	assert.ErrorIs(t, UpsertMatchSnapshot(ctx, uuid.New(), protocol.Snapshot{}), ErrNotConnected)
	_, err := LoadMatchSnapshot(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = LatestMatch(ctx)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, DeleteMatch(ctx, uuid.New()), ErrNotConnected)
}

// Runs against a real Postgres when NKC_TEST_DATABASE_URL is set.
func TestSnapshotStore(t *testing.T) {
	url := os.Getenv("NKC_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("NKC_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	require.NoError(t, Connect(ctx, url))
	t.Cleanup(Close)

	m := engine.NewMatch(9, engine.DefaultHouseRules())
	require.NoError(t, m.Start(0))
	host, guest := uuid.New(), uuid.New()
	snap := protocol.NewSnapshot(uuid.New(), [engine.NumSeats]uuid.UUID{host, guest}, &m)

	require.NoError(t, UpsertMatchSnapshot(ctx, host, snap))
	require.NoError(t, UpsertMatchSnapshot(ctx, host, snap))

	got, err := LatestMatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.MatchID, got.MatchID)
	restored, err := got.Restore()
	require.NoError(t, err)
	assert.Equal(t, m.Cards, restored.Cards)

	require.NoError(t, DeleteMatch(ctx, snap.MatchID))
	_, err = LoadMatchSnapshot(ctx, snap.MatchID)
	assert.ErrorIs(t, err, ErrNoMatch)
}
