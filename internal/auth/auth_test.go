package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("s3cret")
	room, player := uuid.New(), uuid.New()

	tok, err := IssueToken(secret, room, player, true, time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(secret, tok)
	require.NoError(t, err)
	got, err := claims.PlayerID()
	require.NoError(t, err)
	assert.Equal(t, player, got)
	gotRoom, err := claims.Room()
	require.NoError(t, err)
	assert.Equal(t, room, gotRoom)
	assert.True(t, claims.Host)
}

func TestTokenRejected(t *testing.T) {
	room, player := uuid.New(), uuid.New()

	tok, err := IssueToken([]byte("one"), room, player, false, time.Minute)
	require.NoError(t, err)
	_, err = ParseToken([]byte("two"), tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := IssueToken([]byte("one"), room, player, false, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken([]byte("one"), expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken([]byte("one"), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasscode(t *testing.T) {
	open, err := HashPasscode("")
	require.NoError(t, err)
	assert.Nil(t, open)
	assert.True(t, CheckPasscode(open, "anything"))

	hash, err := HashPasscode("meow")
	require.NoError(t, err)
	assert.True(t, CheckPasscode(hash, "meow"))
	assert.False(t, CheckPasscode(hash, "woof"))
	assert.False(t, CheckPasscode(hash, ""))
}
