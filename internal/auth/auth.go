// Package auth issues the tokens peers present to join a relay room and
// hashes room passcodes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("invalid join token")

// Claims identify one seat in one room. Subject is the player ID.
type Claims struct {
	RoomID string `json:"room"`
	Host   bool   `json:"host"`
	jwt.RegisteredClaims
}

// PlayerID parses the subject.
func (c *Claims) PlayerID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Room parses the room ID.
func (c *Claims) Room() (uuid.UUID, error) {
	return uuid.Parse(c.RoomID)
}

// IssueToken signs a join token for player in room.
func IssueToken(secret []byte, room, player uuid.UUID, host bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RoomID: room.String(),
		Host:   host,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   player.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies a join token and returns its claims.
func ParseToken(secret []byte, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if _, err := claims.PlayerID(); err != nil {
		return nil, fmt.Errorf("%w: subject: %v", ErrInvalidToken, err)
	}
	if _, err := claims.Room(); err != nil {
		return nil, fmt.Errorf("%w: room: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// HashPasscode returns the bcrypt hash of a room passcode. An empty passcode
// means an open room and hashes to nil.
func HashPasscode(passcode string) ([]byte, error) {
	if passcode == "" {
		return nil, nil
	}
	return bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
}

// CheckPasscode reports whether passcode opens a room with the given hash.
func CheckPasscode(hash []byte, passcode string) bool {
	if hash == nil {
		return true
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(passcode)) == nil
}
