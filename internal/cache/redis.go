// Package cache keeps the per-match action log in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the shared client. It stays nil when Redis is not configured, and
// callers skip logging in that case.
var Rdb *redis.Client

// ErrNotConnected is returned when Rdb has not been set up.
var ErrNotConnected = errors.New("redis not connected")

// ActionLogTTL bounds how long a finished match's log is kept.
const ActionLogTTL = 24 * time.Hour

// MatchActionRecord is one committed action of a match.
type MatchActionRecord struct {
	MatchID     uuid.UUID      `json:"matchId"`
	ActionIndex int            `json:"actionIndex"`
	ActorID     uuid.UUID      `json:"actorId"`
	ActionType  string         `json:"actionType"`
	Payload     map[string]any `json:"payload"`
	Timestamp   int64          `json:"timestamp"`
}

// Connect parses a redis:// URL, pings the server and installs the client
// as Rdb.
func Connect(ctx context.Context, url string) error {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("ping redis: %w", err)
	}
	Rdb = client
	return nil
}

// Close releases the shared client.
func Close() error {
	if Rdb == nil {
		return nil
	}
	err := Rdb.Close()
	Rdb = nil
	return err
}

func actionsKey(matchID uuid.UUID) string { return "nkc:match:" + matchID.String() + ":actions" }

// ActionsChannel is the pub/sub channel live actions of a match go to.
func ActionsChannel(matchID uuid.UUID) string { return "nkc:match:" + matchID.String() + ":live" }

// PublishMatchAction appends rec to the match log and publishes it to
// subscribers of the match channel.
func PublishMatchAction(ctx context.Context, rec MatchActionRecord) error {
	if Rdb == nil {
		return ErrNotConnected
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action %d: %w", rec.ActionIndex, err)
	}
	key := actionsKey(rec.MatchID)
	pipe := Rdb.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, ActionLogTTL)
	pipe.Publish(ctx, ActionsChannel(rec.MatchID), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish action %d: %w", rec.ActionIndex, err)
	}
	return nil
}

// MatchActions returns the logged actions of a match in commit order.
func MatchActions(ctx context.Context, matchID uuid.UUID) ([]MatchActionRecord, error) {
	if Rdb == nil {
		return nil, ErrNotConnected
	}
	raw, err := Rdb.LRange(ctx, actionsKey(matchID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read actions: %w", err)
	}
	out := make([]MatchActionRecord, 0, len(raw))
	for i, r := range raw {
		var rec MatchActionRecord
		if err := json.Unmarshal([]byte(r), &rec); err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
