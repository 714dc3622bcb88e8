// Package protocol defines the messages two peers exchange to keep their
// matches in step, and the JSON shapes that carry them.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// MessageType names a message on the wire.
type MessageType string

const (
	MsgGameStart     MessageType = "gameStart"     // host -> guest: first player
	MsgGameAction    MessageType = "gameAction"    // actor -> other: one committed action
	MsgTurnEnd       MessageType = "turnEnd"       // actor -> other: next player
	MsgGameState     MessageType = "gameState"     // host -> guest: full snapshot
	MsgPlayerLeft    MessageType = "playerLeft"    // either peer or relay
	MsgResyncRequest MessageType = "resyncRequest" // guest -> host
	MsgResynced      MessageType = "resynced"      // guest -> host: snapshot seq restored
	MsgHello         MessageType = "hello"         // relay -> peer: identity and role
	MsgPeerJoined    MessageType = "peerJoined"    // relay -> host: guest connected
)

// ActionName tags the payload of a gameAction message.
type ActionName string

const (
	ActionCardPlayed ActionName = "cardPlayed"
	ActionCardDrawn  ActionName = "cardDrawn"
)

// Reasons carried by playerLeft.
const (
	LeftDisconnect = "disconnect"
	LeftDesync     = "desync"
	LeftQuit       = "quit"
)

// ErrUnknownMessage reports a frame whose type is not part of the protocol.
var ErrUnknownMessage = errors.New("unknown message type")

// Message is the envelope for everything sent between peers. Only the fields
// relevant to Type are set.
type Message struct {
	Type        MessageType     `json:"type"`
	From        uuid.UUID       `json:"from"`
	Action      ActionName      `json:"action,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	FirstPlayer *uuid.UUID      `json:"firstPlayer,omitempty"`
	NextPlayer  *uuid.UUID      `json:"nextPlayer,omitempty"`
	State       *Snapshot       `json:"state,omitempty"`
	PlayerID    *uuid.UUID      `json:"playerId,omitempty"`
	Host        bool            `json:"host,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	Seq         uint64          `json:"seq,omitempty"` // gameState / resynced
}

// Encode serializes a message into one text frame.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses one frame and rejects types outside the protocol.
func Decode(b []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if m.Type.Known() {
		return m, nil
	}
	return Message{}, fmt.Errorf("%q: %w", m.Type, ErrUnknownMessage)
}

// Known reports whether t is part of the protocol.
func (t MessageType) Known() bool {
	switch t {
	case MsgGameStart, MsgGameAction, MsgTurnEnd, MsgGameState,
		MsgPlayerLeft, MsgResyncRequest, MsgResynced, MsgHello, MsgPeerJoined:
		return true
	}
	return false
}

// PeekType extracts only the message type of a frame.
func PeekType(b []byte) (MessageType, error) {
	var head struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return "", err
	}
	return head.Type, nil
}

func idPtr(id uuid.UUID) *uuid.UUID { return &id }

// GameStart announces that first acts first.
func GameStart(from, first uuid.UUID) Message {
	return Message{Type: MsgGameStart, From: from, FirstPlayer: idPtr(first)}
}

// TurnEnd announces that next is now the player to act.
func TurnEnd(from, next uuid.UUID) Message {
	return Message{Type: MsgTurnEnd, From: from, NextPlayer: idPtr(next)}
}

// GameState carries a full snapshot. The host numbers its snapshots with seq
// and the guest echoes it back in resynced once restored.
func GameState(from uuid.UUID, seq uint64, s Snapshot) Message {
	return Message{Type: MsgGameState, From: from, Seq: seq, State: &s}
}

// PlayerLeft announces that player is gone.
func PlayerLeft(from, player uuid.UUID, reason string) Message {
	return Message{Type: MsgPlayerLeft, From: from, PlayerID: idPtr(player), Reason: reason}
}

// ResyncRequest asks the host for a fresh snapshot.
func ResyncRequest(from uuid.UUID) Message {
	return Message{Type: MsgResyncRequest, From: from}
}

// Resynced confirms that the snapshot numbered seq has been restored.
func Resynced(from uuid.UUID, seq uint64) Message {
	return Message{Type: MsgResynced, From: from, Seq: seq}
}

// Hello tells a connecting peer who it is and whether it hosts the room.
func Hello(player uuid.UUID, host bool) Message {
	return Message{Type: MsgHello, PlayerID: idPtr(player), Host: host}
}

// PeerJoined tells the host that the guest is connected.
func PeerJoined(player uuid.UUID) Message {
	return Message{Type: MsgPeerJoined, PlayerID: idPtr(player)}
}
