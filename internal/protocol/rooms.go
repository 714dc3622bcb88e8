package protocol

import "github.com/google/uuid"

// RoomRequest is the body of the relay's create and join calls.
type RoomRequest struct {
	Passcode string `json:"passcode,omitempty"`
}

// RoomTicket admits one player to one relay room. Token is presented when
// opening the websocket.
type RoomTicket struct {
	RoomID   uuid.UUID `json:"roomId"`
	PlayerID uuid.UUID `json:"playerId"`
	Host     bool      `json:"host"`
	Token    string    `json:"token"`
}

// ErrorBody is the relay's JSON error response.
type ErrorBody struct {
	Error string `json:"error"`
}
