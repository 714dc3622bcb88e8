// Package relay forwards protocol frames between the two peers of a room. It
// never looks inside a match: frames are passed on verbatim.
package relay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sakan811/no-kitty-cards-game/engine"
	"github.com/sakan811/no-kitty-cards-game/internal/auth"
	"github.com/sakan811/no-kitty-cards-game/internal/logger"
	"github.com/sakan811/no-kitty-cards-game/internal/protocol"
	"github.com/sirupsen/logrus"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrBadPasscode   = errors.New("wrong passcode")
	ErrNotSeated     = errors.New("player is not seated in this room")
	ErrAlreadyJoined = errors.New("player is already connected")

	errClientTooSlow = errors.New("peer is not reading")
)

const (
	hostSeat  uint8 = 0
	guestSeat uint8 = 1

	sendBuffer   = 64
	pingInterval = 15 * time.Second
	writeTimeout = 5 * time.Second
)

// client is one connected peer.
type client struct {
	player uuid.UUID
	seat   uint8
	ws     *websocket.Conn
	send   chan []byte
	done   chan struct{}
}

// Room seats a host and a guest.
type Room struct {
	ID       uuid.UUID
	Players  [engine.NumSeats]uuid.UUID // uuid.Nil while the seat is open
	passHash []byte
	clients  [engine.NumSeats]*client
	created  time.Time
}

func (r *Room) empty() bool { return r.clients[hostSeat] == nil && r.clients[guestSeat] == nil }

// Hub owns every room.
type Hub struct {
	mu      sync.Mutex
	rooms   map[uuid.UUID]*Room
	secret  []byte
	ttl     time.Duration
	metrics *Metrics
	log     *logrus.Entry
}

func NewHub(secret []byte, tokenTTL time.Duration, metrics *Metrics) *Hub {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Hub{
		rooms:   make(map[uuid.UUID]*Room),
		secret:  secret,
		ttl:     tokenTTL,
		metrics: metrics,
		log:     logger.With(logrus.Fields{"component": "relay"}),
	}
}

// CreateRoom opens a room and seats the caller as host.
func (h *Hub) CreateRoom(passcode string) (protocol.RoomTicket, error) {
	hash, err := auth.HashPasscode(passcode)
	if err != nil {
		return protocol.RoomTicket{}, err
	}
	room := &Room{ID: uuid.New(), passHash: hash, created: time.Now()}
	room.Players[hostSeat] = uuid.New()

	tok, err := auth.IssueToken(h.secret, room.ID, room.Players[hostSeat], true, h.ttl)
	if err != nil {
		return protocol.RoomTicket{}, err
	}

	h.mu.Lock()
	h.rooms[room.ID] = room
	h.mu.Unlock()
	h.metrics.Rooms.Inc()
	h.log.WithField("room", room.ID).Info("room created")
	time.AfterFunc(h.ttl, func() { h.expire(room) })

	return protocol.RoomTicket{RoomID: room.ID, PlayerID: room.Players[hostSeat], Host: true, Token: tok}, nil
}

// JoinRoom seats the caller as guest of an existing room.
func (h *Hub) JoinRoom(id uuid.UUID, passcode string) (protocol.RoomTicket, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[id]
	if !ok {
		return protocol.RoomTicket{}, ErrRoomNotFound
	}
	if room.Players[guestSeat] != uuid.Nil {
		return protocol.RoomTicket{}, ErrRoomFull
	}
	if !auth.CheckPasscode(room.passHash, passcode) {
		return protocol.RoomTicket{}, ErrBadPasscode
	}
	player := uuid.New()
	tok, err := auth.IssueToken(h.secret, room.ID, player, false, h.ttl)
	if err != nil {
		return protocol.RoomTicket{}, err
	}
	room.Players[guestSeat] = player
	h.log.WithFields(logrus.Fields{"room": id, "player": player}).Info("guest joined")
	return protocol.RoomTicket{RoomID: room.ID, PlayerID: player, Token: tok}, nil
}

// RoomCount reports the number of open rooms.
func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

// expire closes room if nobody is connected once its host token has run out.
func (h *Hub) expire(room *Room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room.ID] != room || !room.empty() {
		return
	}
	delete(h.rooms, room.ID)
	h.metrics.Rooms.Dec()
	h.log.WithField("room", room.ID).Info("room expired")
}

// admit checks that claims name a free seat of an open room.
func (h *Hub) admit(claims *auth.Claims) (*Room, uint8, error) {
	roomID, _ := claims.Room()
	player, _ := claims.PlayerID()

	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[roomID]
	if !ok {
		return nil, 0, ErrRoomNotFound
	}
	for seat, p := range room.Players {
		if p != player {
			continue
		}
		if room.clients[seat] != nil {
			return nil, 0, ErrAlreadyJoined
		}
		return room, uint8(seat), nil
	}
	return nil, 0, ErrNotSeated
}

// attach registers c in its seat and queues the handshake frames.
func (h *Hub) attach(room *Room, c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room.ID] != room {
		return ErrRoomNotFound
	}
	if room.clients[c.seat] != nil {
		return ErrAlreadyJoined
	}
	room.clients[c.seat] = c
	h.metrics.Connections.Inc()

	h.queue(c, protocol.Hello(c.player, c.seat == hostSeat))
	host, guest := room.clients[hostSeat], room.clients[guestSeat]
	if host != nil && guest != nil {
		h.queue(host, protocol.PeerJoined(guest.player))
	}
	return nil
}

// detach removes c, tells the other seat and closes the room once both
// peers are gone.
func (h *Hub) detach(room *Room, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room.clients[c.seat] != c {
		return
	}
	room.clients[c.seat] = nil
	close(c.done)
	h.metrics.Connections.Dec()

	if other := room.clients[1-c.seat]; other != nil {
		h.queue(other, protocol.PlayerLeft(uuid.Nil, c.player, protocol.LeftDisconnect))
	}
	if room.empty() {
		delete(h.rooms, room.ID)
		h.metrics.Rooms.Dec()
		h.log.WithFields(logrus.Fields{"room": room.ID, "age": time.Since(room.created)}).Info("room closed")
	}
}

// queue encodes a relay-originated message for c. Caller holds h.mu.
func (h *Hub) queue(c *client, msg protocol.Message) {
	frame, err := protocol.Encode(msg)
	if err != nil {
		h.log.WithError(err).Error("encode relay message")
		return
	}
	h.deliver(c, frame)
}

func (h *Hub) deliver(c *client, frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		h.metrics.Dropped.WithLabelValues("slow_peer").Inc()
		h.log.WithError(errClientTooSlow).WithField("player", c.player).Warn("dropping frame")
		return false
	}
}

// forward passes a frame from c to the other seat of its room.
func (h *Hub) forward(room *Room, c *client, frame []byte) {
	typ, err := protocol.PeekType(frame)
	if err != nil {
		h.metrics.Dropped.WithLabelValues("malformed").Inc()
		return
	}
	switch typ {
	case protocol.MsgHello, protocol.MsgPeerJoined:
		h.metrics.Dropped.WithLabelValues("relay_only").Inc()
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	other := room.clients[1-c.seat]
	if other == nil {
		h.metrics.Dropped.WithLabelValues("no_peer").Inc()
		return
	}
	if h.deliver(other, frame) {
		h.metrics.Frames.WithLabelValues(frameLabel(typ)).Inc()
	}
}

// serve runs one peer connection until it closes.
func (h *Hub) serve(ctx context.Context, room *Room, c *client) {
	if err := h.attach(room, c); err != nil {
		_ = c.ws.Close(websocket.StatusPolicyViolation, err.Error())
		return
	}
	log := h.log.WithFields(logrus.Fields{"room": room.ID, "player": c.player, "seat": c.seat})
	log.Info("peer connected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go h.write(ctx, c)

	for {
		_, frame, err := c.ws.Read(ctx)
		if err != nil {
			log.WithField("status", websocket.CloseStatus(err)).Info("peer disconnected")
			break
		}
		h.forward(room, c, frame)
	}
	h.detach(room, c)
	_ = c.ws.Close(websocket.StatusNormalClosure, "")
}

func (h *Hub) write(ctx context.Context, c *client) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case frame := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.ws.Write(wctx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				return
			}
		case <-ping.C:
			_ = c.ws.Ping(ctx)
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}
