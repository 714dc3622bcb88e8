// Package transport connects a peer to the relay.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sakan811/no-kitty-cards-game/internal/logger"
	"github.com/sakan811/no-kitty-cards-game/internal/protocol"
	"github.com/sirupsen/logrus"
)

// ErrClosed is returned by Send after the connection is gone.
var ErrClosed = errors.New("connection closed")

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
)

// Conn is a websocket connection to the relay. Outgoing frames are queued
// and written by a single goroutine.
type Conn struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
	log  *logrus.Entry
}

// WebsocketURL turns the relay's HTTP base URL into the websocket endpoint
// for token.
func WebsocketURL(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}

// Dial opens the websocket for a room ticket.
func Dial(ctx context.Context, base, token string) (*Conn, error) {
	u, err := WebsocketURL(base, token)
	if err != nil {
		return nil, err
	}
	ws, resp, err := websocket.Dial(ctx, u, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial relay: %s: %w", resp.Status, err)
		}
		return nil, fmt.Errorf("dial relay: %w", err)
	}
	c := &Conn{
		ws:   ws,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
		log:  logger.With(logrus.Fields{"component": "transport"}),
	}
	go c.writeLoop()
	return c, nil
}

// Send queues msg for the relay. It has the shape game.Peer expects of its
// SendFn; failures are logged.
func (c *Conn) Send(msg protocol.Message) {
	if err := c.SendErr(msg); err != nil {
		c.log.WithError(err).WithField("type", msg.Type).Warn("send failed")
	}
}

// SendErr queues msg and reports why it could not be.
func (c *Conn) SendErr(msg protocol.Message) error {
	frame, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

func (c *Conn) writeLoop() {
	for {
		select {
		case frame := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := c.ws.Write(ctx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				c.log.WithError(err).Warn("write failed")
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Run reads frames and passes each to handle until ctx ends or the relay
// closes the connection. Handler errors are logged, not fatal.
func (c *Conn) Run(ctx context.Context, handle func(frame []byte) error) error {
	defer c.Close()
	for {
		_, frame, err := c.ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if err := handle(frame); err != nil {
			c.log.WithError(err).Debug("frame handler")
		}
	}
}

// Close shuts the connection. It is safe to call more than once.
func (c *Conn) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close(websocket.StatusNormalClosure, "")
	})
}

// ---------------------------------------------------------------------------
// Room calls
// ---------------------------------------------------------------------------

// Client calls the relay's room endpoints.
type Client struct {
	Base string
	HTTP *http.Client
}

func NewClient(base string) *Client {
	return &Client{Base: strings.TrimSuffix(base, "/"), HTTP: &http.Client{Timeout: 10 * time.Second}}
}

// CreateRoom opens a room with the caller as host.
func (c *Client) CreateRoom(ctx context.Context, passcode string) (protocol.RoomTicket, error) {
	return c.post(ctx, c.Base+"/rooms", passcode)
}

// JoinRoom takes the guest seat of room.
func (c *Client) JoinRoom(ctx context.Context, room uuid.UUID, passcode string) (protocol.RoomTicket, error) {
	return c.post(ctx, c.Base+"/rooms/"+room.String()+"/join", passcode)
}

func (c *Client) post(ctx context.Context, u, passcode string) (protocol.RoomTicket, error) {
	var ticket protocol.RoomTicket
	body, err := json.Marshal(protocol.RoomRequest{Passcode: passcode})
	if err != nil {
		return ticket, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return ticket, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return ticket, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e protocol.ErrorBody
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return ticket, fmt.Errorf("relay: %s: %s", resp.Status, e.Error)
	}
	if err := json.NewDecoder(resp.Body).Decode(&ticket); err != nil {
		return ticket, fmt.Errorf("decode ticket: %w", err)
	}
	return ticket, nil
}
