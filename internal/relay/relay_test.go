package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sakan811/no-kitty-cards-game/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	return newServerTTL(t, time.Minute)
}

func newServerTTL(t *testing.T, ttl time.Duration) (*httptest.Server, *Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub([]byte("test-secret"), ttl, NewMetrics())
	srv := httptest.NewServer(Router(hub))
	t.Cleanup(srv.Close)
	return srv, hub
}

func post(t *testing.T, url string, body any) (int, protocol.RoomTicket) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	var ticket protocol.RoomTicket
	if resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&ticket))
	}
	return resp.StatusCode, ticket
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + url.QueryEscape(token)
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, wsURL(srv, token), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, frame, err := conn.Read(ctx)
	require.NoError(t, err)
	return frame
}

func readMsg(t *testing.T, conn *websocket.Conn) protocol.Message {
	t.Helper()
	msg, err := protocol.Decode(read(t, conn))
	require.NoError(t, err)
	return msg
}

func write(t *testing.T, conn *websocket.Conn, msg protocol.Message) []byte {
	t.Helper()
	frame, err := protocol.Encode(msg)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, frame))
	return frame
}

func TestRoomLifecycle(t *testing.T) {
	srv, hub := newServer(t)

	status, host := post(t, srv.URL+"/rooms", protocol.RoomRequest{Passcode: "meow"})
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, host.Host)
	assert.NotEmpty(t, host.Token)
	assert.Equal(t, 1, hub.RoomCount())

	join := srv.URL + "/rooms/" + host.RoomID.String() + "/join"
	status, _ = post(t, join, protocol.RoomRequest{Passcode: "woof"})
	assert.Equal(t, http.StatusForbidden, status)

	status, guest := post(t, join, protocol.RoomRequest{Passcode: "meow"})
	require.Equal(t, http.StatusOK, status)
	assert.False(t, guest.Host)
	assert.Equal(t, host.RoomID, guest.RoomID)
	assert.NotEqual(t, host.PlayerID, guest.PlayerID)

	status, _ = post(t, join, protocol.RoomRequest{Passcode: "meow"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = post(t, srv.URL+"/rooms/"+uuid.NewString()+"/join", protocol.RoomRequest{})
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = post(t, srv.URL+"/rooms/not-a-room/join", protocol.RoomRequest{})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRelayForwardsFrames(t *testing.T) {
	srv, hub := newServer(t)
	_, host := post(t, srv.URL+"/rooms", protocol.RoomRequest{})
	_, guest := post(t, srv.URL+"/rooms/"+host.RoomID.String()+"/join", protocol.RoomRequest{})

	hostConn := dial(t, srv, host.Token)
	hello := readMsg(t, hostConn)
	require.Equal(t, protocol.MsgHello, hello.Type)
	assert.True(t, hello.Host)
	assert.Equal(t, host.PlayerID, *hello.PlayerID)

	guestConn := dial(t, srv, guest.Token)
	hello = readMsg(t, guestConn)
	require.Equal(t, protocol.MsgHello, hello.Type)
	assert.False(t, hello.Host)

	joined := readMsg(t, hostConn)
	require.Equal(t, protocol.MsgPeerJoined, joined.Type)
	assert.Equal(t, guest.PlayerID, *joined.PlayerID)

	sent := write(t, hostConn, protocol.TurnEnd(host.PlayerID, guest.PlayerID))
	assert.Equal(t, sent, read(t, guestConn), "frames pass through verbatim")

	write(t, guestConn, protocol.Hello(guest.PlayerID, true))
	write(t, guestConn, protocol.ResyncRequest(guest.PlayerID))
	assert.Equal(t, protocol.MsgResyncRequest, readMsg(t, hostConn).Type, "relay-only types are not forwarded")

	require.NoError(t, guestConn.Close(websocket.StatusNormalClosure, ""))
	left := readMsg(t, hostConn)
	require.Equal(t, protocol.MsgPlayerLeft, left.Type)
	assert.Equal(t, guest.PlayerID, *left.PlayerID)
	assert.Equal(t, protocol.LeftDisconnect, left.Reason)
	assert.Equal(t, 1, hub.RoomCount())

	assert.Eventually(t, func() bool {
		return strings.Contains(metricsBody(srv), `nkc_relay_frames_relayed_total{type="turnEnd"} 1`)
	}, 2*time.Second, 20*time.Millisecond)
}

// metricsBody scrapes /metrics, returning "" on failure so it can poll.
func metricsBody(srv *httptest.Server) string {
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

func TestUnconnectedRoomsExpire(t *testing.T) {
	srv, hub := newServerTTL(t, 300*time.Millisecond)
	_, idle := post(t, srv.URL+"/rooms", protocol.RoomRequest{})
	_, used := post(t, srv.URL+"/rooms", protocol.RoomRequest{})
	require.Equal(t, 2, hub.RoomCount())

	dial(t, srv, used.Token)
	require.Eventually(t, func() bool { return hub.RoomCount() == 1 }, 2*time.Second, 20*time.Millisecond)

	status, _ := post(t, srv.URL+"/rooms/"+idle.RoomID.String()+"/join", protocol.RoomRequest{})
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = post(t, srv.URL+"/rooms/"+used.RoomID.String()+"/join", protocol.RoomRequest{})
	assert.Equal(t, http.StatusOK, status, "a room with a connected host outlives the token")
	assert.Contains(t, metricsBody(srv), "nkc_relay_rooms 1")
}

func TestFrameMetricLabelsAreBounded(t *testing.T) {
	srv, _ := newServer(t)
	_, host := post(t, srv.URL+"/rooms", protocol.RoomRequest{})
	_, guest := post(t, srv.URL+"/rooms/"+host.RoomID.String()+"/join", protocol.RoomRequest{})
	hostConn := dial(t, srv, host.Token)
	readMsg(t, hostConn)
	guestConn := dial(t, srv, guest.Token)
	readMsg(t, guestConn)
	readMsg(t, hostConn)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, typ := range []string{"x-1", "x-2"} {
		frame := []byte(`{"type":"` + typ + `"}`)
		require.NoError(t, hostConn.Write(ctx, websocket.MessageText, frame))
		assert.Equal(t, frame, read(t, guestConn))
	}
	write(t, hostConn, protocol.Resynced(host.PlayerID, 1))
	readMsg(t, guestConn)

	require.Eventually(t, func() bool {
		body := metricsBody(srv)
		return strings.Contains(body, `nkc_relay_frames_relayed_total{type="other"} 2`) &&
			strings.Contains(body, `nkc_relay_frames_relayed_total{type="resynced"} 1`)
	}, 2*time.Second, 20*time.Millisecond)
	assert.NotContains(t, metricsBody(srv), "x-1")
}

func TestWebsocketAdmission(t *testing.T) {
	srv, _ := newServer(t)
	_, host := post(t, srv.URL+"/rooms", protocol.RoomRequest{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, wsURL(srv, "not-a-token"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn := dial(t, srv, host.Token)
	readMsg(t, conn)

	_, resp, err = websocket.Dial(ctx, wsURL(srv, host.Token), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv, _ := newServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}
