package relay

import (
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sakan811/no-kitty-cards-game/internal/auth"
	"github.com/sakan811/no-kitty-cards-game/internal/protocol"
	"github.com/sirupsen/logrus"
)

// Router returns the relay's HTTP routes.
func Router(h *Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLog())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": h.RoomCount()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.metrics.Registry, promhttp.HandlerOpts{})))

	r.POST("/rooms", h.createRoom)
	r.POST("/rooms/:id/join", h.joinRoom)
	r.GET("/ws", h.serveWS)
	return r
}

func (h *Hub) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		h.log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
		}).Debug("request")
	}
}

func abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, protocol.ErrorBody{Error: err.Error()})
}

// bindRoomRequest reads an optional JSON body.
func bindRoomRequest(c *gin.Context) (protocol.RoomRequest, bool) {
	var req protocol.RoomRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return req, false
	}
	return req, true
}

func (h *Hub) createRoom(c *gin.Context) {
	req, ok := bindRoomRequest(c)
	if !ok {
		return
	}
	ticket, err := h.CreateRoom(req.Passcode)
	if err != nil {
		h.log.WithError(err).Error("create room")
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h *Hub) joinRoom(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abort(c, http.StatusNotFound, ErrRoomNotFound)
		return
	}
	req, ok := bindRoomRequest(c)
	if !ok {
		return
	}
	ticket, err := h.JoinRoom(id, req.Passcode)
	switch {
	case errors.Is(err, ErrRoomNotFound):
		abort(c, http.StatusNotFound, err)
	case errors.Is(err, ErrRoomFull):
		abort(c, http.StatusConflict, err)
	case errors.Is(err, ErrBadPasscode):
		abort(c, http.StatusForbidden, err)
	case err != nil:
		h.log.WithError(err).Error("join room")
		abort(c, http.StatusInternalServerError, err)
	default:
		c.JSON(http.StatusOK, ticket)
	}
}

func (h *Hub) serveWS(c *gin.Context) {
	claims, err := auth.ParseToken(h.secret, c.Query("token"))
	if err != nil {
		abort(c, http.StatusUnauthorized, err)
		return
	}
	room, seat, err := h.admit(claims)
	switch {
	case errors.Is(err, ErrRoomNotFound):
		abort(c, http.StatusNotFound, err)
		return
	case errors.Is(err, ErrAlreadyJoined):
		abort(c, http.StatusConflict, err)
		return
	case err != nil:
		abort(c, http.StatusForbidden, err)
		return
	}

	ws, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade")
		return
	}
	player, _ := claims.PlayerID()
	cl := &client{
		player: player,
		seat:   seat,
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
	h.serve(c.Request.Context(), room, cl)
}
