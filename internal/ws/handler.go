package ws

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/opsvista/opsvista/internal/rbac"
	"github.com/opsvista/opsvista/internal/transport"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// demo endpoint, origin is not enforced
		return true
	},
}

type Handler struct {
	*transport.BaseHandler
	hub *Hub
}

func NewHandler(base *transport.BaseHandler, hub *Hub) *Handler {
	return &Handler{BaseHandler: base, hub: hub}
}

// Serve upgrades the connection and attaches it to the hub.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	var userID int64
	if subject, ok := rbac.SubjectFromContext(r.Context()); ok {
		userID = subject.UserID
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan Envelope, sendBufferSize),
		userID: userID,
	}
	h.hub.register <- c

	go c.writePump()
	go c.readPump()
}
