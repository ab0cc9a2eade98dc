package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/opsvista/opsvista/internal/core/events"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	heartbeatPeriod = 30 * time.Second
	sendBufferSize  = 32
)

// Envelope is the frame pushed to connected clients.
type Envelope struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan Envelope
	userID int64
}

// Hub fans platform events out to websocket subscribers. Clients that
// cannot keep up with the broadcast rate are dropped rather than
// blocking the hub loop.
type Hub struct {
	clients    map[*client]struct{}
	broadcast  chan Envelope
	register   chan *client
	unregister chan *client
	logger     *slog.Logger

	mu      sync.RWMutex
	stopped chan struct{}
	once    sync.Once
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan Envelope, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
		logger:     logger,
		stopped:    make(chan struct{}),
	}
}

// Run processes register/unregister/broadcast traffic until Stop is
// called. Meant to be started once as a goroutine.
func (h *Hub) Run() {
	heartbeat := time.NewTicker(heartbeatPeriod)
	defer heartbeat.Stop()

	for {
		select {
		case <-heartbeat.C:
			h.Broadcast("heartbeat", map[string]interface{}{"clients": h.ClientCount()})

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("websocket client connected", "user_id", c.userID, "clients", h.ClientCount())

		case c := <-h.unregister:
			h.removeClient(c)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow consumer, drop it
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()

		case <-h.stopped:
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) Stop() {
	h.once.Do(func() { close(h.stopped) })
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues a frame for every connected client. Frames are
// discarded when the hub queue is full.
func (h *Hub) Broadcast(msgType string, data interface{}) {
	env := Envelope{Type: msgType, Timestamp: time.Now(), Data: data}
	select {
	case h.broadcast <- env:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping frame", "type", msgType)
	}
}

// SubscribeToEvents relays platform events onto the hub so dashboards
// see alert and pipeline activity live.
func (h *Hub) SubscribeToEvents(bus *events.EventBus) {
	relay := func(_ context.Context, event events.Event) error {
		h.Broadcast(event.EventType(), event.Payload())
		return nil
	}

	for _, eventType := range []string{
		events.AlertCreatedEvent,
		events.AlertAcknowledgedEvent,
		events.AlertResolvedEvent,
		events.PipelineRunStartedEvent,
		events.PermissionGrantedEvent,
		events.PermissionRevokedEvent,
	} {
		bus.Subscribe(eventType, relay)
	}
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.logger.Info("websocket client disconnected", "user_id", c.userID)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so pong handlers run; inbound payloads
// are ignored, the demo stream is one-way.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
