package handlers

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/pixelhaven/gamehub-backend/game"
)

// Connection represents a WebSocket connection and the user it belongs to.
type Connection struct {
	ws       *websocket.Conn
	send     chan []byte
	connID   string
	userID   uint64
	username string
}

// Hub tracks the live connection per username. Events are delivered
// through each connection's buffered send channel; a full channel
// drops the connection rather than blocking the coordinator.
type Hub struct {
	mu     sync.RWMutex
	byUser map[string]*Connection
}

func newHub() *Hub {
	return &Hub{byUser: make(map[string]*Connection)}
}

// Register binds the connection as the user's current one and returns
// the connection it replaced, if any. The replaced connection's send
// channel is closed here so its writePump exits; the caller closes the
// socket.
func (h *Hub) Register(c *Connection) *Connection {
	h.mu.Lock()
	defer h.mu.Unlock()

	old := h.byUser[c.username]
	h.byUser[c.username] = c
	if old != nil {
		close(old.send)
	}
	return old
}

// Unregister removes the connection if it is still the user's current
// one. It reports whether the user is now offline; a reconnect that
// already replaced this connection leaves the user online.
func (h *Hub) Unregister(c *Connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.byUser[c.username] != c {
		return false
	}
	delete(h.byUser, c.username)
	close(c.send)
	return true
}

// IsOnline implements game.Presence.
func (h *Hub) IsOnline(username string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.byUser[username]
	return ok
}

// Send implements game.Notifier. Delivery is best effort: offline users
// and backed-up connections are skipped.
func (h *Hub) Send(username string, event game.Event) {
	h.mu.RLock()
	c, ok := h.byUser[username]
	h.mu.RUnlock()
	if !ok {
		return
	}

	message, err := json.Marshal(event)
	if err != nil {
		log.WithField("event", event.Type).Errorf("error marshalling event: %v", err)
		return
	}

	select {
	case c.send <- message:
	default:
		log.WithField("username", username).Warn("send buffer full, dropping event")
	}
}

var hub = newHub()

// WsHub exposes the connection hub so main can wire it into the
// manager as Notifier and Presence.
func WsHub() *Hub {
	return hub
}
