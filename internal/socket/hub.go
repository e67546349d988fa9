// internal/socket/hub.go
package socket

import (
	"encoding/json"
	"sync"
	"time"

	"apiary-api-server/internal/store"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many events a client may fall behind before it is dropped.
	sendBuffer = 16
)

// conn is the part of *websocket.Conn the hub writes through.
type conn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// client owns its connection's single writer goroutine; everything else reaches the
// socket through send.
type client struct {
	conn conn
	send chan []byte
}

// Hub keeps every open websocket and pushes change events to all of them.
// Broadcast never waits on a socket, so a stalled client cannot hold up mutations.
type Hub struct {
	clients map[string]*client
	mu      sync.Mutex
	log     zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		log:     log.With().Str("component", "socket").Logger(),
	}
}

// Register adds a connection and returns the id used to unregister it.
func (h *Hub) Register(c *websocket.Conn) string {
	return h.register(c)
}

func (h *Hub) register(c conn) string {
	id := uuid.NewString()
	cl := &client{conn: c, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[id] = cl
	n := len(h.clients)
	h.mu.Unlock()

	go h.write(id, cl)
	h.log.Debug().Str("client", id).Int("clients", n).Msg("websocket client registered")
	return id
}

// write drains cl.send until the client is removed or a write fails.
func (h *Hub) write(id string, cl *client) {
	for msg := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Warn().Err(err).Str("client", id).Msg("websocket write failed, dropping client")
			h.mu.Lock()
			h.remove(id, cl)
			h.mu.Unlock()
			return
		}
	}
}

// remove must be called with h.mu held. It is a no-op when cl is already gone.
func (h *Hub) remove(id string, cl *client) bool {
	if h.clients[id] != cl {
		return false
	}
	delete(h.clients, id)
	close(cl.send)
	_ = cl.conn.Close()
	return true
}

func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cl, ok := h.clients[id]; ok && h.remove(id, cl) {
		h.log.Debug().Str("client", id).Msg("websocket client unregistered")
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues message for every client without blocking. A client whose queue
// is already full is dropped; a client whose write fails is dropped by its writer.
func (h *Hub) Broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, cl := range h.clients {
		select {
		case cl.send <- message:
		default:
			h.log.Warn().Str("client", id).Int("queued", sendBuffer).Msg("websocket client too slow, dropping client")
			h.remove(id, cl)
		}
	}
}

// Publish implements store.Notifier.
func (h *Hub) Publish(ev store.Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Msg("encoding change event")
		return
	}
	h.Broadcast(msg)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	bye := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for id, cl := range h.clients {
		_ = cl.conn.WriteControl(websocket.CloseMessage, bye, time.Now().Add(time.Second))
		h.remove(id, cl)
	}
}

var _ store.Notifier = (*Hub)(nil)
