// Package ws owns the websocket transport: the room hub, per-connection
// sessions, the client event loop and the notifier-to-socket bridge.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"hr-realtime/internal/models"
	"hr-realtime/internal/observability"
	"hr-realtime/pkg/logger"
)

type connState struct {
	session Session
	rooms   map[string]bool
	writeMu sync.Mutex
}

// Hub maintains active websocket connections and their room memberships.
// Rooms are a property of the live connection only; nothing here survives a
// disconnect.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*websocket.Conn]bool
	conns map[*websocket.Conn]*connState
	log   *logger.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*websocket.Conn]bool),
		conns: make(map[*websocket.Conn]*connState),
		log:   log,
	}
}

// Register records a new connection and its session.
func (h *Hub) Register(conn *websocket.Conn, session Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = &connState{session: session, rooms: make(map[string]bool)}
}

// Join adds the connection to a room. Unregistered connections are ignored.
func (h *Hub) Join(conn *websocket.Conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	state, ok := h.conns[conn]
	if !ok {
		return
	}
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*websocket.Conn]bool)
	}
	h.rooms[room][conn] = true
	state.rooms[room] = true
}

// Unregister drops the connection from every room it joined and forgets its
// session.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	state, ok := h.conns[conn]
	if !ok {
		return
	}
	for room := range state.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, conn)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	delete(h.conns, conn)
}

// Session returns the handshake session for a registered connection.
func (h *Hub) Session(conn *websocket.Conn) (Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	state, ok := h.conns[conn]
	if !ok {
		return Session{}, false
	}
	return state.session, true
}

// InRoom reports whether the connection is currently joined to the room.
func (h *Hub) InRoom(conn *websocket.Conn, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	state, ok := h.conns[conn]
	return ok && state.rooms[room]
}

// RoomSize returns the number of connections in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Emit sends the event to every connection in the room. A write failure
// closes and unregisters the offending connection without affecting the
// rest.
func (h *Hub) Emit(room string, event models.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("event marshal failed", zap.String("event", event.Event), zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]*connTarget, 0, len(h.rooms[room]))
	for conn := range h.rooms[room] {
		if state, ok := h.conns[conn]; ok {
			targets = append(targets, &connTarget{conn: conn, state: state})
		}
	}
	h.mu.RUnlock()

	for _, t := range targets {
		if err := h.write(t, payload); err != nil {
			h.log.Warn("websocket write failed",
				zap.String("room", room),
				zap.String("conn_id", t.state.session.ConnID),
				zap.Error(err))
			t.conn.Close()
			h.Unregister(t.conn)
			observability.IncWSEvent("ws_error")
		}
	}
	observability.IncWSEvent(event.Event)
}

// EmitTo sends the event to a single connection.
func (h *Hub) EmitTo(conn *websocket.Conn, event models.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("event marshal failed", zap.String("event", event.Event), zap.Error(err))
		return
	}

	h.mu.RLock()
	state, ok := h.conns[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if err := h.write(&connTarget{conn: conn, state: state}, payload); err != nil {
		h.log.Warn("websocket write failed",
			zap.String("conn_id", state.session.ConnID),
			zap.Error(err))
		conn.Close()
		h.Unregister(conn)
		observability.IncWSEvent("ws_error")
		return
	}
	observability.IncWSEvent(event.Event)
}

type connTarget struct {
	conn  *websocket.Conn
	state *connState
}

// Gorilla connections do not allow concurrent writers; the per-connection
// mutex serializes writes from unrelated publishers.
func (h *Hub) write(t *connTarget, payload []byte) error {
	t.state.writeMu.Lock()
	defer t.state.writeMu.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, payload)
}
