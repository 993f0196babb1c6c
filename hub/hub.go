// Package hub is the connection registry: live connections, their room
// memberships, and room-indexed fan-out.
package hub

import (
	"log/slog"
	"sync"

	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/domain"
)

type client struct {
	conn  domain.Connection
	rooms map[string]struct{}
}

// Hub indexes connections by id and rooms by key so a broadcast touches
// only the target room's members. A connection may belong to any number
// of rooms; all memberships are discarded when it unregisters.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	rooms   map[string]map[string]domain.Connection
}

func New() *Hub {
	return &Hub{
		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]domain.Connection),
	}
}

func (h *Hub) Register(conn domain.Connection) {
	h.mu.Lock()
	h.clients[conn.ID()] = &client{conn: conn, rooms: make(map[string]struct{})}
	count := len(h.clients)
	h.mu.Unlock()

	slog.Info("client connected", "clientId", conn.ID(), "subjectId", conn.SubjectID(), "clients", count)
}

func (h *Hub) Unregister(conn domain.Connection) {
	h.mu.Lock()
	c, exists := h.clients[conn.ID()]
	if !exists {
		h.mu.Unlock()
		return
	}
	delete(h.clients, conn.ID())
	for key := range c.rooms {
		members := h.rooms[key]
		delete(members, conn.ID())
		if len(members) == 0 {
			delete(h.rooms, key)
		}
	}
	count := len(h.clients)
	h.mu.Unlock()

	slog.Info("client disconnected", "clientId", conn.ID(), "clients", count)
}

// Join adds the connection to a room. Joining a room the connection is
// already in has no effect; joining before Register is ignored.
func (h *Hub) Join(conn domain.Connection, roomKey string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, exists := h.clients[conn.ID()]
	if !exists {
		return
	}
	if _, joined := c.rooms[roomKey]; joined {
		return
	}

	c.rooms[roomKey] = struct{}{}
	members, exists := h.rooms[roomKey]
	if !exists {
		members = make(map[string]domain.Connection)
		h.rooms[roomKey] = members
	}
	members[conn.ID()] = conn

	slog.Info("client joined room", "clientId", conn.ID(), "room", roomKey, "members", len(members))
}

// JoinSubject adds every live connection bound to a subject to a room.
// This is how workspace rooms are entered: not by client request, but
// as a side effect of a collaborator action (e.g. sending a chat
// message pulls the sender's connections into the workspace chat room).
func (h *Hub) JoinSubject(subjectID, roomKey string) {
	if subjectID == "" {
		return
	}

	h.mu.RLock()
	conns := make([]domain.Connection, 0, 4)
	for _, c := range h.clients {
		if c.conn.SubjectID() == subjectID {
			conns = append(conns, c.conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		h.Join(conn, roomKey)
	}
}

// Rooms returns the room keys a connection is currently joined to.
func (h *Hub) Rooms(connectionID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, exists := h.clients[connectionID]
	if !exists {
		return nil
	}
	keys := make([]string, 0, len(c.rooms))
	for key := range c.rooms {
		keys = append(keys, key)
	}
	return keys
}

// Broadcast pushes data to every member of a room. A room with no
// members is not an error. Connections whose send buffer is gone are
// dropped from the registry.
func (h *Hub) Broadcast(roomKey string, data []byte) {
	h.mu.RLock()
	members := make([]domain.Connection, 0, len(h.rooms[roomKey]))
	for _, conn := range h.rooms[roomKey] {
		members = append(members, conn)
	}
	h.mu.RUnlock()

	for _, conn := range members {
		if err := conn.Send(data); err != nil {
			slog.Warn("send failed, dropping client", "clientId", conn.ID(), "room", roomKey, "error", err)
			h.Unregister(conn)
		}
	}
}

func (h *Hub) Stats() (rooms, clients int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms), len(h.clients)
}
