package hub

import (
	"sync"

	"github.com/google/uuid"

	"campus-chat/internal/metrics"
)

// Hub owns connection lifecycles and the room registry. It is the only
// shared mutable state in the distribution core.
type Hub struct {
	registry *Registry
	buffer   int

	mu     sync.RWMutex
	conns  map[string]*Conn
	joined map[string]map[string]struct{} // connID -> room keys
}

func New(buffer int) *Hub {
	return &Hub{
		registry: NewRegistry(),
		buffer:   buffer,
		conns:    make(map[string]*Conn),
		joined:   make(map[string]map[string]struct{}),
	}
}

// Register creates a connection record for an authenticated user and
// returns it. The transport owns the returned Conn's write pump.
func (h *Hub) Register(userID string) *Conn {
	c := newConn(uuid.New().String(), userID, h.buffer)

	h.mu.Lock()
	h.conns[c.ID] = c
	h.joined[c.ID] = make(map[string]struct{})
	h.mu.Unlock()

	metrics.ActiveConnections.Inc()
	return c
}

// Unregister removes the connection from every room it had joined and
// closes it. Safe to call more than once.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	c, ok := h.conns[connID]
	if !ok {
		h.mu.Unlock()
		return
	}
	rooms := h.joined[connID]
	delete(h.conns, connID)
	delete(h.joined, connID)
	h.mu.Unlock()

	for roomKey := range rooms {
		h.registry.Unsubscribe(roomKey, connID)
	}
	c.close()
	metrics.ActiveConnections.Dec()
}

// Join subscribes the connection to a room. Joining an already-joined room
// is a no-op. Identity checks on the room key are the caller's job.
func (h *Hub) Join(connID, roomKey string) {
	h.mu.Lock()
	rooms, ok := h.joined[connID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, already := rooms[roomKey]; already {
		h.mu.Unlock()
		return
	}
	rooms[roomKey] = struct{}{}
	// Subscribe under h.mu so a concurrent Unregister either sees the room
	// in its snapshot or prevents the join entirely. The registry never
	// calls back into the hub, so holding both locks is safe.
	h.registry.Subscribe(roomKey, connID)
	h.mu.Unlock()
}

// Leave unsubscribes the connection from a room. Leaving a room the
// connection never joined is a no-op.
func (h *Hub) Leave(connID, roomKey string) {
	h.mu.Lock()
	rooms, ok := h.joined[connID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, joined := rooms[roomKey]; !joined {
		h.mu.Unlock()
		return
	}
	delete(rooms, roomKey)
	h.registry.Unsubscribe(roomKey, connID)
	h.mu.Unlock()
}

// Subscribers resolves the room's subscriber snapshot to live connections.
// A connection that unregistered after the snapshot simply resolves away.
func (h *Hub) Subscribers(roomKey string) []*Conn {
	ids := h.registry.Subscribers(roomKey)
	if len(ids) == 0 {
		return nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	conns := make([]*Conn, 0, len(ids))
	for _, id := range ids {
		if c, ok := h.conns[id]; ok {
			conns = append(conns, c)
		}
	}
	return conns
}
