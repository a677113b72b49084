package hub

import "sync"

// Registry maps room keys to the set of connection IDs currently subscribed.
// It is a rebuildable cache of who is listening right now, not a system of
// record. All synchronization lives here; callers never lock around it.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[string]struct{})}
}

// Subscribe adds connID to the room, creating the entry on first join.
// Subscribing twice is a no-op.
func (r *Registry) Subscribe(roomKey, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomKey]; !ok {
		r.rooms[roomKey] = make(map[string]struct{})
	}
	r.rooms[roomKey][connID] = struct{}{}
}

// Unsubscribe removes connID from the room. Rooms left empty are pruned so
// the map does not grow with dead room keys. Unsubscribing from a room the
// connection never joined is a no-op.
func (r *Registry) Unsubscribe(roomKey, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if members, ok := r.rooms[roomKey]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, roomKey)
		}
	}
}

// Subscribers returns a snapshot of the connection IDs subscribed to the
// room at the moment of the call. Fan-out iterates the copy, so concurrent
// joins and leaves never tear the set mid-delivery.
func (r *Registry) Subscribers(roomKey string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[roomKey]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}
