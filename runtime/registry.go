package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"sync"
)

type Registry struct {
	mu          sync.RWMutex
	connections map[domain.ConnectionID]contract.Connection
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[domain.ConnectionID]contract.Connection),
	}
}

// Register adds a connection to the live set and returns the id used to remove it.
// The connection is a broadcast target as soon as Register returns.
func (r *Registry) Register(conn contract.Connection) domain.ConnectionID {
	id := domain.NewConnectionID()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections[id] = conn
	return id
}

// Deregister removes a connection. Unknown ids are ignored.
func (r *Registry) Deregister(id domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.connections, id)
}

// ForEachLive applies action to a snapshot of the live set.
// The snapshot is taken under the read lock, action runs without it, so an
// action may call back into the registry.
func (r *Registry) ForEachLive(action func(id domain.ConnectionID, conn contract.Connection)) {
	type live struct {
		id   domain.ConnectionID
		conn contract.Connection
	}
	r.mu.RLock()
	snapshot := make([]live, 0, len(r.connections))
	for id, conn := range r.connections {
		snapshot = append(snapshot, live{id: id, conn: conn})
	}
	r.mu.RUnlock()

	for _, l := range snapshot {
		action(l.id, l.conn)
	}
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}
