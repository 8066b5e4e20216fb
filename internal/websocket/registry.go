package websocket

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ConnState tracks a connection's lifecycle. Transitions are one-way:
// Open -> Closing -> Closed, no resurrection.
type ConnState int32

const (
	StateOpen ConnState = iota
	StateClosing
	StateClosed
)

var ErrRegistryFull = errors.New("connection registry at capacity")

// Registry tracks every open connection, keyed by owning user. Multiple
// connections per user (tabs, devices) are independent. The registry and
// the per-connection subscription sets are the only shared mutable state
// between receive loops, heartbeats and broadcasts; all mutation goes
// through Admit and Remove.
type Registry struct {
	mu          sync.RWMutex
	capacity    int
	connections map[uuid.UUID]*Client
	userClients map[uint]map[*Client]bool
}

// NewRegistry creates an empty registry. capacity <= 0 means unlimited.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		capacity:    capacity,
		connections: make(map[uuid.UUID]*Client),
		userClients: make(map[uint]map[*Client]bool),
	}
}

// Admit registers a connection in Open state. It fails only when the
// registry is at capacity.
func (r *Registry) Admit(c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.capacity > 0 && len(r.connections) >= r.capacity {
		return ErrRegistryFull
	}

	c.setState(StateOpen)
	r.connections[c.id] = c
	if r.userClients[c.userID] == nil {
		r.userClients[c.userID] = make(map[*Client]bool)
	}
	r.userClients[c.userID][c] = true
	return nil
}

// Remove transitions the connection to Closed and drops it from the
// registry and from every subscription it held. Removing an already
// removed connection is a no-op. Closing one of a user's connections
// never affects its siblings.
func (r *Registry) Remove(c *Client) {
	r.mu.Lock()
	_, registered := r.connections[c.id]
	if registered {
		delete(r.connections, c.id)
		if siblings, ok := r.userClients[c.userID]; ok {
			delete(siblings, c)
			if len(siblings) == 0 {
				delete(r.userClients, c.userID)
			}
		}
	}
	r.mu.Unlock()

	// State advances even for a never-admitted connection so a Closed
	// connection can never re-enter the registry.
	c.setState(StateClosing)
	c.clearSubscriptions()
	c.setState(StateClosed)
}

// ConnectionsForUser returns a snapshot of the user's open connections.
// Unknown users yield an empty slice.
func (r *Registry) ConnectionsForUser(userID uint) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.userClients[userID]))
	for c := range r.userClients[userID] {
		clients = append(clients, c)
	}
	return clients
}

// All returns a snapshot of every registered connection, safe to iterate
// while other goroutines admit or remove. A connection admitted after the
// call may be missed; one removed before the call is never returned.
func (r *Registry) All() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.connections))
	for _, c := range r.connections {
		clients = append(clients, c)
	}
	return clients
}

// Len reports the number of currently registered connections
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}
