package tracking

import "sync"

// ConnectionHandle is the capability the core needs from an observer
// connection: a stable identity and a way to push one encoded event.
// Transport specifics (framing, disconnect detection) live behind it.
type ConnectionHandle interface {
	// ID returns a stable identifier for this connection
	ID() string
	// Send pushes one encoded broadcast event to the observer
	Send(data []byte) error
}

// Registry tracks the set of currently-open observer connections. It
// is safe under concurrent register, unregister and snapshot calls;
// snapshots are copies and cannot be mutated by later membership
// changes.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]ConnectionHandle
}

// NewRegistry creates an empty connection registry
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]ConnectionHandle),
	}
}

// Register adds a connection
func (r *Registry) Register(handle ConnectionHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[handle.ID()] = handle
}

// Unregister removes a connection. Removing an absent connection is a
// no-op so a disconnect handler may race a failed broadcast send.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

// Snapshot returns the current membership for one broadcast pass
func (r *Registry) Snapshot() []ConnectionHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handles := make([]ConnectionHandle, 0, len(r.conns))
	for _, handle := range r.conns {
		handles = append(handles, handle)
	}
	return handles
}

// Count returns the number of registered connections
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
