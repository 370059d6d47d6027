/*
Package chat contains the realtime side of direct messaging: the presence registry that maps
users to their live connection, the fanout engine that pushes events to those connections,
and the lifecycle manager that owns each websocket from handshake to close.

This file defines the Registry. The policy is last-connect-wins with a single handle per user.
*/
package chat

import (
	"context"
	"sync"
)

// Handle pushes events to exactly one remote party.
type Handle interface {
	// Push queues ev for delivery. It fails when the connection is gone or ctx ends first.
	Push(ctx context.Context, ev Event) error
}

// Registry maps a user id to its live connection handle.
// Every method holds the lock for one short critical section and never across I/O.
type Registry struct {
	mu      sync.Mutex
	handles map[string]Handle
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]Handle)}
}

// Register makes h the handle of id and returns the handle it superseded, if any.
// The superseded handle is not closed here.
func (r *Registry) Register(id string, h Handle) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous := r.handles[id]
	r.handles[id] = h

	return previous
}

// Unregister removes id only while its stored handle is still h, so a late disconnect of a
// superseded connection cannot evict its replacement. It reports whether an entry was removed.
func (r *Registry) Unregister(id string, h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.handles[id]; ok && current == h {
		delete(r.handles, id)
		return true
	}

	return false
}

// Lookup returns the live handle of id.
func (r *Registry) Lookup(id string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handles[id]
	return h, ok
}

// IsOnline reports whether id has a live handle.
func (r *Registry) IsOnline(id string) bool {
	_, ok := r.Lookup(id)
	return ok
}

// SnapshotOnlineSet returns a copy of the ids currently online.
func (r *Registry) SnapshotOnlineSet() map[string]struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	online := make(map[string]struct{}, len(r.handles))
	for id := range r.handles {
		online[id] = struct{}{}
	}

	return online
}

// snapshotHandles returns a copy of the id to handle map without except.
func (r *Registry) snapshotHandles(except string) map[string]Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	handles := make(map[string]Handle, len(r.handles))
	for id, h := range r.handles {
		if id != except {
			handles[id] = h
		}
	}

	return handles
}
