// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

// Package session tracks process-wide execution session state: which
// context ids have been cancelled and which have an active connection.
package session

import (
	"sync"
)

// Registry owns the cancellation and connection sets shared by all
// executions in the process. Entries are added when a cancel request or
// connection arrives and removed when the execution completes; removing an
// absent member is a no-op, which makes cancel/complete races idempotent.
type Registry struct {
	mu          sync.RWMutex
	cancelled   map[string]struct{}
	connections map[string]struct{}
}

// NewRegistry creates an empty Registry. One Registry is created at
// service start and shared by every execution.
func NewRegistry() *Registry {
	return &Registry{
		cancelled:   make(map[string]struct{}),
		connections: make(map[string]struct{}),
	}
}

// MarkCancelled records a cancellation request for id.
func (r *Registry) MarkCancelled(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled[id] = struct{}{}
}

// ClearCancelled removes the cancellation mark for id, if any.
func (r *Registry) ClearCancelled(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cancelled, id)
}

// IsCancelled reports whether id has been marked cancelled.
func (r *Registry) IsCancelled(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cancelled[id]
	return ok
}

// AddConnection records an active connection for id.
func (r *Registry) AddConnection(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections[id] = struct{}{}
}

// RemoveConnection removes the active connection mark for id, if any.
func (r *Registry) RemoveConnection(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.connections, id)
}

// HasConnection reports whether id has an active connection.
func (r *Registry) HasConnection(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.connections[id]
	return ok
}
