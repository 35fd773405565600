package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Registry tracks the open order sessions, one per terminal.
type Registry struct {
	deps Deps

	mu       sync.RWMutex
	sessions map[uuid.UUID]*OrderSession
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:     deps,
		sessions: make(map[uuid.UUID]*OrderSession),
	}
}

// Create opens a new empty session.
func (r *Registry) Create() *OrderSession {
	s := NewOrderSession(uuid.New(), r.deps)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Get(id uuid.UUID) (*OrderSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close resets the session and forgets it.
func (r *Registry) Close(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Reset(ctx)
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
