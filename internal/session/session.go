// Package session provides per-conversation state: the session object with
// its style level and conversation memory, and a registry handing out
// sessions to the API and MCP frontends.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/einfachManu/marine-snow-tutor/internal/models"
)

// ErrNotFound is returned by Get when the session ID is unknown.
var ErrNotFound = errors.New("session not found")

// Session is one conversation. Turns within a session are strictly
// sequential: callers must hold the session lock for the whole turn.
type Session struct {
	ID        string
	Level     models.StyleLevel
	CreatedAt time.Time

	mu   sync.Mutex
	mem  *ConversationMemory
	turn int
}

// Lock acquires the per-session turn lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the per-session turn lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Memory returns the session's conversation memory. Callers must hold the
// session lock.
func (s *Session) Memory() *ConversationMemory { return s.mem }

// NextTurn increments and returns the turn counter. Callers must hold the
// session lock.
func (s *Session) NextTurn() int {
	s.turn++
	return s.turn
}

// Registry is a concurrency-safe in-memory session store.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// New creates a standalone session that is not tracked by any registry.
// One-shot frontends use this for throwaway conversations.
func New(level models.StyleLevel) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Level:     level,
		CreatedAt: time.Now().UTC(),
		mem:       NewConversationMemory(),
	}
}

// Create registers a new session at the given style level.
func (r *Registry) Create(level models.StyleLevel) *Session {
	s := New(level)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with the given ID.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete removes a session. Deleting an unknown ID is a no-op.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
