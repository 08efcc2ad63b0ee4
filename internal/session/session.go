// Package session tracks whether the bot is talking to each user.
package session

import (
	"strings"
	"sync"
	"time"
)

// State is the conversational state of a user.
type State string

const (
	StateAwaitingStart State = "awaiting_start"
	StateActive        State = "active"
	StateStopped       State = "stopped"
)

// Session is a copy of a user's state. Mutations go through the Registry.
type Session struct {
	UserID            string
	Active            bool
	State             State
	LastInteractionAt time.Time
	FirstContact      bool
}

var stopCommands = map[string]struct{}{
	"parar":    {},
	"stop":     {},
	"sair":     {},
	"cancelar": {},
	"encerrar": {},
}

var activationCommands = []string{
	"oi", "olá", "menu", "iniciar", "start", "travel boss", "bom dia", "boa tarde", "boa noite",
}

// IsStopCommand reports whether msg, trimmed and lower-cased, is exactly a
// stop token.
func IsStopCommand(msg string) bool {
	_, ok := stopCommands[strings.ToLower(strings.TrimSpace(msg))]
	return ok
}

// IsActivationCommand reports whether msg contains an activation token.
// Matching is by substring, so "menu por favor" activates.
func IsActivationCommand(msg string) bool {
	lower := strings.ToLower(msg)
	for _, token := range activationCommands {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// Registry holds one Session per user. It is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Touch returns the session for userID, creating it in StateAwaitingStart
// when missing, and records now as the last interaction.
func (r *Registry) Touch(userID string, now time.Time) Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.getOrCreate(userID)
	s.LastInteractionAt = now
	return *s
}

// Get returns the session for userID without creating it.
func (r *Registry) Get(userID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Stop deactivates userID. Stopping twice is a no-op.
func (r *Registry) Stop(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.getOrCreate(userID)
	s.Active = false
	s.State = StateStopped
}

// Activate marks userID active and reports whether this is the first
// activation since the session was created.
func (r *Registry) Activate(userID string) (firstContact bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.getOrCreate(userID)
	firstContact = s.FirstContact
	s.Active = true
	s.State = StateActive
	s.FirstContact = false
	return firstContact
}

// EvictIdle removes sessions idle for longer than timeout at now and returns
// their user IDs.
func (r *Registry) EvictIdle(now time.Time, timeout time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []string
	for id, s := range r.sessions {
		if now.Sub(s.LastInteractionAt) > timeout {
			delete(r.sessions, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

// Clear removes every session.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[string]*Session)
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// ActiveCount returns the number of active sessions.
func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, s := range r.sessions {
		if s.Active {
			n++
		}
	}
	return n
}

func (r *Registry) getOrCreate(userID string) *Session {
	s, ok := r.sessions[userID]
	if !ok {
		s = &Session{
			UserID:       userID,
			State:        StateAwaitingStart,
			FirstContact: true,
		}
		r.sessions[userID] = s
	}
	return s
}
