package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type inMemoryEntry struct {
	session   Session
	expiresAt time.Time
}

// InMemoryRepo is an in-memory implementation of Repo. Entries expire ttl
// after their last write; a zero ttl keeps them forever.
type InMemoryRepo struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]inMemoryEntry // sessionID -> entry
	now      func() time.Time
}

// NewInMemoryRepo creates a new in-memory session repository
func NewInMemoryRepo(ttl time.Duration) *InMemoryRepo {
	return &InMemoryRepo{
		ttl:      ttl,
		sessions: make(map[string]inMemoryEntry),
		now:      time.Now,
	}
}

// Upsert creates or updates a session
func (r *InMemoryRepo) Upsert(_ context.Context, session Session) error {
	if session.ID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry := inMemoryEntry{session: session}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}
	r.sessions[session.ID] = entry
	return nil
}

// Get retrieves a session by ID
func (r *InMemoryRepo) Get(_ context.Context, sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, fmt.Errorf("sessionID is required")
	}

	r.mu.RLock()
	entry, ok := r.sessions[sessionID]
	r.mu.RUnlock()

	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		_ = r.Delete(context.Background(), sessionID)
		return Session{}, ErrSessionNotFound
	}
	return entry.session, nil
}

// Delete removes a session
func (r *InMemoryRepo) Delete(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID) // Already gone is not an error
	return nil
}

// DeleteExpired drops every expired session and reports how many were removed
func (r *InMemoryRepo) DeleteExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, entry := range r.sessions {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
