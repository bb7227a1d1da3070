package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/eshtarek-portal/subscriptions"
)

// Store is the token store of one session for the duration of a request.
// Every change is written through to the repo; write failures are logged and
// the in-memory value stays authoritative for the rest of the request.
type Store struct {
	mu      sync.Mutex
	ctx     context.Context
	repo    Repo
	session Session
}

// NewStore wraps session for the request bound to ctx. Writes outlive the
// request's cancellation.
func NewStore(ctx context.Context, repo Repo, session Session) *Store {
	return &Store{
		ctx:     context.WithoutCancel(ctx),
		repo:    repo,
		session: session,
	}
}

func (s *Store) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.ID
}

// Session returns a copy of the current session record
func (s *Store) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.AccessToken
}

func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.RefreshToken
}

func (s *Store) SetAccessToken(access string) {
	s.update(func(session *Session) {
		session.AccessToken = access
	})
}

func (s *Store) Replace(access, refresh string) {
	s.update(func(session *Session) {
		session.AccessToken = access
		session.RefreshToken = refresh
	})
}

// Clear drops both tokens and any checkout in progress
func (s *Store) Clear() {
	s.update(func(session *Session) {
		session.AccessToken = ""
		session.RefreshToken = ""
		session.Checkout.Reset()
	})
}

func (s *Store) Checkout() subscriptions.Checkout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Checkout
}

func (s *Store) SaveCheckout(c subscriptions.Checkout) {
	s.update(func(session *Session) {
		session.Checkout = c
	})
}

func (s *Store) update(fn func(session *Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.session)
	s.session.UpdatedAt = time.Now()
	if err := s.repo.Upsert(s.ctx, s.session); err != nil {
		log.Err(err).Str("session_id", s.session.ID).Msg("failed to persist session")
	}
}
