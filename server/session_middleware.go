package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/eshtarek-portal/auth"
	"github.com/jrsteele09/eshtarek-portal/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the *sessions.Store of the request
const ContextKeySession ContextKey = "session"

// RequireSession gates pages that need a signed in user. Requests without a
// session or without an access token are sent to the login page.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := s.loadSession(r)
		if !ok || !store.Session().Authenticated() {
			redirectSuccess(w, r, RouteLogin)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ContextKeySession, store)))
	}
}

// storeFromContext returns the session placed on the request by RequireSession
func storeFromContext(ctx context.Context) *sessions.Store {
	store, _ := ctx.Value(ContextKeySession).(*sessions.Store)
	return store
}

// loadSession resolves the session cookie of r
func (s *Server) loadSession(r *http.Request) (*sessions.Store, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	session, err := s.sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, sessions.ErrSessionNotFound) {
			log.Err(err).Msg("failed to load session")
		}
		return nil, false
	}
	return sessions.NewStore(r.Context(), s.sessions, session), true
}

// startSession signs the browser in under a new session id holding tokens.
// A session the browser already had is deleted, so an id handed out before
// login never becomes an authenticated session.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, tokens auth.TokenStore) error {
	ctx := context.WithoutCancel(r.Context())

	session := sessions.New(generateRandomString(sessionIDBytes))
	session.AccessToken = tokens.AccessToken()
	session.RefreshToken = tokens.RefreshToken()
	if err := s.sessions.Upsert(ctx, session); err != nil {
		return fmt.Errorf("[server startSession] %w", err)
	}

	if previous, ok := s.loadSession(r); ok {
		if err := s.sessions.Delete(ctx, previous.ID()); err != nil {
			log.Err(err).Str("session_id", previous.ID()).Msg("failed to delete previous session")
		}
	}
	s.SetSessionCookie(w, r, session.ID)
	return nil
}

// endSession forgets the session of r on the server and in the browser
func (s *Server) endSession(w http.ResponseWriter, r *http.Request, store *sessions.Store) {
	if store != nil {
		if err := s.sessions.Delete(context.WithoutCancel(r.Context()), store.ID()); err != nil {
			log.Err(err).Str("session_id", store.ID()).Msg("failed to delete session")
		}
	}
	s.ClearSessionCookie(w, r)
}
