package server

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"

	"github.com/jrsteele09/eshtarek-portal/auth"
)

const (
	// sessionCookieName is the name of the cookie carrying the portal session id
	sessionCookieName = "eshtarek_session"
	sessionIDBytes    = 32
)

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetSessionTTL().Seconds()),
	})
}

func (s *Server) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	redirectWithParam(w, r, path, "error", errorMsg)
}

func redirectWithMessage(w http.ResponseWriter, r *http.Request, path, msg string) {
	redirectWithParam(w, r, path, "message", msg)
}

func redirectWithParam(w http.ResponseWriter, r *http.Request, path, key, value string) {
	redirectSuccess(w, r, path+"?"+key+"="+url.QueryEscape(value))
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// handleSessionExpired sends the user back to sign in when err reports an
// unrecoverable session. The tokens are already cleared by then.
func (s *Server) handleSessionExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	var expired *auth.SessionExpiredError
	if !errors.As(err, &expired) {
		return false
	}
	s.endSession(w, r, storeFromContext(r.Context()))
	redirectWithError(w, r, expired.RedirectTo, "Your session has expired. Please log in again.")
	return true
}
