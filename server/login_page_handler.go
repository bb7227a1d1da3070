package server

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/eshtarek-portal/auth"
	portalerrors "github.com/jrsteele09/eshtarek-portal/internal/errors"
	"github.com/jrsteele09/eshtarek-portal/users"
)

const loginFailed = "Login failed. Please try again."

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Title    string
	Error    string
	Message  string // Shown after a successful registration
	Username string // Preserve username on error
	AsAdmin  bool
}

// LandingHandler sends the root route to the page the session belongs on
func (s *Server) LandingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tokens auth.TokenStore = auth.NewMemoryTokenStore("", "")
		if store, ok := s.loadSession(r); ok {
			tokens = store
		}
		redirectSuccess(w, r, s.accounts.Landing(tokens))
	}
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	loginTmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		render(w, loginTmpl, LoginPageData{
			Title:    "Login",
			Error:    query.Get("error"),
			Message:  query.Get("message"),
			Username: query.Get("username"),
			AsAdmin:  query.Get("as_admin") == "true",
		})
	}
}

// LoginSubmissionHandler processes the login form submission (POST /login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		creds := users.Credentials{
			Username: r.PostFormValue("username"),
			Password: r.PostFormValue("password"),
			AsAdmin:  isChecked(r.PostFormValue("as_admin")),
		}

		tokens := auth.NewMemoryTokenStore("", "")
		destination, err := s.accounts.Login(r.Context(), tokens, creds)
		if err != nil {
			log.Debug().Err(err).Str("username", creds.Username).Msg("login rejected")
			s.renderLoginError(w, r, portalerrors.Message(err, loginFailed), creds)
			return
		}
		if err := s.startSession(w, r, tokens); err != nil {
			log.Err(err).Str("username", creds.Username).Msg("failed to start session")
			s.renderLoginError(w, r, loginFailed, creds)
			return
		}

		redirectSuccess(w, r, destination)
	}
}

// LogoutHandler signs the session out (POST /logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := s.loadSession(r)
		if ok {
			s.accounts.Logout(r.Context(), store)
		}
		s.endSession(w, r, store)
		redirectSuccess(w, r, RouteLogin)
	}
}

// renderLoginError redirects to login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg string, creds users.Credentials) {
	params := url.Values{}
	params.Set("error", errorMsg)
	if creds.Username != "" {
		params.Set("username", creds.Username)
	}
	if creds.AsAdmin {
		params.Set("as_admin", "true")
	}
	redirectSuccess(w, r, RouteLogin+"?"+params.Encode())
}

func isChecked(value string) bool {
	return value == "on" || value == "true" || value == "1"
}
