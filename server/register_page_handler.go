package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	portalerrors "github.com/jrsteele09/eshtarek-portal/internal/errors"
	"github.com/jrsteele09/eshtarek-portal/users"
)

const (
	registrationFailed  = "Registration failed. Please try again."
	registrationSuccess = "Registration successful! Please login with your credentials."
)

// RegisterPageData is the sign-up form. Passwords are never echoed back.
type RegisterPageData struct {
	Title         string
	Error         string
	Username      string
	Email         string
	TenantName    string
	IsTenantOwner bool
}

// RegisterPageHandler displays the registration page (GET /register)
func (s *Server) RegisterPageHandler() http.HandlerFunc {
	registerTmpl := mustParseTemplate("register.html")

	return func(w http.ResponseWriter, r *http.Request) {
		render(w, registerTmpl, RegisterPageData{
			Title: "Register",
			Error: r.URL.Query().Get("error"),
		})
	}
}

// RegisterSubmissionHandler creates the account (POST /register). Errors
// re-render the form with what the user typed.
func (s *Server) RegisterSubmissionHandler() http.HandlerFunc {
	registerTmpl := mustParseTemplate("register.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		reg := users.Registration{
			Username:        r.PostFormValue("username"),
			Email:           r.PostFormValue("email"),
			Password:        r.PostFormValue("password"),
			ConfirmPassword: r.PostFormValue("confirm_password"),
			TenantName:      r.PostFormValue("tenant_name"),
			IsTenantOwner:   isChecked(r.PostFormValue("is_tenant_owner")),
		}

		if err := s.accounts.Register(r.Context(), reg); err != nil {
			log.Debug().Err(err).Str("username", reg.Username).Msg("registration rejected")
			render(w, registerTmpl, RegisterPageData{
				Title:         "Register",
				Error:         portalerrors.Message(err, registrationFailed),
				Username:      reg.Username,
				Email:         reg.Email,
				TenantName:    reg.TenantName,
				IsTenantOwner: reg.IsTenantOwner,
			})
			return
		}

		redirectWithMessage(w, r, RouteLogin, registrationSuccess)
	}
}
