package account

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/eshtarek-portal/api"
	"github.com/jrsteele09/eshtarek-portal/auth"
	portalerrors "github.com/jrsteele09/eshtarek-portal/internal/errors"
	"github.com/jrsteele09/eshtarek-portal/payments"
	"github.com/jrsteele09/eshtarek-portal/subscriptions"
	"github.com/jrsteele09/eshtarek-portal/token"
	"github.com/jrsteele09/eshtarek-portal/users"
)

const (
	HomePath  = "/home"
	LoginPath = auth.LoginRedirect
)

var (
	ErrNotAdministrator = portalerrors.NewUserError(portalerrors.ErrAuthentication, "You don't have administrator privileges", nil)
	ErrUnreadableToken  = portalerrors.NewUserError(portalerrors.ErrAuthentication, "Login failed. Please try again.", nil)
)

// Service runs the account journeys of a browser session against the users API
type Service struct {
	baseURL   string
	transport http.RoundTripper
	adminURL  string
	gateway   payments.Gateway
}

// New creates the account service. transport performs the round trips to the
// users API; nil means http.DefaultTransport.
func New(baseURL string, transport http.RoundTripper, adminURL string, gateway payments.Gateway) *Service {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Service{
		baseURL:   baseURL,
		transport: transport,
		adminURL:  adminURL,
		gateway:   gateway,
	}
}

func (s *Service) AdminURL() string {
	return s.adminURL
}

// Client returns a users API client acting for the session held in tokens
func (s *Service) Client(tokens auth.TokenStore) *api.Client {
	manager := auth.NewSessionManager(tokens, s.baseURL, s.transport)
	return api.NewClient(s.baseURL, &http.Client{Transport: manager.Transport()})
}

// PurchaseFlow returns the plan purchase flow for the session held in tokens
func (s *Service) PurchaseFlow(tokens auth.TokenStore) *subscriptions.Flow {
	return subscriptions.NewFlow(s.gateway, s.Client(tokens), func(context.Context) error {
		_, err := s.Status(tokens)
		return err
	})
}

// Login signs the session in and returns where the user goes next. Asking for
// the administrative site without the privilege signs the session out again.
func (s *Service) Login(ctx context.Context, tokens auth.TokenStore, creds users.Credentials) (string, error) {
	if err := creds.Validate(); err != nil {
		return "", err
	}

	pair, err := s.Client(tokens).Login(ctx, creds)
	if err != nil {
		return "", err
	}
	tokens.Replace(pair.Access, pair.Refresh)

	identity, err := token.DecodeIdentity(pair.Access)
	if err != nil {
		tokens.Clear()
		return "", fmt.Errorf("[account Login] %w: %w", ErrUnreadableToken, err)
	}

	admin := identity.IsAdministrator()
	switch {
	case creds.AsAdmin && admin:
		log.Info().Str("username", identity.Username).Msg("administrator signed in")
		return s.adminURL, nil
	case creds.AsAdmin:
		tokens.Clear()
		return "", ErrNotAdministrator
	}

	log.Info().Str("username", identity.Username).Str("role", string(identity.Role)).Msg("user signed in")
	return HomePath, nil
}

// Register validates reg locally before creating the account
func (s *Service) Register(ctx context.Context, reg users.Registration) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	return s.Client(auth.NewMemoryTokenStore("", "")).Register(ctx, reg)
}

// Logout tells the users API to forget the refresh token and always clears the session
func (s *Service) Logout(ctx context.Context, tokens auth.TokenStore) {
	defer tokens.Clear()

	refresh := tokens.RefreshToken()
	if refresh == "" {
		return
	}
	if err := s.Client(tokens).Logout(ctx, refresh); err != nil {
		log.Warn().Err(err).Msg("logout request failed, clearing session anyway")
	}
}

// Status decodes the identity of the signed in user
func (s *Service) Status(tokens auth.TokenStore) (*token.Identity, error) {
	access := tokens.AccessToken()
	if access == "" {
		return nil, portalerrors.ErrNotAuthenticated
	}
	identity, err := token.DecodeIdentity(access)
	if err != nil {
		return nil, fmt.Errorf("[account Status] %w", err)
	}
	return identity, nil
}

// Landing is the destination of the root route
func (s *Service) Landing(tokens auth.TokenStore) string {
	identity, err := s.Status(tokens)
	if err == nil && identity.Role == token.RoleAdmin {
		return s.adminURL
	}
	return HomePath
}
