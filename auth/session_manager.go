package auth

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/eshtarek-portal/internal/metrics"
)

const (
	// LoginRedirect is where callers send the user once the session cannot be recovered
	LoginRedirect = "/login"

	loginPathMarker = "/login/"
)

type retriedKey struct{}

func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

func isRetried(ctx context.Context) bool {
	retried, _ := ctx.Value(retriedKey{}).(bool)
	return retried
}

// SessionManager attaches the session's access token to outgoing requests and
// recovers from a 401 with a single token refresh.
type SessionManager struct {
	tokens  TokenStore
	baseURL string
	base    http.RoundTripper
}

// NewSessionManager creates a SessionManager for tokens. base performs the
// actual round trips, refresh calls included; nil means http.DefaultTransport.
func NewSessionManager(tokens TokenStore, baseURL string, base http.RoundTripper) *SessionManager {
	if base == nil {
		base = http.DefaultTransport
	}
	return &SessionManager{
		tokens:  tokens,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		base:    base,
	}
}

// Attach sets the bearer header when an access token is stored and leaves the
// request untouched otherwise.
func (m *SessionManager) Attach(req *http.Request) {
	if access := m.tokens.AccessToken(); access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
}

// OnUnauthorized handles a 401 response to req.
//
// The original response is returned unchanged when req was already retried,
// when no refresh token is stored, or when req targets the login endpoint.
// Otherwise the access token is refreshed and req is issued once more with the
// new token. A failed refresh clears both tokens and yields a
// *SessionExpiredError wrapping the refresh error.
func (m *SessionManager) OnUnauthorized(req *http.Request, resp *http.Response) (*http.Response, error) {
	if isRetried(req.Context()) {
		return resp, nil
	}

	refresh := m.tokens.RefreshToken()
	if refresh == "" {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return resp, nil
	}

	if strings.Contains(req.URL.Path, loginPathMarker) {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return resp, nil
	}

	retry, err := cloneForRetry(req)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.OutcomeSkipped).Inc()
		log.Debug().Err(err).Str("path", req.URL.Path).Msg("401 not retried")
		return resp, nil
	}

	access, err := RefreshAccessToken(req.Context(), &http.Client{Transport: m.base}, m.baseURL, refresh)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		log.Warn().Err(err).Str("path", req.URL.Path).Msg("token refresh failed, clearing session")
		m.tokens.Clear()
		discard(resp)
		return nil, &SessionExpiredError{RedirectTo: LoginRedirect, Err: err}
	}

	metrics.TokenRefreshTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	m.tokens.SetAccessToken(access)
	discard(resp)

	m.Attach(retry)
	return m.base.RoundTrip(retry)
}

// Transport returns a RoundTripper applying Attach to every request and
// OnUnauthorized to every 401. Concurrent 401s each refresh independently.
func (m *SessionManager) Transport() http.RoundTripper {
	return &sessionTransport{manager: m}
}

type sessionTransport struct {
	manager *SessionManager
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	outgoing := req.Clone(req.Context())
	if err := bufferBody(outgoing); err != nil {
		return nil, err
	}
	t.manager.Attach(outgoing)

	resp, err := t.manager.base.RoundTrip(outgoing)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	return t.manager.OnUnauthorized(outgoing, resp)
}

// cloneForRetry copies req for a second attempt carrying the retried marker.
func cloneForRetry(req *http.Request) (*http.Request, error) {
	retry := req.Clone(markRetried(req.Context()))
	if req.Body == nil || req.Body == http.NoBody {
		return retry, nil
	}
	if req.GetBody == nil {
		return nil, ErrBodyNotReplayable
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBodyNotReplayable, err)
	}
	retry.Body = body
	return retry, nil
}

// bufferBody makes req's body replayable when the caller did not provide GetBody.
func bufferBody(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return fmt.Errorf("[auth bufferBody] read request body: %w", err)
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return nil
}

func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
