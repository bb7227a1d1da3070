package auth

import (
	"errors"
	"fmt"

	portalerrors "github.com/jrsteele09/eshtarek-portal/internal/errors"
)

var (
	ErrRefreshRejected    = errors.New("refresh token rejected")
	ErrBodyNotReplayable  = errors.New("request body cannot be replayed")
	ErrMissingAccessToken = errors.New("refresh response carries no access token")
)

// SessionExpiredError is returned when a 401 could not be recovered by a token
// refresh. Both tokens have already been cleared; the caller is expected to
// send the user to RedirectTo.
type SessionExpiredError struct {
	RedirectTo string
	Err        error
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session expired: %v", e.Err)
}

func (e *SessionExpiredError) Unwrap() []error {
	return []error{portalerrors.ErrSessionExpired, e.Err}
}
