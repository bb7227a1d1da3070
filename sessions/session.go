package sessions

import (
	"fmt"
	"time"

	portalerrors "github.com/jrsteele09/eshtarek-portal/internal/errors"
	"github.com/jrsteele09/eshtarek-portal/subscriptions"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = fmt.Errorf("session %w", portalerrors.ErrNotFound)

// Session is the server side state behind one browser session cookie
type Session struct {
	ID           string                 `json:"id"`
	AccessToken  string                 `json:"access_token,omitempty"`
	RefreshToken string                 `json:"refresh_token,omitempty"`
	Checkout     subscriptions.Checkout `json:"checkout"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// New returns an anonymous session
func New(id string) Session {
	now := time.Now()
	return Session{
		ID:        id,
		Checkout:  subscriptions.Checkout{State: subscriptions.StateBrowsing},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}
