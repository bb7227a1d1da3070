package token

import (
	"encoding/json"
	"fmt"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"

	portalerrors "github.com/jrsteele09/eshtarek-portal/internal/errors"
)

// ErrMalformedToken is returned for access tokens whose payload cannot be read
var ErrMalformedToken = portalerrors.ErrMalformedToken

// RoleType is the role claim issued by the users API
type RoleType string

const (
	RoleAdmin       RoleType = "admin"        // Platform administrator, uses the administrative site
	RoleTenantOwner RoleType = "tenant_owner" // Manages the tenant's subscription
	RoleTenantUser  RoleType = "tenant_user"  // Regular member of a tenant
)

// Subscription is the tenant's active plan as embedded in the access token
type Subscription struct {
	PlanID   int       `json:"plan_id"`
	PlanName string    `json:"plan_name"`
	Status   string    `json:"status,omitempty"`
	Features []string  `json:"features,omitempty"`
	EndDate  Timestamp `json:"end_date"`
}

// Identity is the user identity carried in the access token payload.
// It is read-only: a new token replaces it wholesale.
type Identity struct {
	jwtlib.RegisteredClaims
	Username     string        `json:"username,omitempty"`
	Role         RoleType      `json:"role,omitempty"`
	TenantName   string        `json:"tenant_name,omitempty"`
	IsSuperuser  bool          `json:"is_superuser,omitempty"`
	IsStaff      bool          `json:"is_staff,omitempty"`
	Subscription *Subscription `json:"subscription,omitempty"`
}

var segmentParser = jwtlib.NewParser(jwtlib.WithPaddingAllowed())

// DecodeIdentity reads the payload segment of accessToken. Neither the header
// nor the signature is looked at; the users API remains the authority on every
// request.
func DecodeIdentity(accessToken string) (*Identity, error) {
	segments := strings.Split(accessToken, ".")
	if len(segments) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(segments))
	}

	payload, err := segmentParser.DecodeSegment(segments[1])
	if err != nil {
		return nil, fmt.Errorf("%w: decode payload: %v", ErrMalformedToken, err)
	}

	identity := &Identity{}
	if err := json.Unmarshal(payload, identity); err != nil {
		return nil, fmt.Errorf("%w: parse payload: %v", ErrMalformedToken, err)
	}
	return identity, nil
}

// IsAdministrator reports whether accessToken belongs to a user that should be
// sent to the administrative site. Malformed tokens are never administrators.
func IsAdministrator(accessToken string) bool {
	identity, err := DecodeIdentity(accessToken)
	if err != nil {
		return false
	}
	return identity.IsAdministrator()
}

func (i *Identity) IsAdministrator() bool {
	return i.Role == RoleAdmin || i.IsSuperuser || i.IsStaff
}

func (i *Identity) IsTenantOwner() bool {
	return i.Role == RoleTenantOwner
}

func (i *Identity) HasSubscription() bool {
	return i.Subscription != nil
}

// IsCurrentPlan reports whether planID is the tenant's active plan
func (i *Identity) IsCurrentPlan(planID int) bool {
	return i.Subscription != nil && i.Subscription.PlanID == planID
}
