package token_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/jrsteele09/eshtarek-portal/token"
	"github.com/jrsteele09/eshtarek-portal/token/tokentest"
	"github.com/stretchr/testify/require"
)

func TestDecodeIdentity(t *testing.T) {
	t.Run("tenant owner without subscription", func(t *testing.T) {
		identity, err := token.DecodeIdentity(tokentest.TenantOwner(t, "alice"))
		require.NoError(t, err)
		require.Equal(t, "alice", identity.Username)
		require.Equal(t, token.RoleTenantOwner, identity.Role)
		require.Equal(t, "acme", identity.TenantName)
		require.True(t, identity.IsTenantOwner())
		require.False(t, identity.HasSubscription())
		require.False(t, identity.IsAdministrator())
	})

	t.Run("subscription claim", func(t *testing.T) {
		identity, err := token.DecodeIdentity(tokentest.Subscribed(t, "alice", 2, "Pro"))
		require.NoError(t, err)
		require.True(t, identity.HasSubscription())
		require.Equal(t, 2, identity.Subscription.PlanID)
		require.Equal(t, "Pro", identity.Subscription.PlanName)
		require.Equal(t, []string{"Dashboard", "Reports"}, identity.Subscription.Features)
		require.Equal(t, time.Date(2030, time.January, 31, 10, 0, 0, 0, time.UTC), identity.Subscription.EndDate.UTC())
		require.True(t, identity.IsCurrentPlan(2))
		require.False(t, identity.IsCurrentPlan(3))
	})

	t.Run("null end date is tolerated", func(t *testing.T) {
		raw := tokentest.Mint(t, map[string]any{
			"role":         "tenant_owner",
			"subscription": map[string]any{"plan_id": 1, "plan_name": "Free", "end_date": nil},
		})
		identity, err := token.DecodeIdentity(raw)
		require.NoError(t, err)
		require.True(t, identity.Subscription.EndDate.IsZero())
	})

	t.Run("only role present", func(t *testing.T) {
		identity, err := token.DecodeIdentity(tokentest.Mint(t, map[string]any{"role": "tenant_user"}))
		require.NoError(t, err)
		require.Empty(t, identity.Username)
		require.Empty(t, identity.TenantName)
		require.Nil(t, identity.Subscription)
	})

	t.Run("fewer than three segments", func(t *testing.T) {
		_, err := token.DecodeIdentity("header.payload")
		require.ErrorIs(t, err, token.ErrMalformedToken)
	})

	t.Run("more than three segments", func(t *testing.T) {
		_, err := token.DecodeIdentity("a.b.c.d")
		require.ErrorIs(t, err, token.ErrMalformedToken)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := token.DecodeIdentity("")
		require.ErrorIs(t, err, token.ErrMalformedToken)
	})

	t.Run("payload is not json", func(t *testing.T) {
		header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
		payload := base64.RawURLEncoding.EncodeToString([]byte(`not-json`))
		_, err := token.DecodeIdentity(header + "." + payload + ".sig")
		require.ErrorIs(t, err, token.ErrMalformedToken)
	})

	t.Run("unknown signing algorithm still decodes", func(t *testing.T) {
		header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"XX512","typ":"JWT"}`))
		payload := base64.RawURLEncoding.EncodeToString([]byte(`{"role":"tenant_owner","username":"bob"}`))
		identity, err := token.DecodeIdentity(header + "." + payload + ".sig")
		require.NoError(t, err)
		require.Equal(t, "bob", identity.Username)
	})

	t.Run("unreadable header is ignored", func(t *testing.T) {
		payload := base64.RawURLEncoding.EncodeToString([]byte(`{"role":"admin","username":"root"}`))
		identity, err := token.DecodeIdentity("garbage!!." + payload + ".sig")
		require.NoError(t, err)
		require.Equal(t, "root", identity.Username)
		require.True(t, identity.IsAdministrator())
	})

	t.Run("padded payload", func(t *testing.T) {
		payload := base64.URLEncoding.EncodeToString([]byte(`{"role":"tenant_user","username":"eve"}`))
		identity, err := token.DecodeIdentity("x." + payload + ".sig")
		require.NoError(t, err)
		require.Equal(t, token.RoleTenantUser, identity.Role)
	})

	t.Run("payload is not base64", func(t *testing.T) {
		_, err := token.DecodeIdentity("x.%%%.sig")
		require.ErrorIs(t, err, token.ErrMalformedToken)
	})
}

func TestIsAdministrator(t *testing.T) {
	testCases := []struct {
		name   string
		claims map[string]any
		want   bool
	}{
		{name: "admin role", claims: map[string]any{"role": "admin"}, want: true},
		{name: "superuser flag", claims: map[string]any{"role": "tenant_user", "is_superuser": true}, want: true},
		{name: "staff flag", claims: map[string]any{"role": "tenant_owner", "is_staff": true}, want: true},
		{name: "tenant owner", claims: map[string]any{"role": "tenant_owner", "is_staff": false}, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, token.IsAdministrator(tokentest.Mint(t, tc.claims)))
		})
	}

	t.Run("malformed token", func(t *testing.T) {
		require.False(t, token.IsAdministrator("not-a-token"))
	})
}
