// Package tokentest mints access tokens shaped like the ones issued by the
// users API, for use in tests.
package tokentest

import (
	"testing"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var testKey = []byte("tokentest-signing-key")

// Mint returns a signed HS256 token carrying claims
func Mint(t testing.TB, claims map[string]any) string {
	t.Helper()

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims(claims)).SignedString(testKey)
	if err != nil {
		t.Fatalf("tokentest: sign token: %v", err)
	}
	return signed
}

// TenantOwner returns a token for a tenant owner without a subscription
func TenantOwner(t testing.TB, username string) string {
	t.Helper()
	return Mint(t, map[string]any{
		"username":    username,
		"role":        "tenant_owner",
		"tenant_name": "acme",
	})
}

// Subscribed returns a tenant owner token with an active subscription to planID
func Subscribed(t testing.TB, username string, planID int, planName string) string {
	t.Helper()
	return Mint(t, map[string]any{
		"username":    username,
		"role":        "tenant_owner",
		"tenant_name": "acme",
		"subscription": map[string]any{
			"plan_id":   planID,
			"plan_name": planName,
			"status":    "active",
			"features":  []string{"Dashboard", "Reports"},
			"end_date":  "2030-01-31T10:00:00.000000+00:00",
		},
	})
}

// Admin returns a token for a staff user
func Admin(t testing.TB, username string) string {
	t.Helper()
	return Mint(t, map[string]any{
		"username": username,
		"role":     "admin",
		"is_staff": true,
	})
}
