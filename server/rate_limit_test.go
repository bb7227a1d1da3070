package server_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/eshtarek-portal/server"
)

func TestRateLimiter(t *testing.T) {
	t.Run("burst then throttle", func(t *testing.T) {
		rl := server.NewRateLimiter(0.001, 2)
		require.True(t, rl.Allow("10.0.0.1"))
		require.True(t, rl.Allow("10.0.0.1"))
		require.False(t, rl.Allow("10.0.0.1"))
		require.True(t, rl.Allow("10.0.0.2"))
	})

	t.Run("non positive rate disables limiting", func(t *testing.T) {
		rl := server.NewRateLimiter(0, 0)
		for i := 0; i < 100; i++ {
			require.True(t, rl.Allow("10.0.0.1"))
		}
	})

	t.Run("cleanup forgets idle clients", func(t *testing.T) {
		rl := server.NewRateLimiter(0.001, 1)
		require.True(t, rl.Allow("10.0.0.1"))
		require.False(t, rl.Allow("10.0.0.1"))

		require.Equal(t, 0, rl.Cleanup(time.Hour))
		time.Sleep(time.Millisecond)
		require.Equal(t, 1, rl.Cleanup(time.Microsecond))
		require.True(t, rl.Allow("10.0.0.1"))
	})
}

func TestLoginRateLimit(t *testing.T) {
	p := setupPortalEnv(t, 0, map[string]string{
		"LOGIN_RATE_LIMIT": "0.001",
		"LOGIN_RATE_BURST": "1",
	})

	form := url.Values{"username": {"alice"}, "password": {"wrong"}}
	require.Equal(t, http.StatusSeeOther, p.post(t, server.RouteLogin, form).status)

	resp := p.post(t, server.RouteLogin, form)
	require.Equal(t, http.StatusTooManyRequests, resp.status)
	require.Contains(t, resp.body, "Too many attempts")

	// Pages are not limited
	require.Equal(t, http.StatusOK, p.get(t, server.RouteLogin).status)
}
