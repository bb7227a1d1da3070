package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/eshtarek-portal/api"
	"github.com/jrsteele09/eshtarek-portal/auth"
	portalerrors "github.com/jrsteele09/eshtarek-portal/internal/errors"
	"github.com/jrsteele09/eshtarek-portal/users"
)

type stubResponse struct {
	status int
	body   string
}

type recordedRequest struct {
	Method        string
	Path          string
	Authorization string
	Body          map[string]any
}

// stubAPI answers each path with a canned response and records what it saw
type stubAPI struct {
	responses map[string]stubResponse
	requests  []recordedRequest
}

func newStubAPI(t *testing.T, responses map[string]stubResponse) (*stubAPI, *api.Client) {
	t.Helper()

	stub := &stubAPI{responses: responses}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}
		stub.requests = append(stub.requests, rec)

		resp, ok := stub.responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		_, _ = io.WriteString(w, resp.body)
	}))
	t.Cleanup(srv.Close)

	return stub, api.NewClient(srv.URL+"/api/", srv.Client())
}

func TestClient_Login(t *testing.T) {
	creds := users.Credentials{Username: "alice", Password: "secret", AsAdmin: true}

	t.Run("success", func(t *testing.T) {
		stub, client := newStubAPI(t, map[string]stubResponse{
			"/api/users/login/": {http.StatusOK, `{"access":"a.b.c","refresh":"r1"}`},
		})

		pair, err := client.Login(context.Background(), creds)
		require.NoError(t, err)
		require.Equal(t, "a.b.c", pair.Access)
		require.Equal(t, "r1", pair.Refresh)
		require.Equal(t, map[string]any{"username": "alice", "password": "secret"}, stub.requests[0].Body)
	})

	t.Run("detail is surfaced", func(t *testing.T) {
		_, client := newStubAPI(t, map[string]stubResponse{
			"/api/users/login/": {http.StatusUnauthorized, `{"detail":"No active account found with the given credentials"}`},
		})

		_, err := client.Login(context.Background(), creds)
		require.ErrorIs(t, err, portalerrors.ErrAuthentication)
		require.Equal(t, "No active account found with the given credentials", portalerrors.Message(err, ""))

		var apiErr *api.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	})

	t.Run("generic message without detail", func(t *testing.T) {
		_, client := newStubAPI(t, map[string]stubResponse{
			"/api/users/login/": {http.StatusBadRequest, `{"password":["This field may not be blank."]}`},
		})

		_, err := client.Login(context.Background(), creds)
		require.Equal(t, "Invalid credentials. Please try again.", portalerrors.Message(err, ""))
	})

	t.Run("incomplete token pair", func(t *testing.T) {
		_, client := newStubAPI(t, map[string]stubResponse{
			"/api/users/login/": {http.StatusOK, `{"access":"a.b.c"}`},
		})

		_, err := client.Login(context.Background(), creds)
		require.ErrorIs(t, err, portalerrors.ErrAuthentication)
	})
}

func TestClient_Register(t *testing.T) {
	reg := users.Registration{
		Username:        "alice",
		Email:           "alice@acme.test",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
		TenantName:      "acme",
		IsTenantOwner:   true,
	}

	t.Run("success sends the form without confirmation", func(t *testing.T) {
		stub, client := newStubAPI(t, map[string]stubResponse{
			"/api/users/register/": {http.StatusCreated, `{"username":"alice","email":"alice@acme.test"}`},
		})

		require.NoError(t, client.Register(context.Background(), reg))
		require.Equal(t, map[string]any{
			"username":        "alice",
			"email":           "alice@acme.test",
			"password":        "Secret123",
			"tenant_name":     "acme",
			"is_tenant_owner": true,
		}, stub.requests[0].Body)
	})

	testCases := []struct {
		name    string
		body    string
		message string
	}{
		{"username first", `{"email":["Enter a valid email address."],"username":["A user with that username already exists."]}`, "A user with that username already exists."},
		{"email before tenant", `{"tenant_name":["This field is required."],"email":["Enter a valid email address."]}`, "Enter a valid email address."},
		{"tenant name", `{"tenant_name":["Ensure this field has no more than 100 characters."]}`, "Ensure this field has no more than 100 characters."},
		{"list body", `["This tenant has reached its maximum user limit of 5"]`, "This tenant has reached its maximum user limit of 5"},
		{"unknown shape", `{"unexpected":true}`, "Registration failed. Please try again."},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, client := newStubAPI(t, map[string]stubResponse{
				"/api/users/register/": {http.StatusBadRequest, tc.body},
			})

			err := client.Register(context.Background(), reg)
			require.ErrorIs(t, err, portalerrors.ErrValidation)
			require.Equal(t, tc.message, portalerrors.Message(err, ""))
		})
	}

	t.Run("field errors are kept", func(t *testing.T) {
		_, client := newStubAPI(t, map[string]stubResponse{
			"/api/users/register/": {http.StatusBadRequest, `{"username":["taken","too short"]}`},
		})

		var apiErr *api.Error
		require.ErrorAs(t, client.Register(context.Background(), reg), &apiErr)
		require.Equal(t, users.FieldErrors{"username": {"taken", "too short"}}, apiErr.Fields)
	})
}

func TestClient_Network(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := api.NewClient(srv.URL, srv.Client())

	err := client.Register(context.Background(), users.Registration{})
	require.ErrorIs(t, err, portalerrors.ErrNetwork)
	require.NotEmpty(t, portalerrors.Message(err, ""))
}

func TestClient_SubscriptionPlans(t *testing.T) {
	t.Run("decodes catalogue in order", func(t *testing.T) {
		_, client := newStubAPI(t, map[string]stubResponse{
			"/api/users/subscription-plans/": {http.StatusOK, `[
				{"id":1,"name":"Basic","price":"9.99","description":"Starter","max_users":3},
				{"id":2,"name":"Pro","price":"29.00","features":"Dashboard,Reports","max_users":10}
			]`},
		})

		plans, err := client.SubscriptionPlans(context.Background())
		require.NoError(t, err)
		require.Len(t, plans, 2)
		require.Equal(t, "Basic", plans[0].Name)
		require.Equal(t, int64(999), plans[0].AmountMinor())
		require.Equal(t, int64(2900), plans[1].AmountMinor())
		require.Equal(t, []string{"Dashboard", "Reports"}, plans[1].FeatureList())
	})

	t.Run("server error", func(t *testing.T) {
		_, client := newStubAPI(t, map[string]stubResponse{
			"/api/users/subscription-plans/": {http.StatusInternalServerError, `<html>oops</html>`},
		})

		_, err := client.SubscriptionPlans(context.Background())
		require.ErrorIs(t, err, portalerrors.ErrInternal)
	})

	t.Run("html error page is not shown", func(t *testing.T) {
		_, client := newStubAPI(t, map[string]stubResponse{
			"/api/users/subscription-plans/": {http.StatusNotFound, `<html><body><h1>404 Not Found</h1></body></html>`},
		})

		_, err := client.SubscriptionPlans(context.Background())
		require.ErrorIs(t, err, portalerrors.ErrNotFound)
		require.Equal(t, "Failed to load subscription plans", portalerrors.Message(err, "generic"))
	})
}

func TestClient_CreateSubscription(t *testing.T) {
	t.Run("returns new token pair", func(t *testing.T) {
		stub, client := newStubAPI(t, map[string]stubResponse{
			"/api/users/subscriptions/": {http.StatusOK, `{"message":"Subscription updated successfully.","access":"a2","refresh":"r2"}`},
		})

		result, err := client.CreateSubscription(context.Background(), 2, "mock_payment_abc")
		require.NoError(t, err)
		require.True(t, result.HasTokens())
		require.Equal(t, "a2", result.Access)
		require.Equal(t, map[string]any{"plan": float64(2), "payment_id": "mock_payment_abc"}, stub.requests[0].Body)
	})

	t.Run("error message is surfaced", func(t *testing.T) {
		_, client := newStubAPI(t, map[string]stubResponse{
			"/api/users/subscriptions/": {http.StatusForbidden, `{"error":"Only tenant owners can manage subscriptions."}`},
		})

		_, err := client.CreateSubscription(context.Background(), 2, "mock_payment_abc")
		require.Equal(t, "Only tenant owners can manage subscriptions.", portalerrors.Message(err, "fallback"))
	})

	t.Run("no structured message", func(t *testing.T) {
		_, client := newStubAPI(t, map[string]stubResponse{
			"/api/users/subscriptions/": {http.StatusBadRequest, `{}`},
		})

		_, err := client.CreateSubscription(context.Background(), 2, "mock_payment_abc")
		require.Equal(t, "fallback", portalerrors.Message(err, "fallback"))
	})
}

func TestClient_Logout(t *testing.T) {
	stub, client := newStubAPI(t, map[string]stubResponse{
		"/api/users/logout/": {http.StatusResetContent, `{"message":"Logged out successfully."}`},
	})

	require.NoError(t, client.Logout(context.Background(), "r1"))
	require.Equal(t, map[string]any{"refresh": "r1"}, stub.requests[0].Body)
}

func TestClient_ThroughSessionTransport(t *testing.T) {
	stub, client := newStubAPI(t, map[string]stubResponse{
		"/api/users/subscription-plans/": {http.StatusOK, `[]`},
	})

	store := auth.NewMemoryTokenStore("a1", "r1")
	manager := auth.NewSessionManager(store, client.BaseURL(), http.DefaultTransport)
	client = client.WithHTTPClient(&http.Client{Transport: manager.Transport()})

	_, err := client.SubscriptionPlans(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer a1", stub.requests[0].Authorization)
}
