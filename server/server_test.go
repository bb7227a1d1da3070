package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/eshtarek-portal/account"
	"github.com/jrsteele09/eshtarek-portal/internal/config"
	"github.com/jrsteele09/eshtarek-portal/payments"
	"github.com/jrsteele09/eshtarek-portal/server"
	"github.com/jrsteele09/eshtarek-portal/sessions"
	"github.com/jrsteele09/eshtarek-portal/token/tokentest"
)

const (
	adminURL = "http://localhost:8000/admin/"
	password = "Secret123"
)

const plansJSON = `[
	{"id": 1, "name": "Basic", "price": "9.99", "features": "Dashboard, Reports", "max_users": 5},
	{"id": 2, "name": "Pro", "price": "29.99", "features": "Dashboard, Reports, API access", "max_users": 20}
]`

// usersAPI stands in for the remote users API
type usersAPI struct {
	mu         sync.Mutex
	valid      map[string]bool
	refreshOK  bool
	refreshes  int
	logouts    int
	subscribed []map[string]any

	ownerAccess      string
	subscriberAccess string
	adminAccess      string
	renewedAccess    string
	upgradedAccess   string
}

func (u *usersAPI) authorized(r *http.Request) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.valid[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
}

func (u *usersAPI) accept(access string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.valid[access] = true
}

func (u *usersAPI) expire(access string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.valid, access)
}

func (u *usersAPI) set(fn func(u *usersAPI)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fn(u)
}

func (u *usersAPI) get(fn func(u *usersAPI)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fn(u)
}

func unauthorized(w http.ResponseWriter) {
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = io.WriteString(w, `{"detail": "Given token not valid for any token type", "code": "token_not_valid"}`)
}

func newUsersAPI(t *testing.T) (*usersAPI, *httptest.Server) {
	t.Helper()

	u := &usersAPI{
		valid:            map[string]bool{},
		ownerAccess:      tokentest.TenantOwner(t, "alice"),
		subscriberAccess: tokentest.Subscribed(t, "bob", 2, "Pro"),
		adminAccess:      tokentest.Admin(t, "root"),
		upgradedAccess:   tokentest.Subscribed(t, "alice", 2, "Pro"),
		// Distinct from ownerAccess so a refresh is observable
		renewedAccess: tokentest.Mint(t, map[string]any{"username": "alice", "role": "tenant_owner", "tenant_name": "acme", "jti": "renewed"}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/login/", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != password {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail": "No active account found with the given credentials"}`)
			return
		}

		access := u.ownerAccess
		switch creds.Username {
		case "root":
			access = u.adminAccess
		case "bob":
			access = u.subscriberAccess
		}
		u.accept(access)
		_ = json.NewEncoder(w).Encode(map[string]string{"access": access, "refresh": "r1"})
	})
	mux.HandleFunc("POST /api/users/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		ok := u.refreshOK
		u.refreshes++
		if ok {
			u.valid[u.renewedAccess] = true
		}
		renewed := u.renewedAccess
		u.mu.Unlock()

		if !ok {
			unauthorized(w)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access": renewed})
	})
	mux.HandleFunc("POST /api/users/logout/", func(w http.ResponseWriter, r *http.Request) {
		u.set(func(u *usersAPI) { u.logouts++ })
		w.WriteHeader(http.StatusResetContent)
	})
	mux.HandleFunc("POST /api/users/register/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] == "taken" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"username": ["A user with that username already exists."]}`)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /api/users/subscription-plans/", func(w http.ResponseWriter, r *http.Request) {
		if !u.authorized(r) {
			unauthorized(w)
			return
		}
		_, _ = io.WriteString(w, plansJSON)
	})
	mux.HandleFunc("POST /api/users/subscriptions/", func(w http.ResponseWriter, r *http.Request) {
		if !u.authorized(r) {
			unauthorized(w)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		u.mu.Lock()
		u.subscribed = append(u.subscribed, body)
		u.valid[u.upgradedAccess] = true
		upgraded := u.upgradedAccess
		u.mu.Unlock()

		_ = json.NewEncoder(w).Encode(map[string]string{
			"message": "Subscription updated successfully.",
			"access":  upgraded,
			"refresh": "r2",
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return u, srv
}

type portal struct {
	api    *usersAPI
	repo   *sessions.InMemoryRepo
	srv    *httptest.Server
	client *http.Client
}

// page is a response with its body already read
type page struct {
	status   int
	location string
	header   http.Header
	body     string
}

func setupPortal(t *testing.T, outcome float64) *portal {
	t.Helper()
	return setupPortalEnv(t, outcome, nil)
}

// setupPortalEnv starts the portal with env applied over the test defaults
func setupPortalEnv(t *testing.T, outcome float64, env map[string]string) *portal {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("LOGIN_RATE_LIMIT", "0")
	for key, value := range env {
		t.Setenv(key, value)
	}

	api, apiSrv := newUsersAPI(t)

	cfg, err := config.New(nil)
	require.NoError(t, err)

	gateway := &payments.MockGateway{SuccessRate: 0.9, Outcome: func() float64 { return outcome }}
	accounts := account.New(apiSrv.URL+"/api", apiSrv.Client().Transport, adminURL, gateway)
	repo := sessions.NewInMemoryRepo(time.Hour)

	s, err := server.New(cfg, accounts, repo)
	require.NoError(t, err)

	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	return &portal{api: api, repo: repo, srv: srv, client: newBrowser(t)}
}

// newBrowser keeps cookies and never follows redirects
func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (p *portal) do(t *testing.T, req *http.Request) page {
	t.Helper()
	resp, err := p.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return page{
		status:   resp.StatusCode,
		location: resp.Header.Get("Location"),
		header:   resp.Header,
		body:     string(body),
	}
}

func (p *portal) get(t *testing.T, path string) page {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, p.srv.URL+path, nil)
	require.NoError(t, err)
	return p.do(t, req)
}

func (p *portal) post(t *testing.T, path string, form url.Values) page {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, p.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return p.do(t, req)
}

func (p *portal) login(t *testing.T, username string) page {
	t.Helper()
	return p.post(t, server.RouteLogin, url.Values{"username": {username}, "password": {password}})
}

func (p *portal) sessionID(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(p.srv.URL)
	require.NoError(t, err)
	for _, c := range p.client.Jar.Cookies(u) {
		if c.Name == "eshtarek_session" {
			return c.Value
		}
	}
	return ""
}

func queryParam(t *testing.T, location, key string) string {
	t.Helper()
	u, err := url.Parse(location)
	require.NoError(t, err)
	return u.Query().Get(key)
}
