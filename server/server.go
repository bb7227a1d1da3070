package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/eshtarek-portal/account"
	"github.com/jrsteele09/eshtarek-portal/internal/config"
	"github.com/jrsteele09/eshtarek-portal/sessions"
)

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	router   chi.Router
	routes   []string
	config   config.Config
	accounts *account.Service
	sessions sessions.Repo
	limiter  *RateLimiter
}

func New(config config.Config, accounts *account.Service, sessionRepo sessions.Repo) (*Server, error) {
	if accounts == nil {
		return nil, fmt.Errorf("[Server New] account service is required")
	}
	if sessionRepo == nil {
		return nil, fmt.Errorf("[Server New] session repo is required")
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   config,
		accounts: accounts,
		sessions: sessionRepo,
		limiter:  NewRateLimiter(config.GetLoginRateLimit(), config.GetLoginRateBurst()),
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// RegisterRouteHandler registers handler for a "METHOD /path" pattern
func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	method, path := splitPattern(pattern)
	if method == "" {
		s.router.Handle(path, handler)
		return
	}
	s.router.Method(method, path, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.RegisterRouteHandler(pattern, http.HandlerFunc(handler))
}

// Limiter exposes the login rate limiter so the caller can schedule its cleanup
func (s *Server) Limiter() *RateLimiter {
	return s.limiter
}

func splitPattern(pattern string) (method, path string) {
	parts := strings.SplitN(pattern, " ", 2)
	if len(parts) > 1 {
		return parts[0], parts[1]
	}
	return "", parts[0]
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		logRoute(splitPattern(route))
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Debug().Msgf("[%-19s] %s", color+paddedMethod+ResetColor, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
