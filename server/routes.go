package server

import (
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/eshtarek-portal/internal/metrics"
)

func (s *Server) initRoutes() {
	s.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.MetricsMiddleware,
		s.LoggingMiddleware,
		middleware.Recoverer,
		s.CorsMiddleware(),
	)

	s.RegisterRouteFunc("GET "+RouteRoot, ChainMiddleware(s.LandingHandler(), s.HTMLMiddleWare()...))

	// ACCOUNT
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare(s.limiter.Middleware)...))
	s.RegisterRouteFunc("GET "+RouteRegister, ChainMiddleware(s.RegisterPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("POST "+RouteRegister, ChainMiddleware(s.RegisterSubmissionHandler(), s.HTMLMiddleWare(s.limiter.Middleware)...))
	s.RegisterRouteFunc("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Protected pages
	s.RegisterRouteFunc("GET "+RouteHome, ChainMiddleware(s.HomeHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteFunc("POST "+RouteSubscriptionSelect, ChainMiddleware(s.SelectPlanHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteFunc("POST "+RouteSubscriptionPay, ChainMiddleware(s.PayHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteFunc("POST "+RouteSubscriptionCancel, ChainMiddleware(s.CancelCheckoutHandler(), s.HTMLMiddleWare(s.RequireSession)...))

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, metrics.Handler())

	s.RegisterRouteFunc("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler("css"), s.CacheMiddleware))

	// Unknown pages fall back to the home page, like the SPA's catch-all route
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		redirectSuccess(w, r, RouteHome)
	})
}

func (s *Server) serveFileHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file := chi.URLParam(r, "file")
		if file == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		filePath := path.Join(dir, path.Clean("/" + file)[1:])
		if err := StreamFile(w, r, filePath); err != nil {
			log.Debug().Err(err).Str("path", filePath).Msg("static file not served")
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}

// HealthHandler reports liveness
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
