package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeSkipped  = "skipped"
	OutcomeDeclined = "declined"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Total number of HTTP requests served by the portal",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	TokenRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_token_refresh_total",
			Help: "Access token refresh attempts triggered by 401 responses",
		},
		[]string{"outcome"},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_payments_total",
			Help: "Simulated payment confirmations by outcome",
		},
		[]string{"outcome"},
	)

	SubscriptionChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_subscription_changes_total",
			Help: "Subscription change requests sent to the users API",
		},
		[]string{"outcome"},
	)
)

// Handler serves the default Prometheus registry
func Handler() http.Handler {
	return promhttp.Handler()
}
