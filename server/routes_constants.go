package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteRoot = "/"

	// Account Routes
	RouteLogin    = "/login"
	RouteRegister = "/register"
	RouteLogout   = "/logout"
	RouteHome     = "/home"

	// Subscription Routes
	RouteSubscriptionSelect = "/subscriptions/select"
	RouteSubscriptionPay    = "/subscriptions/pay"
	RouteSubscriptionCancel = "/subscriptions/cancel"

	// Operational Routes
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)
