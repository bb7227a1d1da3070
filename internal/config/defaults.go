package config

import (
	"errors"
	"io/fs"
	"time"
)

const (
	portEnvVar    = "PORT"
	appNameEnvVar = "APP_NAME"
	envEnvVar     = "ENV"
	logLevelVar   = "LOG_LEVEL"

	apiBaseURLVar = "API_BASE_URL"
	adminURLVar   = "ADMIN_URL"
	apiTimeoutVar = "API_TIMEOUT"

	sessionStoreVar  = "SESSION_STORE"
	sessionTTLVar    = "SESSION_TTL"
	redisAddrVar     = "REDIS_ADDR"
	redisPasswordVar = "REDIS_PASSWORD"
	redisDBVar       = "REDIS_DB"

	paymentSuccessRateVar  = "PAYMENT_SUCCESS_RATE"
	paymentIntentDelayVar  = "PAYMENT_INTENT_DELAY"
	paymentConfirmDelayVar = "PAYMENT_CONFIRM_DELAY"

	allowedOriginsVar = "ALLOWED_ORIGINS"

	loginRateLimitVar = "LOGIN_RATE_LIMIT"
	loginRateBurstVar = "LOGIN_RATE_BURST"
)

var defaults = map[string]any{
	portEnvVar:    "8080",
	appNameEnvVar: "Eshtarek",
	envEnvVar:     "DEV",
	logLevelVar:   "info",

	apiBaseURLVar: "http://localhost:8000/api",
	adminURLVar:   "http://localhost:8000/admin/",
	apiTimeoutVar: 15 * time.Second,

	sessionStoreVar:  SessionStoreMemory,
	sessionTTLVar:    24 * time.Hour,
	redisAddrVar:     "localhost:6379",
	redisPasswordVar: "",
	redisDBVar:       0,

	paymentSuccessRateVar:  0.9,
	paymentIntentDelayVar:  1000 * time.Millisecond,
	paymentConfirmDelayVar: 1500 * time.Millisecond,

	allowedOriginsVar: "",

	loginRateLimitVar: 5.0,
	loginRateBurstVar: 10,
}

// flagKeys maps configuration keys to the command line flags that override them
var flagKeys = map[string]string{
	portEnvVar:      "port",
	envEnvVar:       "env",
	logLevelVar:     "log-level",
	apiBaseURLVar:   "api-base-url",
	adminURLVar:     "admin-url",
	sessionStoreVar: "session-store",
	redisAddrVar:    "redis-addr",
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
