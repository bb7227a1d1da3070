package config

import (
	flag "github.com/spf13/pflag"
)

// Flags declares the command line flags understood by the portal server.
// Defaults are left empty so unset flags never shadow the environment.
func Flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.String("port", "", "Port to listen on (PORT)")
	fs.String("env", "", "Environment name, DEV enables console logging (ENV)")
	fs.String("log-level", "", "Log level: debug, info, warn, error (LOG_LEVEL)")
	fs.String("api-base-url", "", "Base URL of the users API (API_BASE_URL)")
	fs.String("admin-url", "", "Administrative site administrators are sent to (ADMIN_URL)")
	fs.String("session-store", "", "Session store: memory or redis (SESSION_STORE)")
	fs.String("redis-addr", "", "Redis address for the redis session store (REDIS_ADDR)")
	fs.String("env-file", ".env", "Optional file of KEY=VALUE pairs loaded before configuration")
	fs.BoolP("help", "h", false, "Show help message")
	return fs
}
