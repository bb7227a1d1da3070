package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetAdminURL() string
	GetAPITimeout() time.Duration
}

type API struct {
	v *viper.Viper
}

var _ APIConfig = API{}

// GetAPIBaseURL returns the users API root without a trailing slash (e.g. "http://localhost:8000/api")
func (a API) GetAPIBaseURL() string {
	return strings.TrimRight(a.v.GetString(apiBaseURLVar), "/")
}

// GetAdminURL is where administrators are sent after login
func (a API) GetAdminURL() string {
	return a.v.GetString(adminURLVar)
}

func (a API) GetAPITimeout() time.Duration {
	return a.v.GetDuration(apiTimeoutVar)
}
