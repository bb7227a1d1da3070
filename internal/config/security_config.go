package config

import (
	"github.com/spf13/viper"
)

type SecurityConfig interface {
	GetLoginRateLimit() float64
	GetLoginRateBurst() int
}

type Security struct {
	v *viper.Viper
}

var _ SecurityConfig = Security{}

// GetLoginRateLimit is the sustained number of login submissions allowed per second per client
func (s Security) GetLoginRateLimit() float64 {
	return s.v.GetFloat64(loginRateLimitVar)
}

func (s Security) GetLoginRateBurst() int {
	return s.v.GetInt(loginRateBurstVar)
}
