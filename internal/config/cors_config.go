package config

import (
	"strings"

	"github.com/spf13/viper"
)

type CorsConfig interface {
	GetAllowedOrigins() []string
	GetAllowedMethods() []string
	GetAllowedHeaders() []string
}

type Cors struct {
	v *viper.Viper
}

var _ CorsConfig = Cors{}

// GetAllowedOrigins reads a comma separated ALLOWED_ORIGINS list
func (c Cors) GetAllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.v.GetString(allowedOriginsVar), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (Cors) GetAllowedMethods() []string {
	return []string{"GET", "POST"}
}

func (Cors) GetAllowedHeaders() []string {
	return []string{"Content-Type", "HX-Request", "HX-Current-URL", "HX-Target"}
}
