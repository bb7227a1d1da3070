package config

import (
	"fmt"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	PaymentConfig
	CorsConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	API
	Sessions
	Payments
	Cors
	Security
}

// New resolves configuration from defaults, the environment and, when fs is
// not nil, the parsed command line flags. Flags win over the environment.
func New(fs *flag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if fs != nil {
		for key, name := range flagKeys {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("[config New] bind flag %s: %w", name, err)
			}
		}
	}

	return mainConfig{
		EnvVars:  EnvVars{v: v},
		API:      API{v: v},
		Sessions: Sessions{v: v},
		Payments: Payments{v: v},
		Cors:     Cors{v: v},
		Security: Security{v: v},
	}, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set are left alone. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if isNotExist(err) {
			return nil
		}
		return fmt.Errorf("[config LoadEnvFile] %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}
