package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/eshtarek-portal/internal/config"
)

// NewLogger creates a structured zerolog.Logger tagged with the application name
// and environment and installs it as the global logger used by handlers.
// DEV gets a human readable console writer, everything else JSON on stdout.
func NewLogger(cfg config.EnvConfig) zerolog.Logger {
	var out io.Writer = os.Stdout
	if cfg.GetEnv() == "DEV" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(out).With().
		Timestamp().
		Str("service", cfg.GetAppName()).
		Str("env", cfg.GetEnv()).
		Logger()

	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil || cfg.GetLogLevel() == "" {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	log.Logger = logger
	return logger
}
