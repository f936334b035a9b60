// Package logger builds the service-wide zerolog logger.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New returns a logger tagged with the service name. LUCID_LOG_LEVEL
// (trace|debug|info|warn|error) adjusts verbosity; it defaults to info.
func New(serviceName string) zerolog.Logger {
	level := zerolog.InfoLevel
	if raw := os.Getenv("LUCID_LOG_LEVEL"); raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	return zerolog.New(os.Stdout).
		Level(level).
		With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}
