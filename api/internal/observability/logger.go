package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger writes human-readable output locally and JSON everywhere else.
func NewLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
