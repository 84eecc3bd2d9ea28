// Package observability provides the structured logger and Prometheus metrics.
package observability

import (
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	globalLogger zerolog.Logger
	initialized  bool
)

// InitLogger sets the global logger writing JSON to w at level.
// The TUI owns stdout, so callers pass a log file.
func InitLogger(level string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	logLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || logLevel == zerolog.NoLevel {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	globalLogger = zerolog.New(w).With().Timestamp().Logger()
	log.Logger = globalLogger
	initialized = true
}

// Logger returns the global logger. Before InitLogger it discards output.
func Logger() zerolog.Logger {
	if !initialized {
		return zerolog.Nop()
	}
	return globalLogger
}

// NewRequestID returns an ID for correlating a request with backend logs.
func NewRequestID() string {
	return uuid.New().String()
}
