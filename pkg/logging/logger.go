// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ServiceName is attached to every line written by a logger from Setup.
const ServiceName = "repo-sampler"

// LogLevel represents the logging level.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// ConfigFromEnv reads LOG_LEVEL and LOG_PRETTY through getenv on top of
// DefaultConfig. An unparsable LOG_PRETTY is treated as false.
func ConfigFromEnv(getenv func(string) string) Config {
	cfg := DefaultConfig()
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Level = LogLevel(strings.ToLower(v))
	}
	if v := getenv("LOG_PRETTY"); v != "" {
		cfg.Pretty, _ = strconv.ParseBool(v)
	}
	return cfg
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(out).With().
		Timestamp().
		Str("service", ServiceName).
		Logger()

	log.Logger = logger

	return logger
}

func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a child of the global logger tagged with component.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: per-request detail
//   - logical page to provider page mapping, seeds
//   - conditional requests and ETags
//   - rate limit observations while healthy
//
// Info: lifecycle
//   - server startup/shutdown, Redis connectivity
//   - one access log line per API request
//
// Warn: degraded but served
//   - GitHub returned a non-2xx status (rate_limit, unauthorized, upstream)
//   - rate limit low or exhausted
//   - cache or rate limit store errors (the request still goes out)
//
// Error: not served
//   - transport failures and timeouts
//   - panics recovered by the router
//   - configuration errors at startup
//
// Context Fields:
//   - component: emitting package (sampler, github-client, search, http)
//   - request_id: per API request
//   - endpoint, status, error_class: GitHub calls
//   - query, page, underlying_page, seed: sampling
//   - resource, remaining, reset_at: rate limit
