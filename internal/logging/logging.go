// Package logging configures log/slog for both sides of the harness: the
// plugin running inside a host, which has no command line and reads the
// environment, and the inhost CLI, which also honors its flags.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	EnvLogLevel  = "INHOST_LOG_LEVEL"
	EnvLogFormat = "INHOST_LOG_FORMAT"
)

// Config selects the slog handler.
type Config struct {
	Level  slog.Level
	Format string // "text" | "json"
	Output io.Writer
}

// DefaultConfig logs info and above as text to stderr, leaving stdout to
// the console markers.
func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

var configureOnce sync.Once

// Configure installs the default slog logger once per process, applying
// environment overrides on top of cfg. Later calls are no-ops.
func Configure(cfg Config) {
	configureOnce.Do(func() {
		ApplyEnv(&cfg, os.LookupEnv)
		slog.SetDefault(New(cfg))
	})
}

// New builds a logger from cfg without touching the default.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// Discard returns a logger that drops everything (tests).
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ApplyEnv overrides cfg from INHOST_LOG_LEVEL and INHOST_LOG_FORMAT.
// Unrecognized values are ignored.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if raw, ok := lookup(EnvLogLevel); ok {
		if lvl, ok := ParseLevel(raw); ok {
			cfg.Level = lvl
		}
	}
	if raw, ok := lookup(EnvLogFormat); ok {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "json":
			cfg.Format = "json"
		case "text":
			cfg.Format = "text"
		}
	}
}

// ParseLevel maps a level name to slog. "off" maps above error so nothing
// is emitted.
func ParseLevel(raw string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug", "trace":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	case "off", "none", "disabled":
		return slog.LevelError + 4, true
	default:
		return slog.LevelInfo, false
	}
}
