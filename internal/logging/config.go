package logging

import (
	"log/slog"
	"strings"
)

// Config selects the handler and level of the process logger.
type Config struct {
	Level       string // "debug", "info", "warn", "error"
	Format      string // "json", "text"
	ServiceName string
	Version     string
	AddSource   bool
}

// DefaultConfig returns the fallback used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Format:      "text",
		ServiceName: "readkeeper",
		Version:     "dev",
	}
}

// LogLevel converts the configured level to a slog.Level. Unknown values
// map to info.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsJSON reports whether the JSON handler was requested.
func (c Config) IsJSON() bool {
	return strings.EqualFold(c.Format, "json")
}
