package config

import "log/slog"

// SlogLevel maps the configured log_level to a slog.Level.
// Unknown values (already rejected by validation) map to info.
func (c *Configuration) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
