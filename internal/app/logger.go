package app

import (
	"io"
	"log/slog"
	"strings"
)

// newLogger builds the application logger from the log settings in cfg. Level
// names are case-insensitive and accept slog offsets such as "warn+2"; an
// empty or unknown level logs at info. Every record carries the task and
// gate policy of the run so logs from concurrent invocations can be told
// apart. The global logger is left untouched.
func newLogger(cfg *Config, logW io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if cfg.LogLevel != "" {
		if err := level.UnmarshalText([]byte(strings.TrimSpace(cfg.LogLevel))); err != nil {
			level = slog.LevelInfo
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(logW, opts)
	} else {
		handler = slog.NewTextHandler(logW, opts)
	}

	logger := slog.New(handler)
	if cfg.Task != "" {
		logger = logger.With("task", cfg.Task)
	}
	if cfg.Policy != "" {
		logger = logger.With("policy", cfg.Policy)
	}
	return logger
}
