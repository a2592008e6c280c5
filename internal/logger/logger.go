package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/jwebster45206/white-rabbit/internal/config"
)

// Setup configures the global slog logger based on environment
func Setup(cfg *config.Config) *slog.Logger {
	return New(cfg, os.Stdout)
}

// New builds the logger Setup installs, writing to w.
func New(cfg *config.Config, w io.Writer) *slog.Logger {
	level := cfg.LogLevel
	// The debug toggles are useless without debug output.
	if cfg.DebugLLM || cfg.DebugState {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// WithSessionID adds the session key to logger context
func WithSessionID(logger *slog.Logger, sessionID string) *slog.Logger {
	return logger.With("session_id", sessionID)
}
