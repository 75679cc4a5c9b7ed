package config

import (
	"io"
	"log/slog"
)

// NewLogger creates a JSON slog.Logger writing to w at level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
