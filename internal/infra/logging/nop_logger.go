package logging

import (
	"io"
	"log/slog"
)

// NewNopLogger creates a logger that discards all output.
func NewNopLogger() Logger {
	//nolint:exhaustruct
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: LevelError + 1}))
}
