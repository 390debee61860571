package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. JSON output so log aggregation can index the
// structured attributes services attach.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
