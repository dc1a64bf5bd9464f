package observability

import (
	"log/slog"
	"os"
)

func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	// Stamp trace/span ids onto every record when a span is active.
	handler = NewTraceHandler(handler)

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
