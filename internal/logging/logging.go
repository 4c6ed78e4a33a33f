package logging

import (
	"log/slog"
	"os"
)

// Init installs the process-wide slog logger. Beam is a terminal UI
// program, so logging stays quiet by default and writes to stderr;
// LOG_LEVEL opens the tap for debugging sessions.
func Init() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: levelFromEnv(),
	}))
	slog.SetDefault(logger)
}

func levelFromEnv() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug", "dev", "development":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
