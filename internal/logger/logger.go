package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup initializes the global logger based on config
func Setup(level string) {
	SetupWriter(level, os.Stderr)
}

// SetupWriter is Setup with an explicit destination, used by tests to
// capture output. Stderr is the default so artifacts on stdout stay clean.
func SetupWriter(level string, w io.Writer) {
	var logLevel slog.Level

	switch strings.ToUpper(level) {
	case "DEBUG":
		logLevel = slog.LevelDebug
	case "WARN":
		logLevel = slog.LevelWarn
	case "ERROR":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	// Structured text handler (easier to read than JSON in terminal)
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})

	slog.SetDefault(slog.New(handler))
}
