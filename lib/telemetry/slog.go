package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the default text handler. verbose enables
// debug-level output (including per-request http logs).
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
