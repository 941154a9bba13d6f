// Package observability configures the process-wide slog logger.
package observability

import (
	"fmt"
	"log/slog"
	"os"
)

// Instrument installs the default slog logger with the given level and output
// format ("text" or "json"). Logs go to stderr so command output on stdout
// stays machine-readable.
func Instrument(level slog.Level, format string) error {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("unsupported log format: %s", format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}
