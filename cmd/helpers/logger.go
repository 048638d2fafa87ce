package helpers

import (
	"io"
	"log/slog"

	"github.com/zinc-sig/ferry/internal/logging"
)

// NewLogger logs at Debug with verbose, Warn otherwise.
func NewLogger(w io.Writer, verbose bool) logging.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return logging.NewTextLogger(w, level)
}
