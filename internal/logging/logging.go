// Package logging builds the process-wide slog.Logger from config.
//
// Format is "text" (key=value, the default), "json", or "console" (colored,
// multi-line output from devslog for local debugging). Level is one of debug,
// info, warn, error; anything else means info.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/golang-cz/devslog"

	"github.com/hayeah/repocat/internal/config"
)

// New returns a logger writing to w. A nil w discards everything.
func New(cfg config.LogConfig, w io.Writer) *slog.Logger {
	if w == nil {
		return slog.New(slog.DiscardHandler)
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "console":
		handler = devslog.NewHandler(w, &devslog.Options{HandlerOptions: opts})
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
