package formengine

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds a text logger at the named level (debug, info, warn,
// error, off). Unknown names fall back to info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	lvl, off, _ := parseLogLevel(level)
	if off {
		return NewNopLogger()
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLogLevel(levelStr string) (level slog.Level, off bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug, false, true
	case "info":
		return slog.LevelInfo, false, true
	case "warn", "warning":
		return slog.LevelWarn, false, true
	case "error":
		return slog.LevelError, false, true
	case "off":
		return slog.LevelError, true, true
	default:
		return slog.LevelInfo, false, false
	}
}
