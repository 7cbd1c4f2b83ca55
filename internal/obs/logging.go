// Package obs contains observability utilities such as logging.
package obs

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

// Logger returns the process-wide structured logger. Until InitLogger runs
// it is a JSON logger at info level. Safe to call from any goroutine.
func Logger() *slog.Logger {
	return current.Load()
}

// SetLogger swaps the process-wide logger and returns the previous one.
func SetLogger(l *slog.Logger) *slog.Logger {
	return current.Swap(l)
}

// InitLogger replaces the logger with a JSON handler at the given level
// ("debug", "info", "warn", "error"; unknown values mean info).
func InitLogger(level string) {
	InitLoggerTo(os.Stdout, level)
}

// InitLoggerTo is InitLogger with an explicit writer.
func InitLoggerTo(w io.Writer, level string) {
	SetLogger(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
