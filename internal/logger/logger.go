// Package logger is the diagnostic log of the whistle CLI.
//
// It is silent unless --verbose or --log-level is given, so a submitter
// never sees provider or storage errors on the terminal. Records are
// written to stderr in slog text format without timestamps.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LevelOff disables all output.
const LevelOff = slog.Level(64)

var mu sync.RWMutex

var (
	level  = LevelOff
	output = io.Writer(os.Stderr)
	log    = build(output, level)
)

func build(w io.Writer, l slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: l,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// SetLevel sets the lowest level that is written.
func SetLevel(l slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
	log = build(output, level)
}

// Level returns the current threshold.
func Level() slog.Level {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// SetVerbose switches between full debug output and silence.
func SetVerbose(v bool) {
	if v {
		SetLevel(slog.LevelDebug)
		return
	}
	SetLevel(LevelOff)
}

// IsVerbose reports whether any output is enabled.
func IsVerbose() bool {
	return Level() < LevelOff
}

// SetOutput sets the writer for log records. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	log = build(output, level)
}

// ParseLevel converts "debug", "info", "warn" or "off" to a level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "off", "none":
		return LevelOff, nil
	default:
		return LevelOff, fmt.Errorf("unknown log level %q", s)
	}
}

func logf(l slog.Level, format string, args ...any) {
	mu.RLock()
	lg := log
	mu.RUnlock()

	ctx := context.Background()
	if !lg.Enabled(ctx, l) {
		return
	}
	lg.Log(ctx, l, fmt.Sprintf(format, args...))
}

// Debug logs per-complaint detail such as scores and matches.
func Debug(format string, args ...any) { logf(slog.LevelDebug, format, args...) }

// Info logs state changes: stored complaints, status moves, logins.
func Info(format string, args ...any) { logf(slog.LevelInfo, format, args...) }

// Warn logs degraded operation such as a fallback to local analysis.
func Warn(format string, args ...any) { logf(slog.LevelWarn, format, args...) }

// Section marks the start of a pipeline stage at debug level.
func Section(name string) { logf(slog.LevelDebug, "=== %s ===", name) }
