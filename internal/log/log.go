// ABOUTME: Leveled logging wrapper over a zap console core for the intent daemon
// ABOUTME: Global level via SetLevel; writes "[LEVEL] msg" lines to stderr so stdout stays free for JSONL

package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level constants matching slog levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	level atomic.Int64

	outMu  sync.Mutex
	out    io.Writer = os.Stderr
	logger           = newLogger(os.Stderr)
)

func init() {
	level.Store(int64(LevelInfo))
}

// newLogger builds a zap logger that prints only the bracketed level and the
// message. Level gating happens before zap sees the entry.
func newLogger(w io.Writer) *zap.Logger {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeLevel:      bracketLevel,
		ConsoleSeparator: " ",
	})
	return zap.New(zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), zapcore.DebugLevel))
}

func bracketLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + l.CapitalString() + "]")
}

// SetLevel sets the global log level.
func SetLevel(l slog.Level) {
	level.Store(int64(l))
}

// GetLevel returns the current log level.
func GetLevel() slog.Level {
	return slog.Level(level.Load())
}

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" to a level.
// Unknown names fall back to info and report false.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// SetOutput redirects log lines to w and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	prev := out
	out = w
	logger = newLogger(w)
	return prev
}

// Debug logs a debug message if the level allows it.
func Debug(format string, args ...any) {
	emit(LevelDebug, format, args)
}

// Info logs an info message if the level allows it.
func Info(format string, args ...any) {
	emit(LevelInfo, format, args)
}

// Warn logs a warning message if the level allows it.
func Warn(format string, args ...any) {
	emit(LevelWarn, format, args)
}

// Error logs an error message (always emitted).
func Error(format string, args ...any) {
	current().Error(fmt.Sprintf(format, args...))
}

func emit(l slog.Level, format string, args []any) {
	if slog.Level(level.Load()) > l {
		return
	}
	msg := fmt.Sprintf(format, args...)
	lg := current()
	switch l {
	case LevelDebug:
		lg.Debug(msg)
	case LevelInfo:
		lg.Info(msg)
	default:
		lg.Warn(msg)
	}
}

func current() *zap.Logger {
	outMu.Lock()
	defer outMu.Unlock()
	return logger
}
