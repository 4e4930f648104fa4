package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// DefaultContextProvider returns the context used by logging calls that
// take none.
//
//nolint:gochecknoglobals
var DefaultContextProvider = context.TODO

//nolint:gochecknoglobals
var (
	defaultLog  atomic.Pointer[Logger]
	defaultInit sync.Once
	configMu    sync.Mutex // serializes read-modify-write in Config
)

// Default returns the package-level logger, which writes to standard error
// until replaced with [SetDefault] or changed with [Config].
func Default() Logger {
	defaultInit.Do(func() {
		l := Make(os.Stderr)
		defaultLog.Store(&l)
	})

	return *defaultLog.Load()
}

// SetDefault replaces the package-level logger.
func SetDefault(l Logger) {
	defaultInit.Do(func() {})
	defaultLog.Store(&l)
}

// Config changes the settings of the package-level logger.
func Config(opts ...Option) {
	configMu.Lock()
	defer configMu.Unlock()

	l := Default().Wrap(opts...)
	defaultLog.Store(&l)
}

// With returns the package-level logger with attrs added to every record.
func With(attrs ...slog.Attr) Logger { return Default().With(attrs...) }

// TraceContext logs at [LevelTrace] with the package-level logger.
func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelTrace, msg, attrs)
}

// Trace logs at [LevelTrace] with the package-level logger.
func Trace(msg string, attrs ...slog.Attr) {
	Default().log(DefaultContextProvider(), LevelTrace, msg, attrs)
}

// DebugContext logs at [LevelDebug] with the package-level logger.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelDebug, msg, attrs)
}

// Debug logs at [LevelDebug] with the package-level logger.
func Debug(msg string, attrs ...slog.Attr) {
	Default().log(DefaultContextProvider(), LevelDebug, msg, attrs)
}

// InfoContext logs at [LevelInfo] with the package-level logger.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelInfo, msg, attrs)
}

// Info logs at [LevelInfo] with the package-level logger.
func Info(msg string, attrs ...slog.Attr) {
	Default().log(DefaultContextProvider(), LevelInfo, msg, attrs)
}

// WarnContext logs at [LevelWarn] with the package-level logger.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelWarn, msg, attrs)
}

// Warn logs at [LevelWarn] with the package-level logger.
func Warn(msg string, attrs ...slog.Attr) {
	Default().log(DefaultContextProvider(), LevelWarn, msg, attrs)
}

// ErrorContext logs at [LevelError] with the package-level logger.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelError, msg, attrs)
}

// Error logs at [LevelError] with the package-level logger.
func Error(msg string, attrs ...slog.Attr) {
	Default().log(DefaultContextProvider(), LevelError, msg, attrs)
}
