package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Logger writes structured records through [log/slog].
//
// A Logger is an immutable value and safe for concurrent use. Its zero
// value discards everything, so components may hold one without checking
// whether logging was configured.
type Logger struct {
	*slog.Logger
	opts options
}

// Make returns a Logger writing to w with the default settings
// ([DefaultLevel], [DefaultFormat], [DefaultTimeLayout], [DefaultCaller],
// [DefaultPretty]) changed by opts.
func Make(w io.Writer, opts ...Option) Logger {
	o := defaultOptions(w).with(opts...)

	return Logger{Logger: slog.New(o.handler()), opts: o}
}

// Wrap returns a Logger with the settings of l changed by opts. Attributes
// added with [Logger.With] are not carried over.
func (l Logger) Wrap(opts ...Option) Logger {
	o := l.opts
	if l.Logger == nil {
		o = defaultOptions(nil)
	}

	o = o.with(opts...)

	return Logger{Logger: slog.New(o.handler()), opts: o}
}

// With returns a Logger that adds attrs to every record.
func (l Logger) With(attrs ...slog.Attr) Logger {
	if l.Logger == nil || len(attrs) == 0 {
		return l
	}

	return Logger{
		Logger: slog.New(l.Handler().WithAttrs(attrs)),
		opts:   l.opts,
	}
}

// Level returns the minimum level written.
func (l Logger) Level() Level {
	if l.Logger == nil {
		return DefaultLevel
	}

	return l.opts.level
}

// Format returns the record encoding.
func (l Logger) Format() Format {
	if l.Logger == nil {
		return DefaultFormat
	}

	return l.opts.format
}

// Allows reports whether a record at level would be written, so callers can
// skip building expensive attributes.
func (l Logger) Allows(ctx context.Context, level Level) bool {
	return l.Logger != nil && l.Enabled(ctx, slog.Level(level))
}

// TraceContext logs at [LevelTrace].
func (l Logger) TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelTrace, msg, attrs)
}

// Trace logs at [LevelTrace] with [DefaultContextProvider].
func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), LevelTrace, msg, attrs)
}

// DebugContext logs at [LevelDebug].
func (l Logger) DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelDebug, msg, attrs)
}

// Debug logs at [LevelDebug] with [DefaultContextProvider].
func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), LevelDebug, msg, attrs)
}

// InfoContext logs at [LevelInfo].
func (l Logger) InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelInfo, msg, attrs)
}

// Info logs at [LevelInfo] with [DefaultContextProvider].
func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), LevelInfo, msg, attrs)
}

// WarnContext logs at [LevelWarn].
func (l Logger) WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelWarn, msg, attrs)
}

// Warn logs at [LevelWarn] with [DefaultContextProvider].
func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), LevelWarn, msg, attrs)
}

// ErrorContext logs at [LevelError].
func (l Logger) ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelError, msg, attrs)
}

// Error logs at [LevelError] with [DefaultContextProvider].
func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), LevelError, msg, attrs)
}

// callerSkip is the number of frames between runtime.Callers and the code
// that logged: runtime.Callers, Logger.log, and one exported method or
// package function.
const callerSkip = 3

// log writes one record. Every exported logging method and package function
// calls it directly, so the recorded call site is always callerSkip frames up.
func (l Logger) log(ctx context.Context, level Level, msg string, attrs []slog.Attr) {
	if !l.Allows(ctx, level) {
		return
	}

	var pcs [1]uintptr

	runtime.Callers(callerSkip, pcs[:])

	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	r.AddAttrs(attrs...)

	_ = l.Handler().Handle(ctx, r)
}

// Err returns the attribute conventionally used for an error. Errors that
// implement [slog.LogValuer] are expanded by the handler.
func Err(err error) slog.Attr { return slog.Any("error", err) }
