package cmd

import (
	"log/slog"
	"strings"
)

// Error represents a CLI command error with structured logging support.
// Errors derived from a sentinel with [Error.Wrap] or [Error.With] match it
// with errors.Is.
type Error struct {
	base  *Error
	err   error
	msg   string
	attrs []slog.Attr
}

// NewError returns a sentinel error with the given message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether e and target derive from the same sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && e.sentinel() == t.sentinel()
}

func (e *Error) sentinel() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	return &Error{base: e.sentinel(), msg: e.msg, err: err, attrs: e.attrs}
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	return &Error{
		base:  e.sentinel(),
		msg:   e.msg,
		err:   e.err,
		attrs: append(append([]slog.Attr(nil), e.attrs...), attrs...),
	}
}

var (
	ErrSource      = NewError("invalid source")
	ErrIsDir       = NewError("is a directory")
	ErrMarshal     = NewError("marshal output")
	ErrWriteConfig = NewError("write configuration file")
	ErrFileExists  = NewError("file exists (use --force to overwrite)")
	ErrWatchStdin  = NewError("cannot watch standard input")
	ErrMissingKey  = NewError("property not defined")
)
