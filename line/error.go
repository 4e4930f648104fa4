package line

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Errors derived from a sentinel with [Error.Wrap] or [Error.With] still
// match it with [errors.Is].
var (
	ErrInvalidConfig       = NewError("invalid configuration")
	ErrInvalidSource       = NewError("invalid line source")
	ErrRead                = NewError("failed to read line source")
	ErrResolution          = NewError("failed to resolve directive")
	ErrUnresolvedDirective = NewError("unresolved directive")
	ErrCycle               = NewError("recursive directive cycle")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	base  *Error      // Sentinel this error was derived from
	err   error       // Wrapped error (for errors.Unwrap)
	msg   string
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
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

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether e and target were derived from the same sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.origin() == t.origin()
}

func (e *Error) origin() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

// Attrs returns a copy of the structured logging attributes of e.
func (e *Error) Attrs() []slog.Attr {
	return append([]slog.Attr(nil), e.attrs...)
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		base:  e.origin(),
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		base:  e.origin(),
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// Directive identifies a directive line by its text and where it was read.
type Directive struct {
	Text     string // Logical line text, including the marker
	Source   string // ID of the source containing the directive
	Position int    // 1-based raw line number of the directive
}

func directiveOf(ln Line) Directive {
	return Directive{Text: ln.Text, Source: ln.Source, Position: ln.Position}
}

// String returns the directive as "source:position: text".
func (d Directive) String() string {
	if d.Source == "" {
		return d.Text
	}

	return d.Source + ":" + strconv.Itoa(d.Position) + ": " + d.Text
}

func (d Directive) attrs() []slog.Attr {
	return []slog.Attr{
		slog.String("directive", d.Text),
		slog.String("source", d.Source),
		slog.Int("line", d.Position),
	}
}

// DirectiveError reports a directive that could not be turned into a source.
//
// Kind is [ErrResolution] when a factory failed, or [ErrUnresolvedDirective]
// when no factory claimed the payload.
type DirectiveError struct {
	Kind      *Error
	Err       error    // Factory error, if any
	Directive Directive
	Hints     []string // Close matches for an unresolved payload
}

// Error implements the error interface.
func (e *DirectiveError) Error() string {
	var buf strings.Builder

	if e.Directive.Source != "" {
		buf.WriteString(e.Directive.Source)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(e.Directive.Position))
		buf.WriteString(": ")
	}

	buf.WriteString(strconv.Quote(e.Directive.Text))
	buf.WriteString(": ")

	switch {
	case e.Err == nil:
		buf.WriteString(e.Kind.Error())
	case errors.Is(e.Err, e.Kind):
		buf.WriteString(e.Err.Error())
	default:
		buf.WriteString(e.Kind.Error())
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}

	if len(e.Hints) > 0 {
		quoted := make([]string, len(e.Hints))
		for i, h := range e.Hints {
			quoted[i] = strconv.Quote(h)
		}

		buf.WriteString(" (did you mean ")
		buf.WriteString(strings.Join(quoted, " or "))
		buf.WriteString("?)")
	}

	return buf.String()
}

// Unwrap returns the error kind and the factory error, if any.
func (e *DirectiveError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

// LogValue implements slog.LogValuer.
func (e *DirectiveError) LogValue() slog.Value {
	attrs := append([]slog.Attr{slog.String("error", e.Kind.msg)}, e.Directive.attrs()...)

	if e.Err != nil {
		attrs = append(attrs, slog.String("cause", e.Err.Error()))
	}

	if len(e.Hints) > 0 {
		attrs = append(attrs, slog.Any("hints", e.Hints))
	}

	return slog.GroupValue(attrs...)
}

// CycleError reports a directive naming a source that is already open on the
// current include path.
type CycleError struct {
	Target    string   // ID of the source named by the directive
	Ancestors []string // IDs of the open sources, outermost first
	Directive Directive
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	var buf strings.Builder

	if e.Directive.Source != "" {
		buf.WriteString(e.Directive.Source)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(e.Directive.Position))
		buf.WriteString(": ")
	}

	buf.WriteString(strconv.Quote(e.Directive.Text))
	buf.WriteString(": ")
	buf.WriteString(ErrCycle.msg)
	buf.WriteString(": ")
	buf.WriteString(strings.Join(e.Path(), " -> "))

	return buf.String()
}

// Path returns the ancestors followed by the target, which closes the loop.
func (e *CycleError) Path() []string {
	return append(append([]string(nil), e.Ancestors...), e.Target)
}

// Unwrap returns [ErrCycle].
func (e *CycleError) Unwrap() error { return ErrCycle }

// LogValue implements slog.LogValuer.
func (e *CycleError) LogValue() slog.Value {
	attrs := append([]slog.Attr{slog.String("error", ErrCycle.msg)}, e.Directive.attrs()...)
	attrs = append(attrs,
		slog.String("target", e.Target),
		slog.Any("path", e.Path()),
	)

	return slog.GroupValue(attrs...)
}
