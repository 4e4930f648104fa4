package log

import (
	"io"
	"strings"
	"time"
)

// FormatTime renders the timestamp of a record. An empty result omits the
// timestamp.
type FormatTime func(time.Time) string

const (
	// DefaultTimeLayout is the timestamp layout used without [WithTimeLayout].
	DefaultTimeLayout = time.RFC3339
	// DefaultCaller is whether records carry their call site by default.
	DefaultCaller = false
	// DefaultPretty is whether output is pretty-printed by default.
	DefaultPretty = true
)

// options is the immutable configuration of a [Logger].
type options struct {
	output     io.Writer
	formatTime FormatTime
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

// Option changes one setting of a [Logger].
type Option func(*options)

func defaultOptions(w io.Writer) options {
	if w == nil {
		w = io.Discard
	}

	return options{
		output:     w,
		formatTime: layoutFunc(DefaultTimeLayout),
		level:      DefaultLevel,
		format:     DefaultFormat,
		caller:     DefaultCaller,
		pretty:     DefaultPretty,
	}
}

// with returns a copy of o with opts applied.
func (o options) with(opts ...Option) options {
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// WithOutput sets the writer records go to. A nil writer discards them.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w == nil {
			w = io.Discard
		}

		o.output = w
	}
}

// WithLevel sets the minimum level of records that are written.
func WithLevel(level Level) Option {
	return func(o *options) { o.level = level }
}

// WithFormat sets the record encoding.
func WithFormat(format Format) Option {
	return func(o *options) { o.format = format }
}

// WithCaller sets whether records carry the file and line they were logged
// from.
func WithCaller(enable bool) Option {
	return func(o *options) { o.caller = enable }
}

// WithPretty sets whether records are rendered for humans: text without
// quoting and JSON spread over several lines, both colored when the output
// is a terminal.
func WithPretty(enable bool) Option {
	return func(o *options) { o.pretty = enable }
}

// WithTimeLayout sets the timestamp layout.
//
// Names of the layouts in package [time] are recognized regardless of case
// and punctuation ("RFC3339", "rfc-3339-nano", "Kitchen"), as are the short
// names "ms", "us" and "ns". Any other layout is passed verbatim to
// [time.Time.Format]. An empty layout or "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(o *options) { o.formatTime = layoutFunc(layout) }
}

var namedLayouts = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"rfc1123":     time.RFC1123,
	"rfc1123z":    time.RFC1123Z,
	"kitchen":     time.Kitchen,
	"datetime":    time.DateTime,
	"dateonly":    time.DateOnly,
	"timeonly":    time.TimeOnly,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"stampmicro":  time.StampMicro,
	"stampnano":   time.StampNano,
	"ms":          time.StampMilli,
	"us":          time.StampMicro,
	"ns":          time.StampNano,
	"none":        "",
}

// layoutKey reduces a layout name to lower-case letters and digits.
func layoutKey(layout string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return -1
		}
	}, strings.ToLower(layout))
}

func layoutFunc(layout string) FormatTime {
	key := layoutKey(layout)
	if named, ok := namedLayouts[key]; ok {
		layout = named
	}

	if key == "" || layout == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
