package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by the pretty handlers.
// Styles are bound to the renderer of the output writer, so colors are
// dropped automatically when the writer is not a terminal.
type palette struct {
	key, str, num, yes, no, dur, tim, null lipgloss.Style
	trace, debug, info, warn, fail         lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		yes:   fg("2"),
		no:    fg("1"),
		dur:   fg("5"),
		tim:   fg("4"),
		null:  fg("8"),
		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2"),
		warn:  fg("3").Bold(true),
		fail:  fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) string {
	name := Level(l).label()

	switch {
	case l >= slog.LevelError:
		return p.fail.Render(name)
	case l >= slog.LevelWarn:
		return p.warn.Render(name)
	case l >= slog.LevelInfo:
		return p.info.Render(name)
	case l >= slog.LevelDebug:
		return p.debug.Render(name)
	default:
		return p.trace.Render(name)
	}
}

// value renders v in the style of its kind.
func (p palette) value(v slog.Value) string {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(v.String())

	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")

	case slog.KindDuration:
		return p.dur.Render(v.Duration().String())

	case slog.KindTime:
		return p.tim.Render(v.Time().Format(time.RFC3339))

	case slog.KindAny:
		switch a := v.Any().(type) {
		case nil:
			return p.null.Render("null")
		case slog.Level:
			return p.level(a)
		case error:
			return p.no.Render(a.Error())
		}

		return p.str.Render(fmt.Sprint(v.Any()))

	default:
		return p.str.Render(v.String())
	}
}

// flatten appends a to dst with group names folded into dotted keys.
func flatten(dst []slog.Attr, prefix string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return dst
	}

	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, g := range a.Value.Group() {
			dst = flatten(dst, key, g)
		}

		return dst
	}

	return append(dst, slog.Attr{Key: key, Value: a.Value})
}

// prettyBase holds the state shared by both pretty handlers.
type prettyBase struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	prefix string      // dotted group path for subsequent attributes
	attrs  []slog.Attr // flattened attributes from WithAttrs
	pal    palette
}

func newPrettyBase(w io.Writer, opts *slog.HandlerOptions) prettyBase {
	return prettyBase{
		opts: *opts,
		mu:   &sync.Mutex{},
		w:    w,
		pal:  newPalette(w),
	}
}

func (b prettyBase) enabled(level slog.Level) bool {
	threshold := slog.LevelInfo
	if b.opts.Level != nil {
		threshold = b.opts.Level.Level()
	}

	return level >= threshold
}

func (b prettyBase) withAttrs(attrs []slog.Attr) prettyBase {
	merged := append([]slog.Attr(nil), b.attrs...)
	for _, a := range attrs {
		merged = flatten(merged, b.prefix, a)
	}

	b.attrs = merged

	return b
}

func (b prettyBase) withGroup(name string) prettyBase {
	if name == "" {
		return b
	}

	if b.prefix != "" {
		name = b.prefix + "." + name
	}

	b.prefix = name

	return b
}

// fields returns every field of r in output order: time, level, source,
// message, then attributes.
func (b prettyBase) fields(r slog.Record) []slog.Attr {
	fields := make([]slog.Attr, 0, 4+len(b.attrs)+r.NumAttrs())

	replace := func(a slog.Attr) (slog.Attr, bool) {
		if b.opts.ReplaceAttr != nil {
			a = b.opts.ReplaceAttr(nil, a)
		}

		return a, !a.Equal(slog.Attr{})
	}

	if !r.Time.IsZero() {
		if a, ok := replace(slog.Time(slog.TimeKey, r.Time)); ok {
			fields = append(fields, a)
		}
	}

	fields = append(fields, slog.Any(slog.LevelKey, r.Level))

	if b.opts.AddSource {
		if src := r.Source(); src != nil {
			fields = append(fields, slog.String(slog.SourceKey,
				fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	fields = append(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, b.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = flatten(fields, b.prefix, a)

		return true
	})

	return fields
}

func (b prettyBase) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.w.Write(buf.Bytes())

	return err
}

// prettyTextHandler implements a colorized text handler for log messages.
type prettyTextHandler struct{ prettyBase }

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyTextHandler {
	return &prettyTextHandler{newPrettyBase(w, opts)}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	for i, a := range h.fields(r) {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.pal.key.Render(a.Key))
		buf.WriteByte('=')
		buf.WriteString(h.pal.value(a.Value))
	}

	return h.write(buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

// prettyJSONHandler implements a multiline, colorized JSON-like handler.
// String values are written without quotes.
type prettyJSONHandler struct{ prettyBase }

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyJSONHandler {
	return &prettyJSONHandler{newPrettyBase(w, opts)}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	buf.WriteString("{\n")

	for i, a := range h.fields(r) {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(h.pal.key.Render(a.Key))
		buf.WriteString(": ")
		buf.WriteString(h.pal.value(a.Value))
	}

	buf.WriteString("\n}")

	return h.write(buf)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}
