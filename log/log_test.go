package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
)

// record decodes the single JSON record in buf.
func record(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("output is not one JSON record: %v\n%s", err, buf.String())
	}

	return m
}

func plainJSON(buf io.Writer, opts ...Option) Logger {
	return Make(buf, append([]Option{WithFormat(FormatJSON), WithPretty(false)}, opts...)...)
}

func TestMake_Defaults(t *testing.T) {
	l := Make(nil)

	if got := l.Level(); got != DefaultLevel {
		t.Errorf("Level() = %v, want %v", got, DefaultLevel)
	}

	if got := l.Format(); got != DefaultFormat {
		t.Errorf("Format() = %v, want %v", got, DefaultFormat)
	}

	if l.opts.caller != DefaultCaller || l.opts.pretty != DefaultPretty {
		t.Errorf("caller, pretty = %v, %v; want %v, %v",
			l.opts.caller, l.opts.pretty, DefaultCaller, DefaultPretty)
	}

	// A nil writer discards.
	l.Error("dropped")
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		min  Level
		want []string
	}{
		{LevelTrace, []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}},
		{LevelInfo, []string{"INFO", "WARN", "ERROR"}},
		{LevelError, []string{"ERROR"}},
	}

	for _, tt := range tests {
		t.Run(tt.min.String(), func(t *testing.T) {
			var buf bytes.Buffer

			l := Make(&buf, WithFormat(FormatText), WithPretty(false), WithTimeLayout("none"), WithLevel(tt.min))

			l.Trace("m")
			l.Debug("m")
			l.Info("m")
			l.Warn("m")
			l.Error("m")

			var got []string

			for ln := range strings.Lines(buf.String()) {
				level, _, _ := strings.Cut(strings.TrimPrefix(ln, "level="), " ")
				got = append(got, level)
			}

			if !slices.Equal(got, tt.want) {
				t.Errorf("levels written = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogger_ContextMethods(t *testing.T) {
	var buf bytes.Buffer

	l := plainJSON(&buf, WithLevel(LevelTrace))
	ctx := context.Background()

	for _, fn := range []func(context.Context, string, ...slog.Attr){
		l.TraceContext, l.DebugContext, l.InfoContext, l.WarnContext, l.ErrorContext,
	} {
		buf.Reset()
		fn(ctx, "with context", slog.String("source", "a.conf"))

		if m := record(t, &buf); m["msg"] != "with context" || m["source"] != "a.conf" {
			t.Errorf("record = %v", m)
		}
	}
}

func TestLogger_CallerIsLogSite(t *testing.T) {
	var buf bytes.Buffer

	l := plainJSON(&buf, WithCaller(true))

	calls := map[string]func(){
		"method":         func() { l.Info("x") },
		"context method": func() { l.InfoContext(context.Background(), "x") },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			buf.Reset()
			call()

			src, ok := record(t, &buf)[slog.SourceKey].(map[string]any)
			if !ok {
				t.Fatalf("no %q in record: %s", slog.SourceKey, buf.String())
			}

			if file, _ := src["file"].(string); filepath.Base(file) != "log_test.go" {
				t.Errorf("source file = %q, want log_test.go", file)
			}
		})
	}
}

func TestLogger_TimeLayout(t *testing.T) {
	var buf bytes.Buffer

	plainJSON(&buf, WithTimeLayout("none")).Info("x")

	if _, ok := record(t, &buf)[slog.TimeKey]; ok {
		t.Error("timestamp written with layout none")
	}

	buf.Reset()
	plainJSON(&buf, WithTimeLayout("DateOnly")).Info("x")

	ts, _ := record(t, &buf)[slog.TimeKey].(string)
	if _, err := time.Parse(time.DateOnly, ts); err != nil {
		t.Errorf("time = %q, want %s layout: %v", ts, time.DateOnly, err)
	}
}

func TestLayoutFunc(t *testing.T) {
	now := time.Date(2023, 10, 15, 14, 30, 45, 123456789, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2023-10-15T14:30:45Z"},
		{"rfc-3339-nano", "2023-10-15T14:30:45.123456789Z"},
		{"Kitchen", "2:30PM"},
		{"ms", "Oct 15 14:30:45.123"},
		{"2006/01/02", "2023/10/15"},
		{"", ""},
		{"  \t", ""},
		{"none", ""},
	}

	for _, tt := range tests {
		if got := layoutFunc(tt.layout)(now); got != tt.want {
			t.Errorf("layoutFunc(%q) = %q, want %q", tt.layout, got, tt.want)
		}
	}
}

func TestLogger_WithAndWrap(t *testing.T) {
	var buf bytes.Buffer

	base := plainJSON(&buf)
	tagged := base.With(slog.String("component", "engine"))

	tagged.Info("x")

	if m := record(t, &buf); m["component"] != "engine" {
		t.Errorf("With attrs missing: %v", m)
	}

	buf.Reset()
	base.Info("x")

	if _, ok := record(t, &buf)["component"]; ok {
		t.Error("With changed the original logger")
	}

	quiet := base.Wrap(WithLevel(LevelError))

	buf.Reset()
	quiet.Warn("x")

	if buf.Len() != 0 {
		t.Errorf("Wrap level not applied: %s", buf.String())
	}

	if base.Level() != DefaultLevel || quiet.Level() != LevelError {
		t.Errorf("levels = %v, %v", base.Level(), quiet.Level())
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var l Logger

	l.Error("nothing happens")
	l.TraceContext(context.Background(), "nothing happens")

	if l.Allows(context.Background(), LevelError) {
		t.Error("zero Logger allows records")
	}

	if got := l.With(slog.Int("n", 1)); got.Logger != nil {
		t.Error("With on zero Logger returned a live logger")
	}

	var buf bytes.Buffer

	l.Wrap(WithOutput(&buf), WithFormat(FormatJSON), WithPretty(false)).Info("now visible")

	if m := record(t, &buf); m["msg"] != "now visible" {
		t.Errorf("record = %v", m)
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var (
		mu  sync.Mutex
		buf bytes.Buffer
	)

	l := plainJSON(&lockedWriter{mu: &mu, w: &buf})

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Go(func() {
			l.With(slog.Int("worker", i)).Info("tick")
		})
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "\n"); n != 8 {
		t.Errorf("wrote %d records, want 8", n)
	}
}

type lockedWriter struct {
	mu *sync.Mutex
	w  *bytes.Buffer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.w.Write(p)
}

func TestErr(t *testing.T) {
	var buf bytes.Buffer

	plainJSON(&buf).Error("failed", Err(errors.New("boom")))

	if m := record(t, &buf); m["error"] != "boom" {
		t.Errorf("record = %v", m)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"trace":   LevelTrace,
		"TRACE":   LevelTrace,
		" debug ": LevelDebug,
		"Warn":    LevelWarn,
		"error":   LevelError,
		"info+2":  Level(slog.LevelInfo + 2),
		"bogus":   DefaultLevel,
	}

	for s, want := range tests {
		if got := ParseLevel(s); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json":   FormatJSON,
		" TEXT ": FormatText,
		"xml":    DefaultFormat,
	}

	for s, want := range tests {
		if got := ParseFormat(s); got != want {
			t.Errorf("ParseFormat(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestLevelsAndFormats(t *testing.T) {
	if got := slices.Collect(Levels()); !slices.Equal(got, []string{"trace", "debug", "info", "warn", "error"}) {
		t.Errorf("Levels() = %q", got)
	}

	if got := slices.Collect(Formats()); !slices.Equal(got, []string{"json", "text"}) {
		t.Errorf("Formats() = %q", got)
	}
}
