package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestPretty_Text_KeepsLoggerAttrs(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithFormat(FormatText),
		WithPretty(true),
		WithTimeLayout("none"),
	).With(slog.String("source_id", "a.conf"))

	logger.Info("loaded", slog.Int("lines", 3))

	got := strings.TrimSpace(buf.String())
	want := "level=INFO msg=loaded source_id=a.conf lines=3"

	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPretty_Text_Groups(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithFormat(FormatText),
		WithPretty(true),
		WithTimeLayout("none"),
		WithLevel(LevelTrace),
	)

	logger.Logger = slog.New(logger.Handler().WithGroup("engine"))
	logger.Trace("hit", slog.Group("cache", slog.String("id", "x")), slog.Any("err", errors.New("boom")))

	got := strings.TrimSpace(buf.String())
	want := "level=TRACE msg=hit engine.cache.id=x engine.err=boom"

	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPretty_JSON_Multiline(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithFormat(FormatJSON),
		WithPretty(true),
		WithTimeLayout("none"),
	)

	logger.Warn("careful", slog.Bool("ok", false))

	want := "{\n  level: WARN,\n  msg: careful,\n  ok: false\n}\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPretty_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatText), WithPretty(true), WithLevel(LevelWarn))
	logger.Info("hidden")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
