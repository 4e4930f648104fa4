package log

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
)

// useDefault points the package-level logger at buf for the test.
func useDefault(t *testing.T, buf *bytes.Buffer, opts ...Option) {
	t.Helper()

	original := Default()
	t.Cleanup(func() { SetDefault(original) })

	SetDefault(plainJSON(buf, opts...))
}

func TestPackage_Functions(t *testing.T) {
	var buf bytes.Buffer

	useDefault(t, &buf, WithLevel(LevelTrace))

	ctx := context.Background()

	tests := []struct {
		name  string
		log   func()
		level string
	}{
		{"Trace", func() { Trace("m", slog.String("k", "v")) }, "TRACE"},
		{"Debug", func() { Debug("m", slog.String("k", "v")) }, "DEBUG"},
		{"Info", func() { Info("m", slog.String("k", "v")) }, "INFO"},
		{"Warn", func() { Warn("m", slog.String("k", "v")) }, "WARN"},
		{"Error", func() { Error("m", slog.String("k", "v")) }, "ERROR"},
		{"TraceContext", func() { TraceContext(ctx, "m", slog.String("k", "v")) }, "TRACE"},
		{"DebugContext", func() { DebugContext(ctx, "m", slog.String("k", "v")) }, "DEBUG"},
		{"InfoContext", func() { InfoContext(ctx, "m", slog.String("k", "v")) }, "INFO"},
		{"WarnContext", func() { WarnContext(ctx, "m", slog.String("k", "v")) }, "WARN"},
		{"ErrorContext", func() { ErrorContext(ctx, "m", slog.String("k", "v")) }, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log()

			m := record(t, &buf)
			if m["level"] != tt.level || m["msg"] != "m" || m["k"] != "v" {
				t.Errorf("record = %v", m)
			}
		})
	}
}

func TestPackage_Config(t *testing.T) {
	var buf bytes.Buffer

	useDefault(t, &buf)

	Config(WithLevel(LevelWarn))
	Info("hidden")

	if buf.Len() != 0 {
		t.Fatalf("Config level not applied: %s", buf.String())
	}

	// Config keeps the output and format of the current default.
	Warn("shown")

	if m := record(t, &buf); m["msg"] != "shown" {
		t.Errorf("record = %v", m)
	}

	if got := Default().Level(); got != LevelWarn {
		t.Errorf("Default().Level() = %v, want %v", got, LevelWarn)
	}
}

func TestPackage_CallerIsLogSite(t *testing.T) {
	var buf bytes.Buffer

	useDefault(t, &buf, WithCaller(true))

	Info("x")

	src, _ := record(t, &buf)[slog.SourceKey].(map[string]any)
	if file, _ := src["file"].(string); filepath.Base(file) != "pkg_test.go" {
		t.Errorf("source file = %q, want pkg_test.go", file)
	}
}

func TestPackage_With(t *testing.T) {
	var buf bytes.Buffer

	useDefault(t, &buf)

	With(slog.String("cmd", "cat")).Info("x")

	if m := record(t, &buf); m["cmd"] != "cat" {
		t.Errorf("record = %v", m)
	}
}
