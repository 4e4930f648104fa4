package line

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
)

func collectRaw(t *testing.T, src Source) []string {
	t.Helper()

	var got []string

	for ln, err := range src.Lines() {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got = append(got, ln)
	}

	return got
}

func TestReaderSource_Lines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"no final newline", "a\nb", []string{"a", "b"}},
		{"final newline", "a\nb\n", []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"bom", "\uFEFFa\nb", []string{"a", "b"}},
		{"blank lines", "\n\n", []string{"", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collectRaw(t, NewReaderSource("r", strings.NewReader(tt.in)))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReaderSource_ReadError(t *testing.T) {
	boom := errors.New("boom")
	src := NewReaderSource("r", iotest.ErrReader(boom))

	e := New([]Source{src})

	_, err := e.Process(context.Background(), func(string) Action { return Continue })
	if !errors.Is(err, ErrRead) || !errors.Is(err, boom) {
		t.Fatalf("expected read error wrapping boom, got %v", err)
	}
}

func TestPreprocess_CRLFContinuation(t *testing.T) {
	src := NewReaderSource("r", strings.NewReader("\uFEFFa\r\nb\\\r\nc\r\n"))

	ent, err := DefaultConfig().preprocess(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Line{
		{Source: "r", Text: "a", Position: 1},
		{Source: "r", Text: "b\nc", Position: 3},
	}
	if diff := cmp.Diff(want, ent.lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}

	if ent.raw != 3 {
		t.Errorf("raw = %d, want 3", ent.raw)
	}
}

func TestPreprocess_Digest(t *testing.T) {
	c := DefaultConfig()

	a, _ := c.preprocess(NewStringsSource("a", "x", "y"))
	b, _ := c.preprocess(NewStringsSource("b", "x", "y"))
	d, _ := c.preprocess(NewStringsSource("c", "x", "z"))

	if a.digest != b.digest {
		t.Errorf("equal content hashed differently: %x != %x", a.digest, b.digest)
	}

	if a.digest == d.digest {
		t.Errorf("different content hashed equally: %x", a.digest)
	}
}

func TestDiscontinuous(t *testing.T) {
	e := New([]Source{Discontinuous(NewStringsSource("a", `x\`, "y"))})

	var got []string

	_, err := e.Process(context.Background(), func(s string) Action {
		got = append(got, s)

		return Continue
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{`x\`, "y"}, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}
