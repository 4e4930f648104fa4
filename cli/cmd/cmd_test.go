package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/recline/line"
	"github.com/ardnew/recline/props"
	"github.com/ardnew/recline/watch"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func ids(srcs []line.Source) []string {
	out := make([]string, len(srcs))
	for i, src := range srcs {
		out[i] = src.ID()
	}

	return out
}

// TestRootsDuplicatePaths tests that a file named by relative, absolute, and
// symlinked paths is read once.
func TestRootsDuplicatePaths(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	writeFiles(t, dir, map[string]string{"real.txt": "x\n", "other.txt": "y\n"})

	realFile := filepath.Join(dir, "real.txt")
	symlink := filepath.Join(dir, "link.txt")

	if err := os.Symlink(realFile, symlink); err != nil {
		t.Fatal(err)
	}

	t.Chdir(dir)

	srcs, err := roots(context.Background(), []string{
		"real.txt",
		realFile,
		symlink,
		"other.txt",
		realFile,
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{realFile, filepath.Join(dir, "other.txt")}
	if diff := cmp.Diff(want, ids(srcs)); diff != "" {
		t.Errorf("roots() mismatch (-want +got):\n%s", diff)
	}
}

// TestRootsStdinLast tests that every "-" collapses into one stdin source
// placed after all files.
func TestRootsStdinLast(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"file.txt": "file\n"})

	file := filepath.Join(dir, "file.txt")
	ctx := WithStdin(context.Background(), strings.NewReader("stdin\n"))

	srcs, err := roots(ctx, []string{"-", file, "-"})
	if err != nil {
		t.Fatal(err)
	}

	if got := ids(srcs); len(got) != 2 || got[1] != line.StdinID {
		t.Fatalf("roots() = %q, want one file then %q", got, line.StdinID)
	}

	var got []string

	if _, err := line.New(srcs).Process(ctx, func(s string) line.Action {
		got = append(got, s)

		return line.Continue
	}); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"file", "stdin"}, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

// TestRootsDefaultStdin tests that no sources means standard input.
func TestRootsDefaultStdin(t *testing.T) {
	ctx := WithStdin(context.Background(), strings.NewReader(""))

	srcs, err := roots(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{line.StdinID}, ids(srcs)); diff != "" {
		t.Errorf("roots() mismatch (-want +got):\n%s", diff)
	}
}

// TestRootsInvalid tests that missing files and directories are reported.
func TestRootsInvalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		source string
		want   error
	}{
		{name: "missing", source: filepath.Join(dir, "missing.txt"), want: os.ErrNotExist},
		{name: "directory", source: dir, want: ErrIsDir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := roots(context.Background(), []string{tt.source})
			if !errors.Is(err, ErrSource) {
				t.Fatalf("roots() error = %v, want %v", err, ErrSource)
			}

			if !errors.Is(err, tt.want) {
				t.Errorf("roots() error = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestLineOptionsFrom tests that options from the context follow the base.
func TestLineOptionsFrom(t *testing.T) {
	ctx := WithLineOptions(context.Background(), line.WithTrim(line.TrimLeading))

	e := line.New(
		[]line.Source{line.NewStringsSource("s")},
		lineOptionsFrom(ctx, line.WithTrim(line.TrimBoth), line.WithMaxDepth(2))...,
	)

	if got := e.Config().Trim; got != line.TrimLeading {
		t.Errorf("Trim = %v, want %v", got, line.TrimLeading)
	}

	if got := e.Config().MaxDepth; got != 2 {
		t.Errorf("MaxDepth = %d, want 2", got)
	}

	if got := lineOptionsFrom(context.Background()); len(got) != 0 {
		t.Errorf("lineOptionsFrom() = %d options, want 0", len(got))
	}
}

// catFixture writes a root that includes a second file and returns its path.
func catFixture(t *testing.T) string {
	t.Helper()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	writeFiles(t, dir, map[string]string{
		"main.txt": "# header\nfirst\n\n@part.txt\nlast\n",
		"part.txt": "included\n",
	})

	return filepath.Join(dir, "main.txt")
}

// TestCatRun tests each output format of the cat command.
func TestCatRun(t *testing.T) {
	root := catFixture(t)
	part := filepath.Join(filepath.Dir(root), "part.txt")

	tests := []struct {
		name string
		cat  Cat
		want string
	}{
		{
			name: "text",
			cat:  Cat{Format: "text"},
			want: "first\nincluded\nlast\n",
		},
		{
			name: "annotated text",
			cat:  Cat{Format: "text", Annotate: true},
			want: root + ":2: first\n" + part + ":1: included\n" + root + ":5: last\n",
		},
		{
			name: "json",
			cat:  Cat{Format: "json"},
			want: "[\n  \"first\",\n  \"included\",\n  \"last\"\n]\n",
		},
		{
			name: "yaml",
			cat:  Cat{Format: "yaml"},
			want: "- first\n- included\n- last\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			ctx := WithOutput(context.Background(), &out)

			tt.cat.Sources = []string{root}
			if err := tt.cat.Run(ctx); err != nil {
				t.Fatalf("Cat.Run() error = %v", err)
			}

			if diff := cmp.Diff(tt.want, out.String()); diff != "" {
				t.Errorf("Cat.Run() output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestCatRunAnnotatedJSON tests that annotated JSON records carry origins.
func TestCatRunAnnotatedJSON(t *testing.T) {
	root := catFixture(t)
	part := filepath.Join(filepath.Dir(root), "part.txt")

	var out bytes.Buffer

	c := Cat{Format: "json", Annotate: true, Sources: []string{root}}
	if err := c.Run(WithOutput(context.Background(), &out)); err != nil {
		t.Fatal(err)
	}

	var got []record
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}

	want := []record{
		{Source: root, Line: 2, Text: "first"},
		{Source: part, Line: 1, Text: "included"},
		{Source: root, Line: 5, Text: "last"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

// TestCatRunLineOptions tests that options in the context reach the engine.
func TestCatRunLineOptions(t *testing.T) {
	var out bytes.Buffer

	ctx := WithOutput(context.Background(), &out)
	ctx = WithStdin(ctx, strings.NewReader("  a  \n# c\n"))
	ctx = WithLineOptions(ctx,
		line.WithTrim(line.TrimBoth),
		line.WithoutFeatures(line.Comments),
	)

	c := Cat{Format: "text", Sources: []string{"-"}}
	if err := c.Run(ctx); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff("a\n# c\n", out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

// TestCatRunTransform tests that the transformer reaches every output format.
func TestCatRunTransform(t *testing.T) {
	for format, want := range map[string]string{
		"text": "FIRST\nINCLUDED\nLAST\n",
		"json": "[\n  \"FIRST\",\n  \"INCLUDED\",\n  \"LAST\"\n]\n",
		"yaml": "- FIRST\n- INCLUDED\n- LAST\n",
	} {
		t.Run(format, func(t *testing.T) {
			var out bytes.Buffer

			ctx := WithOutput(context.Background(), &out)
			ctx = WithLineOptions(ctx, line.WithTransformer(strings.ToUpper))

			c := Cat{Format: format, Sources: []string{catFixture(t)}}
			if err := c.Run(ctx); err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff(want, out.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestCatRerun tests that a failed watched run writes nothing and does not
// suppress the next successful output.
func TestCatRerun(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	writeFiles(t, dir, map[string]string{"main.txt": "a\n@part.txt\n"})

	var (
		out    bytes.Buffer
		digest watch.Digest
	)

	ctx := context.Background()
	c := Cat{Format: "text", Sources: []string{filepath.Join(dir, "main.txt")}}

	if _, err := c.rerun(ctx, &out, &digest); err != nil {
		t.Fatal(err)
	}

	if out.Len() != 0 {
		t.Fatalf("failed run wrote %q", out.String())
	}

	writeFiles(t, dir, map[string]string{"part.txt": ""})

	paths, err := c.rerun(ctx, &out, &digest)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff("a\n", out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	if !slices.Contains(paths, filepath.Join(dir, "part.txt")) {
		t.Errorf("paths = %q, want part.txt included", paths)
	}

	if _, err := c.rerun(ctx, &out, &digest); err != nil {
		t.Fatal(err)
	}

	if out.String() != "a\n" {
		t.Errorf("unchanged output written again: %q", out.String())
	}
}

// TestCatRunErrors tests that traversal and watch errors are returned.
func TestCatRunErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"main.txt": "ok\n@missing.txt\n"})

	var out bytes.Buffer

	ctx := WithOutput(context.Background(), &out)

	c := Cat{Format: "text", Sources: []string{filepath.Join(dir, "main.txt")}}
	if err := c.Run(ctx); !errors.Is(err, line.ErrUnresolvedDirective) {
		t.Errorf("Cat.Run() error = %v, want %v", err, line.ErrUnresolvedDirective)
	}

	if got := out.String(); got != "ok\n" {
		t.Errorf("output before error = %q, want %q", got, "ok\n")
	}

	w := Cat{Format: "text", Watch: true, Sources: []string{"-"}}
	if err := w.Run(ctx); !errors.Is(err, ErrWatchStdin) {
		t.Errorf("Cat.Run() error = %v, want %v", err, ErrWatchStdin)
	}
}

// TestPropsRun tests the props command output.
func TestPropsRun(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"app.properties": "name = demo\n@db.properties\nname = final\n",
		"db.properties":  "  host: localhost  \n",
		"bad.properties": "= value\n",
	})

	path := func(name string) string { return filepath.Join(dir, name) }

	tests := []struct {
		name    string
		props   Props
		want    string
		wantErr error
	}{
		{
			name:  "text",
			props: Props{Format: "text", Sources: []string{path("app.properties")}},
			want:  "name = final\nhost = localhost\n",
		},
		{
			name:  "json",
			props: Props{Format: "json", Sources: []string{path("app.properties")}},
			want:  "{\n  \"name\": \"final\",\n  \"host\": \"localhost\"\n}\n",
		},
		{
			name:  "keys",
			props: Props{Format: "text", Key: []string{"host", "name"}, Sources: []string{path("app.properties")}},
			want:  "localhost\nfinal\n",
		},
		{
			name:    "missing key",
			props:   Props{Format: "text", Key: []string{"port"}, Sources: []string{path("app.properties")}},
			wantErr: ErrMissingKey,
		},
		{
			name:    "syntax error",
			props:   Props{Format: "text", Sources: []string{path("bad.properties")}},
			wantErr: props.ErrSyntax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			err := tt.props.Run(WithOutput(context.Background(), &out))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Props.Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Props.Run() error = %v", err)
			}

			if diff := cmp.Diff(tt.want, out.String()); diff != "" {
				t.Errorf("Props.Run() output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestPropsRunUntransformed tests that properties are parsed from the lines
// as preprocessed, ignoring any transformer.
func TestPropsRunUntransformed(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"app.properties": "name = demo\n"})

	var out bytes.Buffer

	ctx := WithOutput(context.Background(), &out)
	ctx = WithLineOptions(ctx, line.WithTransformer(strings.ToUpper))

	p := Props{Format: "text", Sources: []string{filepath.Join(dir, "app.properties")}}
	if err := p.Run(ctx); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff("name = demo\n", out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

// TestWriteFormattedUnknown tests that an unknown format is rejected.
func TestWriteFormattedUnknown(t *testing.T) {
	var out bytes.Buffer

	err := writeFormatted(context.Background(), &out, "toml", []string{"a"})
	if !errors.Is(err, ErrMarshal) {
		t.Errorf("writeFormatted() error = %v, want %v", err, ErrMarshal)
	}
}
