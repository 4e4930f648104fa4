package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/recline/line"
	"github.com/ardnew/recline/log"
	"github.com/ardnew/recline/watch"
)

// outputIndent is the indent width of JSON and YAML output.
const outputIndent = 2

// Cat prints the preprocessed lines of each source.
type Cat struct {
	Format   string `default:"text" enum:"text,json,yaml" help:"Output format (${enum})."                             short:"f"`
	Annotate bool   `                                    help:"Include the source and line number of each line."    short:"a"`
	Watch    bool   `                                    help:"Print again whenever a file that was read changes."  short:"w"`

	Sources []string `arg:"" default:"-" help:"Source files, or '-' for stdin." name:"source" optional:""`
}

// record is one annotated line in JSON or YAML output.
type record struct {
	Source string `json:"source" yaml:"source"`
	Text   string `json:"text"   yaml:"text"`
	Line   int    `json:"line"   yaml:"line"`
}

// Run executes the cat command.
func (c *Cat) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	out := outputFrom(ctx)

	if !c.Watch {
		_, err = c.run(ctx, out)

		return err
	}

	if len(c.Sources) == 0 || slices.Contains(c.Sources, stdinSource) {
		return ErrWatchStdin
	}

	w, err := watch.New(watch.WithLogger(log.Default()))
	if err != nil {
		return err
	}
	defer w.Close()

	var digest watch.Digest

	return watch.Loop(ctx, w, func(ctx context.Context) ([]string, error) {
		return c.rerun(ctx, out, &digest)
	})
}

// rerun writes the output of one watched run to out unless it matches the
// last output written. The output of a failed run is discarded.
func (c *Cat) rerun(ctx context.Context, out io.Writer, digest *watch.Digest) ([]string, error) {
	var buf bytes.Buffer

	paths, err := c.run(ctx, &buf)
	if err != nil {
		// Keep watching; the next change may fix it.
		log.ErrorContext(ctx, "preprocessing failed", log.Err(err))

		return paths, nil
	}

	if digest.Changed(buf.Bytes()) {
		if _, err := buf.WriteTo(out); err != nil {
			return nil, err
		}
	}

	return paths, nil
}

// run writes the lines of all sources to w and returns the paths of every
// file that was read.
func (c *Cat) run(ctx context.Context, w io.Writer) ([]string, error) {
	srcs, err := roots(ctx, c.Sources)
	if err != nil {
		return nil, err
	}

	e := line.New(srcs, lineOptionsFrom(ctx)...)
	defer e.Close()

	if c.Format == "text" {
		err = c.stream(ctx, e, w)
	} else {
		err = c.marshal(ctx, e, w)
	}

	return visited(srcs, e), err
}

// stream writes each line as it is pulled from the engine.
func (c *Cat) stream(ctx context.Context, e *line.Engine, w io.Writer) error {
	bw := bufio.NewWriter(w)

	r := e.Reader(ctx)
	defer r.Close()

	for r.Scan() {
		var err error

		if ln := r.Line(); c.Annotate {
			_, err = fmt.Fprintf(bw, "%s:%d: %s\n", ln.Source, ln.Position, ln.Text)
		} else {
			_, err = fmt.Fprintln(bw, ln.Text)
		}

		if err != nil {
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		return err
	}

	logCounts(ctx, r.Counts())

	return r.Err()
}

// marshal collects every line and writes them in the selected format.
func (c *Cat) marshal(ctx context.Context, e *line.Engine, w io.Writer) error {
	var (
		texts   []string
		records []record
	)

	r := e.Reader(ctx)
	defer r.Close()

	for r.Scan() {
		if ln := r.Line(); c.Annotate {
			records = append(records, record{Source: ln.Source, Line: ln.Position, Text: ln.Text})
		} else {
			texts = append(texts, ln.Text)
		}
	}

	if err := r.Err(); err != nil {
		return err
	}

	logCounts(ctx, r.Counts())

	var v any = texts
	if c.Annotate {
		v = records
	}

	return writeFormatted(ctx, w, c.Format, v)
}

// writeFormatted writes v to w as JSON or YAML.
func writeFormatted(ctx context.Context, w io.Writer, format string, v any) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case "json":
		data, err = json.MarshalIndent(v, "", fmt.Sprintf("%*s", outputIndent, ""))
		data = append(data, '\n')

	case "yaml":
		data, err = yaml.MarshalContext(ctx, v, yaml.Indent(outputIndent))

	default:
		return ErrMarshal.With(slog.String("format", format))
	}

	if err != nil {
		return ErrMarshal.Wrap(err).With(slog.String("format", format))
	}

	_, err = w.Write(data)

	return err
}

// visited returns the ids of the roots and of every source the engine read,
// without duplicates.
func visited(srcs []line.Source, e *line.Engine) []string {
	ids := make([]string, 0, len(srcs))

	for _, src := range srcs {
		ids = append(ids, src.ID())
	}

	for _, snap := range e.Snapshots() {
		if !slices.Contains(ids, snap.ID) {
			ids = append(ids, snap.ID)
		}
	}

	return ids
}

func logCounts(ctx context.Context, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	attrs := make([]slog.Attr, 0, len(counts))
	for _, id := range slices.Sorted(maps.Keys(counts)) {
		attrs = append(attrs, slog.Int(id, counts[id]))
	}

	log.DebugContext(ctx, "lines emitted", slog.Any("sources", slog.GroupValue(attrs...)))
}
