package line

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// Source produces the raw lines of one input.
//
// Lines is called at most once per [Engine] for a given ID. An engine closes
// every source it obtains from a [Factory], but never closes its roots; see
// [Engine.Close].
type Source interface {
	// ID identifies the source. Sources with equal IDs are interchangeable,
	// and the ID anchors the resolution of relative directive payloads.
	ID() string
	// Continuable reports whether backslash continuation may be applied to
	// the lines of this source.
	Continuable() bool
	// Lines yields each raw line without its line terminator.
	Lines() iter.Seq2[string, error]
	Close() error
}

// Line is a logical line along with where it was read.
type Line struct {
	Source   string // ID of the source
	Text     string
	Position int // 1-based number of the last raw line it was joined from
}

// StdinID is the ID of sources reading standard input.
const StdinID = "<stdin>"

const byteOrderMark = "\uFEFF"

// scanLines yields each line of r with any "\n" or "\r\n" terminator removed.
// A leading UTF-8 byte order mark is discarded.
func scanLines(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		br := bufio.NewReader(r)
		first := true

		for {
			s, err := br.ReadString('\n')
			if len(s) > 0 {
				if first {
					s = strings.TrimPrefix(s, byteOrderMark)
				}

				first = false

				s = strings.TrimSuffix(s, "\n")
				s = strings.TrimSuffix(s, "\r")

				if !yield(s, nil) {
					return
				}
			}

			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield("", err)
				}

				return
			}
		}
	}
}

type readerSource struct {
	r  io.Reader
	id string
}

// NewReaderSource returns a continuable [Source] reading lines from r.
// Close closes r if it implements [io.Closer].
func NewReaderSource(id string, r io.Reader) Source {
	return &readerSource{id: id, r: r}
}

func (s *readerSource) ID() string        { return s.id }
func (s *readerSource) Continuable() bool { return true }

func (s *readerSource) Lines() iter.Seq2[string, error] {
	if s.r == nil {
		return func(func(string, error) bool) {}
	}

	return scanLines(s.r)
}

func (s *readerSource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

// NewStdinSource returns a [Source] reading lines from r, which stands in
// for standard input. Close never closes r.
func NewStdinSource(r io.Reader) Source {
	if r == nil {
		r = os.Stdin
	}

	return &readerSource{id: StdinID, r: io.NopCloser(r)}
}

type stringsSource struct {
	id    string
	lines []string
}

// NewStringsSource returns a continuable [Source] over the given lines.
// Each element is one raw line; embedded newlines are not split.
func NewStringsSource(id string, lines ...string) Source {
	return &stringsSource{id: id, lines: lines}
}

func (s *stringsSource) ID() string        { return s.id }
func (s *stringsSource) Continuable() bool { return true }
func (s *stringsSource) Close() error      { return nil }

func (s *stringsSource) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, ln := range s.lines {
			if !yield(ln, nil) {
				return
			}
		}
	}
}

// fileSource opens its file on the first call to Lines.
type fileSource struct {
	file *os.File
	path string
}

// NewFileSource returns a continuable [Source] reading the named file.
// The ID is the absolute, cleaned path. The file is not opened until its
// lines are read.
func NewFileSource(path string) (Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, ErrInvalidSource.Wrap(err).With(attrPath(path))
	}

	return &fileSource{path: abs}, nil
}

func (s *fileSource) ID() string        { return s.path }
func (s *fileSource) Continuable() bool { return true }

func (s *fileSource) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if s.file == nil {
			f, err := os.Open(s.path)
			if err != nil {
				yield("", err)

				return
			}

			s.file = f
		}

		for ln, err := range scanLines(s.file) {
			if !yield(ln, err) {
				return
			}
		}
	}
}

func (s *fileSource) Close() error {
	if s.file == nil {
		return nil
	}

	f := s.file
	s.file = nil

	return f.Close()
}

type discontinuous struct{ Source }

func (discontinuous) Continuable() bool { return false }

// Discontinuous returns src with backslash continuation disabled, regardless
// of the [Continuation] feature.
func Discontinuous(src Source) Source {
	if src == nil {
		return nil
	}

	return discontinuous{src}
}
