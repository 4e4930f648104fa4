package line

import (
	"context"
	"errors"
	"io/fs"
	"iter"
	"path"
	"strings"
)

// FSFactory resolves payloads of the form "<Scheme>:<name>" to files of FS,
// such as an [embed.FS] bundled with a program.
//
// Names are slash-separated. Within a source opened by an FSFactory, the
// scheme may be omitted and relative names are resolved against the
// directory of that source. With an empty Scheme, every payload is looked up
// in FS.
type FSFactory struct {
	FS     fs.FS
	Scheme string
}

// Resolve implements [Factory].
func (f *FSFactory) Resolve(
	ctx context.Context,
	payload string,
	relativeTo Source,
) (Source, error) {
	name, ok := f.name(unquote(payload), relativeTo)
	if !ok || f.FS == nil {
		return nil, nil //nolint:nilnil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !fs.ValidPath(name) {
		return nil, ErrResolution.Wrap(fs.ErrInvalid).With(attrPath(name))
	}

	info, err := fs.Stat(f.FS, name)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil //nolint:nilnil

	case err != nil:
		return nil, ErrResolution.Wrap(err).With(attrPath(name))

	case info.IsDir():
		return nil, ErrResolution.Wrap(errIsDir).With(attrPath(name))
	}

	return &fsSource{fsys: f.FS, name: name, id: f.id(name)}, nil
}

func (f *FSFactory) prefix() string {
	if f.Scheme == "" {
		return ""
	}

	return f.Scheme + ":"
}

func (f *FSFactory) id(name string) string { return f.prefix() + name }

// name returns the cleaned name within FS that payload refers to. A payload
// without the scheme is claimed only when included from a source of f.
func (f *FSFactory) name(payload string, relativeTo Source) (string, bool) {
	dir, within := f.dir(relativeTo)

	rest, ok := strings.CutPrefix(payload, f.prefix())
	if !ok {
		if !within || hasScheme(payload) {
			return "", false
		}

		rest = payload
	}

	if rest == "" {
		return "", false
	}

	if abs, ok := strings.CutPrefix(rest, "/"); ok {
		return path.Clean(abs), true
	}

	if within {
		return path.Join(dir, rest), true
	}

	return path.Clean(rest), true
}

// dir returns the directory of src within FS, if src was opened by f.
func (f *FSFactory) dir(src Source) (string, bool) {
	s, ok := src.(*fsSource)
	if !ok || s.id != f.id(s.name) {
		return "", false
	}

	return path.Dir(s.name), true
}

type fsSource struct {
	fsys fs.FS
	file fs.File
	name string
	id   string
}

func (s *fsSource) ID() string        { return s.id }
func (s *fsSource) Continuable() bool { return true }

func (s *fsSource) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if s.file == nil {
			f, err := s.fsys.Open(s.name)
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

func (s *fsSource) Close() error {
	if s.file == nil {
		return nil
	}

	f := s.file
	s.file = nil

	return f.Close()
}
