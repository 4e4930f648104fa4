package line

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/sahilm/fuzzy"
)

// StdinPayload is the directive payload that names standard input.
const StdinPayload = "-"

// fileScheme is an optional prefix on file payloads.
const fileScheme = "file:"

// maxHints limits the number of suggestions offered for one payload.
const maxHints = 3

var errIsDir = errors.New("is a directory")

// FileFactory resolves directive payloads to files.
//
// A payload may be double-quoted and may carry a "file:" prefix. The payload
// "-" names standard input. Payloads with any other scheme (such as
// "embed:name") are left for other factories.
//
// A relative path is looked up in the directory of the including source,
// then in each of IncludeDirs in order. The first existing regular file
// wins. A path that is not found anywhere is not claimed.
type FileFactory struct {
	Stdin       io.Reader // Nil means os.Stdin
	IncludeDirs []string
}

// Resolve implements [Factory].
func (f *FileFactory) Resolve(
	ctx context.Context,
	payload string,
	relativeTo Source,
) (Source, error) {
	name, ok := filePath(payload)
	if !ok {
		return nil, nil //nolint:nilnil
	}

	if name == StdinPayload {
		return NewStdinSource(f.Stdin), nil
	}

	for _, cand := range f.candidates(name, relativeTo) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(cand)

		switch {
		case err == nil && info.IsDir():
			return nil, ErrResolution.Wrap(errIsDir).With(attrPath(cand))

		case err == nil:
			return &fileSource{path: cand}, nil

		case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
			continue

		default:
			return nil, ErrResolution.Wrap(err).With(attrPath(cand))
		}
	}

	return nil, nil //nolint:nilnil
}

// Hints implements [Hinter] with the names closest to the base name of
// payload in the first directory it would be looked up in.
func (f *FileFactory) Hints(payload string, relativeTo Source) []string {
	name, ok := filePath(payload)
	if !ok || name == StdinPayload {
		return nil
	}

	cands := f.candidates(name, relativeTo)
	if len(cands) == 0 {
		return nil
	}

	dir := filepath.Dir(cands[0])

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	prefix := filepath.Dir(name)

	var hints []string

	for _, m := range fuzzy.Find(filepath.Base(name), names) {
		if len(hints) == maxHints {
			break
		}

		hints = append(hints, filepath.Join(prefix, m.Str))
	}

	return hints
}

// candidates returns the absolute paths name may refer to, in lookup order.
func (f *FileFactory) candidates(name string, relativeTo Source) []string {
	if filepath.IsAbs(name) {
		return []string{filepath.Clean(name)}
	}

	cands := make([]string, 0, len(f.IncludeDirs)+1)

	if base := baseDir(relativeTo); base != "" {
		cands = append(cands, filepath.Join(base, name))
	}

	for _, dir := range f.IncludeDirs {
		if dir == "" {
			continue
		}

		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}

		cands = append(cands, filepath.Join(abs, name))
	}

	return cands
}

// baseDir returns the absolute directory relative paths are resolved from.
// Sources with no file system location use the working directory.
func baseDir(src Source) string {
	id := ""
	if src != nil {
		id = src.ID()
	}

	if id == "" || id == StdinID {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}

		return wd
	}

	abs, err := filepath.Abs(filepath.Dir(id))
	if err != nil {
		return ""
	}

	return abs
}

// filePath extracts a file system path from a payload. It reports false for
// empty payloads and payloads with a scheme other than "file:".
func filePath(payload string) (string, bool) {
	payload = unquote(payload)

	if rest, ok := strings.CutPrefix(payload, fileScheme); ok {
		payload = strings.TrimPrefix(rest, "//")
	} else if hasScheme(payload) {
		return "", false
	}

	return payload, payload != ""
}

// unquote removes one pair of surrounding double quotes from s, processing
// escapes if they are valid.
func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}

	if u, err := strconv.Unquote(s); err == nil {
		return u
	}

	return s[1 : len(s)-1]
}

// hasScheme reports whether s begins with a URI scheme of at least two
// characters followed by ':'. Single-letter schemes are left alone so that
// Windows drive letters are treated as paths.
func hasScheme(s string) bool {
	i := strings.IndexByte(s, ':')
	if i < 2 {
		return false
	}

	for j, r := range s[:i] {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case j > 0 && ('0' <= r && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}

	return true
}
