package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/cespare/xxhash/v2"

	"github.com/ardnew/recline/line"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	lineOptionsKey struct{}
	outputKey      struct{}
	stdinKey       struct{}
)

// WithLineOptions returns a new context.Context carrying the engine options
// shared by every command.
func WithLineOptions(ctx context.Context, opts ...line.Option) context.Context {
	return context.WithValue(ctx, lineOptionsKey{}, slices.Clip(opts))
}

// lineOptionsFrom returns the options stored by WithLineOptions after base,
// so that flags given by the user take precedence.
func lineOptionsFrom(ctx context.Context, base ...line.Option) []line.Option {
	opts, _ := ctx.Value(lineOptionsKey{}).([]line.Option)

	return append(slices.Clone(base), opts...)
}

// WithOutput returns a new context.Context whose commands write to w instead
// of standard output.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// WithStdin returns a new context.Context whose commands read "-" from r
// instead of standard input.
func WithStdin(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, stdinKey{}, r)
}

func stdinFrom(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(stdinKey{}).(io.Reader); ok && r != nil {
		return r
	}

	return os.Stdin
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = line.StdinPayload

// roots returns one root source per distinct file named in sources.
//
// Files are compared by device and inode after resolving symlinks, so a
// file named twice is read once. All occurrences of "-", and any file that is
// standard input, collapse into a single stdin source placed last.
func roots(ctx context.Context, sources []string) ([]line.Source, error) {
	if len(sources) == 0 {
		sources = []string{stdinSource}
	}

	srcs := make([]line.Source, 0, len(sources))
	seen := make(map[fileKey]struct{})
	hasStdin := false

	var stdinKey *fileKey

	if info, err := os.Stdin.Stat(); err == nil {
		if key, ok := makeFileKey(info); ok {
			stdinKey = &key
		}
	}

	for _, src := range sources {
		if src == stdinSource {
			hasStdin = true

			continue
		}

		path, key, err := uniqueFile(src)
		if err != nil {
			return nil, ErrSource.Wrap(err).With(slog.String("source", src))
		}

		if stdinKey != nil && key == *stdinKey {
			hasStdin = true

			continue
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}

		fsrc, err := line.NewFileSource(path)
		if err != nil {
			return nil, ErrSource.Wrap(err).With(slog.String("source", src))
		}

		srcs = append(srcs, fsrc)
	}

	if hasStdin {
		srcs = append(srcs, line.NewStdinSource(stdinFrom(ctx)))
	}

	return srcs, nil
}

// uniqueFile resolves path to a regular file and returns its resolved path
// and identity.
func uniqueFile(path string) (string, fileKey, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fileKey{}, err
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", fileKey{}, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fileKey{}, err
	}

	if info.IsDir() {
		return "", fileKey{}, ErrIsDir
	}

	key, ok := makeFileKey(info)
	if !ok {
		// Without inode data, the resolved path is the identity.
		return resolved, fileKey{ino: hashPath(resolved)}, nil
	}

	return resolved, key, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

func hashPath(path string) uint64 { return xxhash.Sum64String(path) }
