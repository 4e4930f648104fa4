package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/kong"
	"github.com/ardnew/mung"

	"github.com/ardnew/recline/line"
	"github.com/ardnew/recline/log"
	"github.com/ardnew/recline/pkg"
	"github.com/ardnew/recline/transform"
)

// lineConfig holds the flags that configure the preprocessor.
type lineConfig struct {
	Trim      string   `default:""   enum:",${trimEnum}" help:"Trim whitespace from each logical line (${trimEnum})." placeholder:"MODE"`
	MaxDepth  int      `default:"-1"                     help:"Deepest include level; negative is unbounded."`
	Disable   []string `                                 help:"Disable preprocessing features (${featureEnum})." placeholder:"FEATURE" sep:","`
	Marker    string   `default:"@"                      help:"Rune that begins a directive line."`
	Include   []string `                                 help:"Include search directory, searched before ${envPath}." placeholder:"DIR" short:"I" type:"path"`
	Transform []string `                                 help:"expr-lang expression applied to each emitted line." placeholder:"EXPR" sep:"none" short:"t"`
}

func (*lineConfig) vars() kong.Vars {
	return kong.Vars{
		"trimEnum":    strings.Join(slices.Collect(line.Trims()), ","),
		"featureEnum": strings.Join(append(slices.Collect(line.Features()), "all"), ","),
		"envPath":     pkg.EnvIdentifier("path"),
	}
}

func (*lineConfig) group() kong.Group {
	return kong.Group{Key: "line", Title: "Preprocessing options"}
}

// options converts the flags into engine options. The trim option is only
// set when a mode was given, so commands keep their own default.
func (c *lineConfig) options() ([]line.Option, error) {
	var opts []line.Option

	if c.Trim != "" {
		t, err := line.ParseTrim(c.Trim)
		if err != nil {
			return nil, err
		}

		opts = append(opts, line.WithTrim(t))
	}

	opts = append(opts, line.WithMaxDepth(c.MaxDepth))

	for _, name := range c.Disable {
		f, err := line.ParseFeature(name)
		if err != nil {
			return nil, err
		}

		opts = append(opts, line.WithoutFeatures(f))
	}

	if c.Marker != "" {
		r, size := utf8.DecodeRuneInString(c.Marker)
		if size != len(c.Marker) || r == utf8.RuneError {
			return nil, line.ErrInvalidConfig.With(slog.String("marker", c.Marker))
		}

		opts = append(opts, line.WithMarker(r))
	}

	if dirs := includePath(c.Include, os.Getenv(pkg.EnvIdentifier("path"))); len(dirs) > 0 {
		opts = append(opts, line.WithIncludeDirs(dirs...))
	}

	if len(c.Transform) > 0 {
		fn, _, err := transform.CompileAll(c.Transform, transform.WithLogger(log.Default()))
		if err != nil {
			return nil, err
		}

		opts = append(opts, line.WithTransformer(fn))
	}

	return append(opts, line.WithLogger(log.Default())), nil
}

// includePath returns dirs followed by the entries of the list-separated
// env value, keeping only existing directories.
func includePath(dirs []string, env string) []string {
	joined := mung.Make(
		mung.WithSubjectItems(filepath.SplitList(env)...),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
		mung.WithFilter(isDir),
	).String()

	return filepath.SplitList(joined)
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
