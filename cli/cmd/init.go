package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/recline/log"
	"github.com/ardnew/recline/pkg"
	"github.com/ardnew/recline/profile"
)

// configHeader begins every generated configuration file.
const configHeader = "# " + pkg.Name + " configuration"

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrWriteConfig.With(slog.String("reason", "no command context"))
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok || confPath == "" {
		return ErrWriteConfig.With(slog.String("reason", "config path undefined"))
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	if err = writeConfig(file, ktx); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// writeConfig writes one property per flag that has a value.
func writeConfig(w io.Writer, ktx *kong.Context) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, configHeader)

	prefixIgnore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if value, ok := flagValue(ktx.FlagValue(flag)); ok {
			fmt.Fprintf(bw, "%s = %s\n", flag.Name, value)
		}
	}

	return bw.Flush()
}

// flagValue formats a flag value as a property value. It returns false for
// values that are unset or empty.
func flagValue(val any) (string, bool) {
	switch v := val.(type) {
	case nil:
		return "", false

	case bool:
		return strconv.FormatBool(v), true

	case string:
		return v, v != ""

	case []string:
		return strings.Join(v, ","), len(v) > 0

	case []int:
		s := make([]string, len(v))
		for i, n := range v {
			s[i] = strconv.Itoa(n)
		}

		return strings.Join(s, ","), len(v) > 0

	default:
		s := fmt.Sprint(v)

		return s, s != ""
	}
}
