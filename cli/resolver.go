package cli

import (
	"context"
	"io"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/recline/line"
	"github.com/ardnew/recline/log"
	"github.com/ardnew/recline/props"
)

// resolve returns a [kong.ConfigurationLoader] that reads a config file in
// property syntax through the preprocessor, so the file may include others
// relative to its own directory.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx, path), path)
//
// Each property names a flag. Flag names with hyphens (e.g., "log-level")
// may use underscores instead (e.g., "log_level"). List values are separated
// by commas.
//
// Example config file:
//
//	# recline configuration
//	log-level = debug
//	log_format = json
//	include = /etc/recline,/usr/share/recline
//	@local.config
//
// Command-line flags override config file values.
func resolve(ctx context.Context, path string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		e := line.New(
			[]line.Source{line.NewReaderSource(path, r)},
			append(props.Options(), line.WithLogger(log.Default()))...,
		)

		p, err := props.Load(ctx, e)
		if err != nil {
			return nil, err
		}

		return config(p.Map()), nil
	}
}

// config implements [kong.Resolver] for property configs.
type config map[string]string

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	for _, name := range []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")} {
		if value, ok := r[name]; ok {
			return value, nil
		}
	}

	return nil, nil //nolint:nilnil
}
