package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/recline/line"
	"github.com/ardnew/recline/log"
	"github.com/ardnew/recline/props"
)

// Props prints the properties defined by each source.
type Props struct {
	Format string   `default:"text" enum:"text,json,yaml" help:"Output format (${enum})."                 short:"f"`
	Key    []string `                                    help:"Print only the value of each given key."  short:"k"`

	Sources []string `arg:"" default:"-" help:"Property files, or '-' for stdin." name:"source" optional:""`
}

// Run executes the props command.
func (p *Props) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	srcs, err := roots(ctx, p.Sources)
	if err != nil {
		return err
	}

	e := line.New(srcs, lineOptionsFrom(ctx, props.Options()...)...)
	defer e.Close()

	set, err := props.Load(ctx, e)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "loaded properties", slog.Int("count", set.Len()))

	out := outputFrom(ctx)

	if len(p.Key) > 0 {
		for _, key := range p.Key {
			value, ok := set.Get(key)
			if !ok {
				return ErrMissingKey.With(slog.String("key", key))
			}

			if _, err := fmt.Fprintln(out, value); err != nil {
				return err
			}
		}

		return nil
	}

	if p.Format != "text" {
		return writeFormatted(ctx, out, p.Format, set)
	}

	for key, value := range set.All() {
		if _, err := fmt.Fprintf(out, "%s = %s\n", key, value); err != nil {
			return err
		}
	}

	return nil
}
