package cmd

import (
	"context"
	"os"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/recline/cli/cmd/browse"
	"github.com/ardnew/recline/line"
	"github.com/ardnew/recline/log"
)

// Browse filters the preprocessed lines interactively and prints the one
// chosen.
type Browse struct {
	Sources []string `arg:"" default:"-" help:"Source files, or '-' for stdin." name:"source" optional:""`
}

// Run executes the browse command.
func (b *Browse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	srcs, err := roots(ctx, b.Sources)
	if err != nil {
		return err
	}

	e := line.New(srcs, lineOptionsFrom(ctx)...)
	defer e.Close()

	var lines []line.Line

	r := e.Reader(ctx)
	defer r.Close()

	for r.Scan() {
		lines = append(lines, r.Line())
	}

	if err := r.Err(); err != nil {
		return err
	}

	// The chosen line goes to standard output, so draw on standard error.
	opts := []tea.ProgramOption{tea.WithOutput(os.Stderr)}

	if slices.ContainsFunc(srcs, func(src line.Source) bool {
		return src.ID() == line.StdinID
	}) {
		// Standard input was consumed as a source; read keys from the terminal.
		opts = append(opts, tea.WithInputTTY())
	}

	return browse.Run(ctx, lines, outputFrom(ctx), log.Default(), opts...)
}
