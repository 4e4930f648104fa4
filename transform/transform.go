package transform

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/recline/line"
	"github.com/ardnew/recline/log"
)

// Predefined errors (sentinel values).
var (
	ErrCompile  = line.NewError("failed to compile transform")
	ErrEvaluate = line.NewError("failed to evaluate transform")
)

// Identifiers visible to an expression.
const (
	LineIdentifier = "line"
	EnvIdentifier  = "env"
)

// Program is a compiled transform expression.
type Program struct {
	program *vm.Program
	env     map[string]string
	logger  log.Logger
	err     error
	source  string
}

// Option configures a [Program].
type Option func(*Program)

// WithEnviron sets the "KEY=VALUE" list served by env(). By default the
// process environment is used.
func WithEnviron(environ []string) Option {
	return func(p *Program) { p.env = environMap(environ) }
}

// WithLogger sets the logger used to report evaluation failures.
func WithLogger(l log.Logger) Option {
	return func(p *Program) { p.logger = l }
}

// Compile compiles source, which must evaluate to a string.
//
// The expression sees the current logical line as line and the process
// environment through env(name). All expr-lang builtins (upper, trim,
// replace, split, ...) are available.
func Compile(source string, opts ...Option) (*Program, error) {
	p := &Program{source: source}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	if p.env == nil {
		p.env = environMap(os.Environ())
	}

	program, err := expr.Compile(source,
		expr.Env(p.vars("")),
		expr.AsKind(reflect.String),
	)
	if err != nil {
		return nil, ErrCompile.Wrap(err).With(slog.String("source", source))
	}

	p.program = program

	return p, nil
}

func (p *Program) vars(text string) map[string]any {
	return map[string]any{
		LineIdentifier: text,
		EnvIdentifier:  func(key string) string { return p.env[key] },
	}
}

// String returns the expression source.
func (p *Program) String() string { return p.source }

// Apply evaluates the expression against text. A result that is not a
// string is formatted with [fmt.Sprint]; a nil result is an error.
func (p *Program) Apply(text string) (string, error) {
	out, err := vm.Run(p.program, p.vars(text))
	if err != nil {
		return text, ErrEvaluate.Wrap(err).With(
			slog.String("source", p.source),
			slog.String("line", text),
		)
	}

	switch v := out.(type) {
	case string:
		return v, nil
	case nil:
		return text, ErrEvaluate.With(
			slog.String("source", p.source),
			slog.String("line", text),
			slog.String("result_type", "nil"),
		)
	default:
		return fmt.Sprint(v), nil
	}
}

// Transformer adapts p to a [line.Transformer]. A line the expression fails
// on is passed through unchanged; the first failure is kept for [Program.Err].
func (p *Program) Transformer() line.Transformer {
	return func(text string) string {
		out, err := p.Apply(text)
		if err != nil {
			if p.err == nil {
				p.err = err
			}

			p.logger.Warn("transform failed", log.Err(err))
		}

		return out
	}
}

// Err returns the first evaluation failure seen by [Program.Transformer].
func (p *Program) Err() error { return p.err }

// Chain returns a [line.Transformer] applying each of ts in order.
// Nil transformers are skipped.
func Chain(ts ...line.Transformer) line.Transformer {
	var fns []line.Transformer

	for _, t := range ts {
		if t != nil {
			fns = append(fns, t)
		}
	}

	switch len(fns) {
	case 0:
		return line.Identity
	case 1:
		return fns[0]
	}

	return func(text string) string {
		for _, t := range fns {
			text = t(text)
		}

		return text
	}
}

// CompileAll compiles each source and chains the results in order.
func CompileAll(sources []string, opts ...Option) (line.Transformer, []*Program, error) {
	progs := make([]*Program, 0, len(sources))
	fns := make([]line.Transformer, 0, len(sources))

	for _, src := range sources {
		if strings.TrimSpace(src) == "" {
			continue
		}

		p, err := Compile(src, opts...)
		if err != nil {
			return nil, nil, err
		}

		progs = append(progs, p)
		fns = append(fns, p.Transformer())
	}

	return Chain(fns...), progs, nil
}

// environMap converts a "KEY=VALUE" list to a map.
func environMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))

	for _, entry := range environ {
		if key, value, ok := strings.Cut(entry, "="); ok {
			m[key] = value
		}
	}

	return m
}
