package line

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/recline/log"
)

// Transformer rewrites each emitted logical line.
type Transformer func(string) string

// Identity is the [Transformer] that returns its argument.
func Identity(s string) string { return s }

// Engine preprocesses a fixed list of root sources.
//
// Each source is read at most once over the lifetime of an Engine; later
// traversals and repeated includes reuse the cached lines. An Engine is not
// safe for concurrent traversals.
type Engine struct {
	cache     map[string]*entry
	counts    map[string]int
	transform Transformer
	stdin     io.Reader
	logger    log.Logger
	roots     []Source
	factories Chain
	order     []string // cache keys in load order
	include   []string
	config    Config
	closeOnce sync.Once
	closed    bool
}

// Option configures an [Engine].
type Option func(*Engine)

// WithConfig replaces the whole configuration.
func WithConfig(c Config) Option {
	return func(e *Engine) { e.config = c }
}

// WithTrim sets the trim mode.
func WithTrim(t Trim) Option {
	return func(e *Engine) { e.config.Trim = t }
}

// WithMaxDepth sets the deepest include level that may be entered.
// A negative depth disables the limit.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) { e.config.MaxDepth = depth }
}

// WithFeatures enables the given features.
func WithFeatures(f Feature) Option {
	return func(e *Engine) { e.config.Features |= f }
}

// WithoutFeatures disables the given features.
func WithoutFeatures(f Feature) Option {
	return func(e *Engine) { e.config.Features &^= f }
}

// WithMarker sets the rune that begins a directive line.
func WithMarker(r rune) Option {
	return func(e *Engine) { e.config.Marker = r }
}

// WithFactories appends factories tried before the default [FileFactory].
func WithFactories(f ...Factory) Option {
	return func(e *Engine) { e.factories = append(e.factories, f...) }
}

// WithIncludeDirs appends directories searched by the default [FileFactory].
func WithIncludeDirs(dirs ...string) Option {
	return func(e *Engine) { e.include = append(e.include, dirs...) }
}

// WithStdin sets the reader used for the "-" payload.
func WithStdin(r io.Reader) Option {
	return func(e *Engine) { e.stdin = r }
}

// WithTransformer sets the transformer applied to each emitted line.
func WithTransformer(t Transformer) Option {
	return func(e *Engine) { e.transform = t }
}

// WithLogger sets the logger used to report traversal events.
func WithLogger(l log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New returns an Engine that emits the lines of each root in order.
// With no roots, New returns [Empty].
func New(roots []Source, opts ...Option) *Engine {
	if len(roots) == 0 {
		return Empty()
	}

	e := &Engine{
		roots:     slices.Clone(roots),
		config:    DefaultConfig(),
		transform: Identity,
		cache:     make(map[string]*entry),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	e.config = e.config.normalize()

	if e.transform == nil {
		e.transform = Identity
	}

	e.factories = append(slices.Clone(e.factories), &FileFactory{
		Stdin:       e.stdin,
		IncludeDirs: e.include,
	})

	return e
}

var empty = &Engine{config: DefaultConfig(), transform: Identity}

// Empty returns the shared Engine with no roots. Every traversal of it
// succeeds without emitting a line, and closing it has no effect.
func Empty() *Engine { return empty }

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.config }

// Close closes every root source once and ends all traversals in progress.
// It returns the first error encountered.
func (e *Engine) Close() error {
	if len(e.roots) == 0 {
		return nil
	}

	var err error

	e.closeOnce.Do(func() {
		e.closed = true

		for _, src := range e.roots {
			if src == nil {
				continue
			}

			if cerr := src.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	})

	return err
}

// Counts returns the number of lines each source emitted during the most
// recent [Engine.Process] or [Engine.Walk].
func (e *Engine) Counts() map[string]int {
	return maps.Clone(e.counts)
}

// Snapshots returns the cached sources in the order they were first read.
func (e *Engine) Snapshots() []Snapshot {
	snaps := make([]Snapshot, 0, len(e.order))
	for _, id := range e.order {
		snaps = append(snaps, e.cache[id].snapshot())
	}

	return snaps
}

// load returns the cached entry for src, reading it on a miss. Sources
// obtained from a factory are closed once their lines are captured.
func (e *Engine) load(ctx context.Context, src Source, owned bool) (*entry, error) {
	id := src.ID()

	if owned {
		defer e.release(ctx, src)
	}

	if ent, ok := e.cache[id]; ok {
		e.logger.TraceContext(ctx, "source cache hit", attrSource(id))

		return ent, nil
	}

	ent, err := e.config.preprocess(src)
	if err != nil {
		return nil, err
	}

	e.cache[id] = ent
	e.order = append(e.order, id)

	e.logger.DebugContext(ctx, "source loaded",
		attrSource(id),
		slog.Int("raw", ent.raw),
		slog.Int("lines", len(ent.lines)),
		attrDigest(ent.digest),
	)

	return ent, nil
}

func (e *Engine) release(ctx context.Context, src Source) {
	if err := src.Close(); err != nil {
		e.logger.WarnContext(ctx, "failed to close source",
			attrSource(src.ID()),
			slog.String("cause", err.Error()),
		)
	}
}

// expand reports the payload of ln when it is a directive to be expanded
// from a source at the given depth. A directive whose target would exceed
// the depth limit is not expanded.
func (e *Engine) expand(ctx context.Context, ln Line, depth int) (string, bool) {
	if !e.config.Features.Has(Recursion) {
		return "", false
	}

	payload, ok := e.config.directive(ln.Text)
	if !ok {
		return "", false
	}

	if !e.config.allows(depth + 1) {
		e.logger.WarnContext(ctx, "include depth exceeded",
			slog.String("directive", ln.Text),
			attrSource(ln.Source),
			attrLine(ln.Position),
			attrDepth(depth+1),
			slog.Int("max", e.config.MaxDepth),
		)

		return "", false
	}

	return payload, true
}

// resolve returns the source named by the directive ln.
func (e *Engine) resolve(
	ctx context.Context,
	ln Line,
	payload string,
	relativeTo Source,
) (Source, error) {
	src, err := e.factories.Resolve(ctx, payload, relativeTo)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, &DirectiveError{Kind: ErrResolution, Err: err, Directive: directiveOf(ln)}
	}

	if src == nil {
		return nil, &DirectiveError{
			Kind:      ErrUnresolvedDirective,
			Directive: directiveOf(ln),
			Hints:     e.factories.Hints(payload, relativeTo),
		}
	}

	if blankID(src) {
		_ = src.Close()

		return nil, &DirectiveError{
			Kind:      ErrResolution,
			Err:       ErrInvalidSource,
			Directive: directiveOf(ln),
		}
	}

	e.logger.TraceContext(ctx, "directive resolved",
		attrPayload(payload),
		attrSource(src.ID()),
	)

	return src, nil
}

func validRoot(src Source) error {
	if src == nil {
		return ErrInvalidSource
	}

	if blankID(src) {
		return ErrInvalidSource.With(slog.String("reason", "blank id"))
	}

	return nil
}

func blankID(src Source) bool { return strings.TrimSpace(src.ID()) == "" }

// guard tracks the sources open on the current include path.
type guard struct {
	open map[string]struct{}
	path []string
}

func newGuard() guard {
	return guard{open: make(map[string]struct{})}
}

// enter marks id as open, or fails if it already is.
func (g *guard) enter(id string, origin Directive) error {
	if _, ok := g.open[id]; ok {
		return &CycleError{
			Target:    id,
			Ancestors: slices.Clone(g.path),
			Directive: origin,
		}
	}

	g.open[id] = struct{}{}
	g.path = append(g.path, id)

	return nil
}

// leave unmarks the most recently entered source.
func (g *guard) leave() {
	if n := len(g.path); n > 0 {
		delete(g.open, g.path[n-1])
		g.path = g.path[:n-1]
	}
}
