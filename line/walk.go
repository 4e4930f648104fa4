package line

import (
	"context"
	"maps"
)

// Action tells a traversal whether to keep going.
type Action int

const (
	Continue Action = iota // continue
	Stop                   // stop
)

// Process pushes the text of every logical line to fn until fn returns
// [Stop] or all roots are exhausted. Lines are delivered as preprocessed;
// the engine's [Transformer] applies only to [Engine.Reader] and [Engine.All].
//
// It returns false if fn stopped the traversal. On error, nothing further is
// delivered and the boolean is false.
func (e *Engine) Process(ctx context.Context, fn func(string) Action) (bool, error) {
	return e.Walk(ctx, func(ln Line) Action { return fn(ln.Text) })
}

// Walk is like [Engine.Process] but delivers each [Line] with its origin.
func (e *Engine) Walk(ctx context.Context, fn func(Line) Action) (bool, error) {
	if len(e.roots) == 0 {
		return true, nil
	}

	w := &walker{Engine: e, fn: fn, guard: newGuard(), counts: map[string]int{}}

	defer func() { e.counts = maps.Clone(w.counts) }()

	for _, root := range e.roots {
		if e.closed {
			break
		}

		if err := validRoot(root); err != nil {
			return false, err
		}

		ok, err := w.visit(ctx, root, 0, Directive{})
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

type walker struct {
	*Engine
	fn     func(Line) Action
	counts map[string]int
	guard
}

// visit emits the lines of src, which sits at depth.
func (w *walker) visit(ctx context.Context, src Source, depth int, origin Directive) (bool, error) {
	owned := depth > 0

	if err := w.enter(src.ID(), origin); err != nil {
		if owned {
			w.release(ctx, src)
		}

		return false, err
	}

	ent, err := w.load(ctx, src, owned)
	if err != nil {
		return false, err
	}

	for _, ln := range ent.lines {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		if w.closed {
			return true, nil
		}

		if payload, ok := w.expand(ctx, ln, depth); ok {
			child, err := w.resolve(ctx, ln, payload, src)
			if err != nil {
				return false, err
			}

			ok, err := w.visit(ctx, child, depth+1, directiveOf(ln))
			if err != nil || !ok {
				return false, err
			}

			continue
		}

		w.counts[ln.Source]++

		if w.fn(ln) == Stop {
			return false, nil
		}
	}

	w.leave()

	return true, nil
}
