package line

import (
	"context"
	"iter"
	"maps"
)

// Reader pulls logical lines from an [Engine] one at a time.
//
// Successive calls to [Reader.Scan] step through the lines, expanding
// directives as they are reached. Scanning stops at the end of the last
// root, at the first error, or once the Reader or its Engine is closed.
type Reader struct {
	ctx       context.Context
	engine    *Engine
	transform Transformer
	counts    map[string]int
	err       error
	stack     []*frame
	guard
	line Line
	next int // index of the next root
	done bool
}

// frame is a source being read by a [Reader].
type frame struct {
	src   Source
	lines []Line
	next  int
	depth int
}

// Reader returns a new Reader over the roots of e, using the transformer
// configured on e.
func (e *Engine) Reader(ctx context.Context) *Reader {
	return &Reader{
		ctx:       ctx,
		engine:    e,
		transform: e.transform,
		counts:    make(map[string]int),
		guard:     newGuard(),
	}
}

// SetTransformer replaces the transformer applied to subsequent lines.
// A nil transformer is treated as [Identity].
func (r *Reader) SetTransformer(t Transformer) {
	if t == nil {
		t = Identity
	}

	r.transform = t
}

// Scan advances to the next logical line, which is then available through
// [Reader.Text] and [Reader.Line]. It returns false when there are no more
// lines or an error occurred; [Reader.Err] tells which.
func (r *Reader) Scan() bool {
	if r.done {
		return false
	}

	if r.engine.closed {
		return r.finish(nil)
	}

	for {
		if err := r.ctx.Err(); err != nil {
			return r.finish(err)
		}

		n := len(r.stack)
		if n == 0 {
			if r.next >= len(r.engine.roots) {
				return r.finish(nil)
			}

			root := r.engine.roots[r.next]
			r.next++

			if err := validRoot(root); err != nil {
				return r.finish(err)
			}

			if err := r.push(root, 0, Directive{}); err != nil {
				return r.finish(err)
			}

			continue
		}

		top := r.stack[n-1]
		if top.next >= len(top.lines) {
			r.stack = r.stack[:n-1]
			r.leave()

			continue
		}

		ln := top.lines[top.next]
		top.next++

		if payload, ok := r.engine.expand(r.ctx, ln, top.depth); ok {
			child, err := r.engine.resolve(r.ctx, ln, payload, top.src)
			if err != nil {
				return r.finish(err)
			}

			if err := r.push(child, top.depth+1, directiveOf(ln)); err != nil {
				return r.finish(err)
			}

			continue
		}

		r.counts[ln.Source]++

		ln.Text = r.transform(ln.Text)
		r.line = ln

		return true
	}
}

// push opens src as the new innermost frame.
func (r *Reader) push(src Source, depth int, origin Directive) error {
	owned := depth > 0

	if err := r.enter(src.ID(), origin); err != nil {
		if owned {
			r.engine.release(r.ctx, src)
		}

		return err
	}

	ent, err := r.engine.load(r.ctx, src, owned)
	if err != nil {
		return err
	}

	r.stack = append(r.stack, &frame{src: src, lines: ent.lines, depth: depth})

	return nil
}

func (r *Reader) finish(err error) bool {
	r.done = true
	r.err = err
	r.stack = nil
	r.line = Line{}

	return false
}

// Text returns the most recent line produced by [Reader.Scan].
func (r *Reader) Text() string { return r.line.Text }

// Line returns the most recent line produced by [Reader.Scan] with its
// origin.
func (r *Reader) Line() Line { return r.line }

// Err returns the error that ended the scan, if any.
func (r *Reader) Err() error { return r.err }

// Counts returns the number of lines each source has emitted so far.
func (r *Reader) Counts() map[string]int { return maps.Clone(r.counts) }

// Close ends the scan. Further calls to [Reader.Scan] return false.
// The roots of the [Engine] are left open.
func (r *Reader) Close() error {
	if !r.done {
		r.finish(nil)
	}

	return nil
}

// All returns an iterator over the logical lines of e. A traversal error is
// yielded as the final element.
func (e *Engine) All(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		r := e.Reader(ctx)
		defer r.Close()

		for r.Scan() {
			if !yield(r.Text(), nil) {
				return
			}
		}

		if err := r.Err(); err != nil {
			yield("", err)
		}
	}
}
