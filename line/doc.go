// Package line implements a recursive, line-oriented text preprocessor.
//
// A [Source] produces raw lines. An [Engine] reads one or more root sources
// and yields a flattened sequence of logical lines: backslash-continued raw
// lines are joined, comments and blank lines are dropped, and directive
// lines are replaced by the lines of the source they name.
//
// # Syntax
//
// With the default [Config]:
//
//	# comment lines start with '#', optionally indented
//	key = value \
//	      continued on the next raw line
//	@other.conf          include other.conf, relative to this file
//	@ "with spaces.conf" payloads may be double-quoted
//	@-                   include standard input
//
// A raw line ending in an odd number of backslashes continues onto the next
// raw line. One backslash is removed, and with [ContinuedNewlines] a newline
// is kept in its place.
//
// # Resolution
//
// The payload of a directive (the text after the marker) is offered to each
// configured [Factory] in order. The first to return a non-nil [Source]
// wins. A [FileFactory] is always appended last; it resolves paths relative
// to the including source, then against the include directories. A directive
// no factory claims fails the traversal with [ErrUnresolvedDirective].
//
// # Traversal
//
// Two drivers share the same preprocessing, cache, and cycle guard:
//
//   - [Engine.Process] and [Engine.Walk] push every line to a callback until
//     it returns [Stop] or the input is exhausted.
//   - [Engine.Reader] returns a pull handle in the style of [bufio.Scanner];
//     [Engine.All] adapts it to a range-over-func iterator.
//
// Each source is read at most once per engine, so a file included from two
// places (a diamond) is read once and emitted twice. Including a source that
// is still open on the current path fails with a [*CycleError].
//
// The depth of the root is 0. A directive whose target would sit deeper than
// [Config.MaxDepth] is passed through as an ordinary line.
package line
