// Package watch re-runs a function whenever one of the files it read
// changes.
//
// A [Watcher] watches a replaceable set of files through fsnotify and
// debounces bursts of events into a single signal. [Loop] drives the
// run/watch/wait cycle, and [Digest] lets callers skip output that did not
// change between runs.
package watch
