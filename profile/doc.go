// Package profile provides optional runtime profiling for recline.
//
// Profiling is provided by [github.com/pkg/profile] and compiled in only with
// the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Modes] is empty and [Start] fails with [ErrUnavailable]
// for any mode. A [Session] without a mode is inactive in every build.
//
// # Modes
//
//   - allocs:    Memory allocation profiling (all allocations)
//   - block:     Block (synchronization) profiling
//   - clock:     Wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: Goroutine profiling
//   - heap:      Heap memory profiling (live allocations)
//   - mem:       General memory profiling
//   - mutex:     Mutex contention profiling
//   - thread:    Thread creation profiling
//   - trace:     Execution trace profiling
//
// # Usage
//
//	recline --pprof-mode cpu cat app.conf
//	go tool pprof "$(recline --pprof-mode cpu ...)/cpu.pprof"
//
// Profiles are written to the cache directory unless --pprof-dir is given:
//
//	$XDG_CACHE_HOME/recline/pprof   (Linux/Unix)
//	~/Library/Caches/recline/pprof  (macOS)
//	%LocalAppData%\recline\pprof    (Windows)
//
// The pprof build also registers the [net/http/pprof] handlers on
// [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
