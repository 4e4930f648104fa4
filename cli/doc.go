// Package cli contains the command line interface for recline.
//
// # Usage
//
// Without a subcommand, recline prints the preprocessed lines of each source:
//
//	recline [flags] [source ...]
//	recline props [flags] [source ...]
//	recline browse [flags] [source ...]
//	recline init [--force]
//
// A source of "-" reads standard input, which is always read last.
//
// # Preprocessing Options
//
//   - --trim: Trim whitespace from each logical line (none, leading, trailing,
//     both)
//   - --max-depth: Deepest include level; negative is unbounded
//   - --disable: Disable features (comments, continuation, recursion,
//     ignore-empty-lines, continued-newlines, all)
//   - --marker: Rune that begins a directive line (default "@")
//   - -I, --include: Directory searched for included files, before those
//     listed in RECLINE_PATH
//   - -t, --transform: expr-lang expression applied to each emitted line
//
// # Configuration
//
// Flags may also be given in a property file in the user configuration
// directory (~/.config/recline/config). The file is itself preprocessed, so
// it may include others relative to its own directory:
//
//	# recline configuration
//	log-level = info
//	trim = both
//	@local.config
//
// Command-line flags override configuration values. The init command writes
// the current flags to this file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o recline .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/recline/pprof)
//
// # Examples
//
//	# Print a file with its includes expanded, trimmed, as JSON
//	recline --trim=both cat -f json settings.conf
//
//	# Print again whenever settings.conf or anything it includes changes
//	recline cat --watch settings.conf
//
//	# Print one value from a property file
//	recline props -k host app.properties
package cli
