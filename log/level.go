package log

//go:generate go tool stringer --linecomment --type Level,Format --output level_string.go

import (
	"iter"
	"log/slog"
	"slices"
	"strings"
)

// Level is the severity of a log message. It extends [slog.Level] with
// [LevelTrace], used for per-line preprocessing detail.
type Level slog.Level

const (
	LevelTrace Level = Level(slog.LevelDebug - 4) // trace
	LevelDebug Level = Level(slog.LevelDebug)     // debug
	LevelInfo  Level = Level(slog.LevelInfo)      // info
	LevelWarn  Level = Level(slog.LevelWarn)      // warn
	LevelError Level = Level(slog.LevelError)     // error
)

// DefaultLevel is the level of a [Logger] made without [WithLevel].
const DefaultLevel = LevelInfo

var levels = []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}

// Levels returns the names of all levels, most verbose first.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, l := range levels {
			if !yield(l.String()) {
				return
			}
		}
	}
}

// ParseLevel returns the level named by s, ignoring case. Besides the names
// from [Levels], it accepts anything [slog.Level.UnmarshalText] does, such
// as "warn+2". Unknown names give [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.TrimSpace(s)

	if i := slices.IndexFunc(levels, func(l Level) bool {
		return strings.EqualFold(s, l.String())
	}); i >= 0 {
		return levels[i]
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// label is the upper-case name shown in log records, so that trace records
// read "TRACE" instead of "DEBUG-4".
func (l Level) label() string { return strings.ToUpper(l.String()) }

// Format is the encoding of log records.
type Format int

const (
	FormatText Format = iota // text
	FormatJSON               // json
)

// DefaultFormat is the format of a [Logger] made without [WithFormat].
const DefaultFormat = FormatJSON

// Formats returns the names of all formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, f := range []Format{FormatJSON, FormatText} {
			if !yield(f.String()) {
				return
			}
		}
	}
}

// ParseFormat returns the format named by s, ignoring case. Unknown names
// give [DefaultFormat].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case FormatText.String():
		return FormatText
	case FormatJSON.String():
		return FormatJSON
	default:
		return DefaultFormat
	}
}
