package line

import (
	"iter"
	"strconv"
	"strings"
	"unicode"
)

// Trim selects which surrounding whitespace is removed from logical lines.
type Trim int

const (
	TrimNone     Trim = iota // none
	TrimLeading              // leading
	TrimTrailing             // trailing
	TrimBoth                 // both
)

// DefaultTrim is the default trim mode.
const DefaultTrim = TrimNone

var trimNames = [...]string{"none", "leading", "trailing", "both"}

// String returns the lowercase name of the trim mode.
func (t Trim) String() string {
	if t < 0 || int(t) >= len(trimNames) {
		return "Trim(" + strconv.Itoa(int(t)) + ")"
	}

	return trimNames[t]
}

// ParseTrim parses the name of a trim mode.
func ParseTrim(s string) (Trim, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range trimNames {
		if n == name {
			return Trim(i), nil
		}
	}

	return TrimNone, ErrInvalidConfig.With(attrTrim(s))
}

// Trims returns an iterator over the names of all trim modes.
func Trims() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, n := range trimNames {
			if !yield(n) {
				return
			}
		}
	}
}

func (t Trim) apply(s string) string {
	switch t {
	case TrimLeading:
		return strings.TrimLeftFunc(s, unicode.IsSpace)
	case TrimTrailing:
		return strings.TrimRightFunc(s, unicode.IsSpace)
	case TrimBoth:
		return strings.TrimFunc(s, unicode.IsSpace)
	default:
		return s
	}
}

// Feature is a set of independently toggled preprocessing behaviors.
type Feature uint8

const (
	// Comments drops logical lines whose first non-blank character is '#'.
	Comments Feature = 1 << iota
	// Continuation joins a raw line ending in an odd number of backslashes
	// with the raw line that follows it.
	Continuation
	// Recursion expands directive lines into the lines of the named source.
	Recursion
	// IgnoreEmptyLines drops logical lines that are empty after trimming.
	IgnoreEmptyLines
	// ContinuedNewlines keeps a newline where a continuation was joined.
	ContinuedNewlines

	// NoFeatures disables all preprocessing; every raw line is emitted as-is.
	NoFeatures Feature = 0
	// AllFeatures enables every feature.
	AllFeatures = Comments | Continuation | Recursion | IgnoreEmptyLines |
		ContinuedNewlines
)

// DefaultFeatures is the default feature set.
const DefaultFeatures = AllFeatures

var featureNames = [...]struct {
	name string
	flag Feature
}{
	{"comments", Comments},
	{"continuation", Continuation},
	{"recursion", Recursion},
	{"ignore-empty-lines", IgnoreEmptyLines},
	{"continued-newlines", ContinuedNewlines},
}

// Has reports whether every feature in g is enabled in f.
func (f Feature) Has(g Feature) bool { return f&g == g }

// String returns the enabled feature names joined by '|', or "none".
func (f Feature) String() string {
	if f == NoFeatures {
		return "none"
	}

	var names []string

	for _, fn := range featureNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
			f &^= fn.flag
		}
	}

	if f != 0 {
		names = append(names, "0x"+strconv.FormatUint(uint64(f), 16))
	}

	return strings.Join(names, "|")
}

// ParseFeature parses a single feature name, or "all" or "none".
func ParseFeature(s string) (Feature, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "all":
		return AllFeatures, nil
	case "none":
		return NoFeatures, nil
	}

	for _, fn := range featureNames {
		if fn.name == name {
			return fn.flag, nil
		}
	}

	return NoFeatures, ErrInvalidConfig.With(attrFeature(s))
}

// Features returns an iterator over the names of all single features.
func Features() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, fn := range featureNames {
			if !yield(fn.name) {
				return
			}
		}
	}
}

// Unbounded disables the include depth limit.
const Unbounded = -1

// DefaultMaxDepth is the default include depth limit.
const DefaultMaxDepth = Unbounded

// DefaultMarker is the default directive marker.
const DefaultMarker = '@'

// Config controls how an [Engine] turns raw lines into logical lines.
type Config struct {
	// MaxDepth is the deepest include level that may be entered, where the
	// roots are at depth 0. A negative value disables the limit.
	MaxDepth int
	Trim     Trim
	Features Feature
	// Marker is the rune that begins a directive line.
	Marker rune
}

// DefaultConfig returns the configuration used by [New] when no options are
// given.
func DefaultConfig() Config {
	return Config{
		MaxDepth: DefaultMaxDepth,
		Trim:     DefaultTrim,
		Features: DefaultFeatures,
		Marker:   DefaultMarker,
	}
}

func (c Config) normalize() Config {
	if c.Marker == 0 || c.Marker == '#' || unicode.IsSpace(c.Marker) {
		c.Marker = DefaultMarker
	}

	if c.Trim < TrimNone || c.Trim > TrimBoth {
		c.Trim = DefaultTrim
	}

	return c
}

// allows reports whether a source may be entered at the given depth.
func (c Config) allows(depth int) bool {
	return c.MaxDepth < 0 || depth <= c.MaxDepth
}

// isComment reports whether the first non-blank character of s is '#'.
func isComment(s string) bool {
	return strings.HasPrefix(strings.TrimLeftFunc(s, unicode.IsSpace), "#")
}

// directive returns the payload of s if its first non-blank character is the
// marker. Surrounding blanks are removed from the payload.
func (c Config) directive(s string) (string, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	rest, ok := strings.CutPrefix(s, string(c.Marker))
	if !ok {
		return "", false
	}

	return strings.TrimFunc(rest, unicode.IsSpace), true
}

// continues reports whether raw ends in an odd number of backslashes.
func continues(raw string) bool {
	n := 0
	for i := len(raw) - 1; i >= 0 && raw[i] == '\\'; i-- {
		n++
	}

	return n%2 == 1
}
