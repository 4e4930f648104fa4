package props

import (
	"bytes"
	"context"
	"encoding/json"
	"iter"
	"maps"
	"strings"
	"unicode"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/recline/line"
)

// Property is one key-value pair and the logical line that defined it.
type Property struct {
	Key    string
	Value  string
	Origin line.Line
}

// Properties is an ordered set of properties.
//
// Keys are kept in the order they first appear. Setting a key that already
// exists replaces its value and origin without moving it.
type Properties struct {
	index map[string]int
	items []Property
}

// New returns an empty property set.
func New() *Properties {
	return &Properties{index: make(map[string]int)}
}

// Set adds prop, or replaces the property with the same key.
func (p *Properties) Set(prop Property) {
	if p.index == nil {
		p.index = make(map[string]int)
	}

	if i, ok := p.index[prop.Key]; ok {
		p.items[i] = prop

		return
	}

	p.index[prop.Key] = len(p.items)
	p.items = append(p.items, prop)
}

// Get returns the value of key.
func (p *Properties) Get(key string) (string, bool) {
	prop, ok := p.Lookup(key)

	return prop.Value, ok
}

// Lookup returns the property with the given key.
func (p *Properties) Lookup(key string) (Property, bool) {
	if p == nil {
		return Property{}, false
	}

	i, ok := p.index[key]
	if !ok {
		return Property{}, false
	}

	return p.items[i], true
}

// Len returns the number of distinct keys.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}

	return len(p.items)
}

// All returns an iterator over keys and values in order.
func (p *Properties) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, prop := range p.Each() {
			if !yield(prop.Key, prop.Value) {
				return
			}
		}
	}
}

// Each returns an iterator over the properties in order.
func (p *Properties) Each() iter.Seq2[int, Property] {
	return func(yield func(int, Property) bool) {
		if p == nil {
			return
		}

		for i, prop := range p.items {
			if !yield(i, prop) {
				return
			}
		}
	}
}

// Map returns the properties as an unordered map.
func (p *Properties) Map() map[string]string {
	return maps.Collect(p.All())
}

// MapSlice returns the properties as an ordered YAML mapping.
func (p *Properties) MapSlice() yaml.MapSlice {
	ms := make(yaml.MapSlice, 0, p.Len())
	for k, v := range p.All() {
		ms = append(ms, yaml.MapItem{Key: k, Value: v})
	}

	return ms
}

// MarshalYAML implements yaml.InterfaceMarshaler, keeping key order.
func (p *Properties) MarshalYAML() (any, error) {
	return p.MapSlice(), nil
}

// MarshalJSON implements json.Marshaler, keeping key order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, prop := range p.Each() {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(prop.Key)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(prop.Value)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Parse splits a logical line into a property.
//
// The key ends at the first unescaped '=' or ':'. Surrounding whitespace is
// removed from the key and leading whitespace from the value. A backslash in
// the key escapes the rune that follows it. A line with no separator defines
// its key with an empty value.
func Parse(ln line.Line) (Property, error) {
	var (
		key    strings.Builder
		value  string
		escape bool
	)

	text := ln.Text

scan:
	for i, r := range text {
		switch {
		case escape:
			key.WriteRune(r)

			escape = false

		case r == '\\':
			escape = true

		case r == '=' || r == ':':
			value = text[i+1:]

			break scan

		default:
			key.WriteRune(r)
		}
	}

	if escape {
		return Property{}, &SyntaxError{Line: ln, Reason: "dangling escape in key"}
	}

	k := strings.TrimFunc(key.String(), unicode.IsSpace)
	if k == "" {
		return Property{}, &SyntaxError{Line: ln, Reason: "empty key"}
	}

	return Property{
		Key:    k,
		Value:  strings.TrimLeftFunc(value, unicode.IsSpace),
		Origin: ln,
	}, nil
}

// Load walks e and parses every logical line it emits as a property.
// Later definitions of a key override earlier ones.
func Load(ctx context.Context, e *line.Engine) (*Properties, error) {
	p := New()

	var perr error

	_, err := e.Walk(ctx, func(ln line.Line) line.Action {
		prop, err := Parse(ln)
		if err != nil {
			perr = err

			return line.Stop
		}

		p.Set(prop)

		return line.Continue
	})
	if err != nil {
		return nil, err
	}

	if perr != nil {
		return nil, perr
	}

	return p, nil
}

// Options returns the engine options suited to property files: whitespace
// is trimmed from both ends of each line and continued lines are joined
// without a newline.
func Options() []line.Option {
	return []line.Option{
		line.WithTrim(line.TrimBoth),
		line.WithoutFeatures(line.ContinuedNewlines),
	}
}

// LoadFile loads the property file at path, following its directives.
// The options are applied after [Options].
func LoadFile(ctx context.Context, path string, opts ...line.Option) (*Properties, error) {
	src, err := line.NewFileSource(path)
	if err != nil {
		return nil, err
	}

	e := line.New([]line.Source{src}, append(Options(), opts...)...)
	defer e.Close()

	return Load(ctx, e)
}
