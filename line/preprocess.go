package line

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// entry holds the preprocessed lines of one source.
type entry struct {
	lines  []Line
	id     string
	raw    int    // Number of raw lines read
	digest uint64 // xxhash of the raw content
}

// Snapshot describes a preprocessed source held in an [Engine] cache.
type Snapshot struct {
	ID     string
	Lines  []string // Logical lines, before directive expansion
	Raw    int      // Number of raw lines read
	Digest uint64   // xxhash of the raw lines, each followed by '\n'
}

func (e *entry) snapshot() Snapshot {
	lines := make([]string, len(e.lines))
	for i, ln := range e.lines {
		lines[i] = ln.Text
	}

	return Snapshot{ID: e.id, Lines: lines, Raw: e.raw, Digest: e.digest}
}

// preprocess reads every raw line of src and returns its logical lines.
// Directive lines are kept; they are expanded during traversal.
func (c Config) preprocess(src Source) (*entry, error) {
	var (
		acc     strings.Builder
		pending bool // acc holds a continued line
	)

	ent := &entry{id: src.ID()}
	cont := c.Features.Has(Continuation) && src.Continuable()
	hash := xxhash.New()

	emit := func(text string, pos int) {
		text = c.Trim.apply(text)

		if c.Features.Has(Comments) && isComment(text) {
			return
		}

		if c.Features.Has(IgnoreEmptyLines) && text == "" {
			return
		}

		ent.lines = append(ent.lines, Line{Source: ent.id, Text: text, Position: pos})
	}

	for raw, err := range src.Lines() {
		if err != nil {
			return nil, ErrRead.Wrap(err).With(
				attrSource(ent.id),
				attrLine(ent.raw+1),
			)
		}

		ent.raw++

		_, _ = hash.WriteString(raw)
		_, _ = hash.WriteString("\n")

		if cont && continues(raw) {
			acc.WriteString(raw[:len(raw)-1])

			if c.Features.Has(ContinuedNewlines) {
				acc.WriteByte('\n')
			}

			pending = true

			continue
		}

		if pending {
			acc.WriteString(raw)
			emit(acc.String(), ent.raw)
			acc.Reset()

			pending = false

			continue
		}

		emit(raw, ent.raw)
	}

	// A continuation on the final raw line joins with nothing.
	if pending {
		emit(acc.String(), ent.raw)
	}

	ent.digest = hash.Sum64()

	return ent, nil
}
