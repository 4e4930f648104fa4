package watch

import "github.com/cespare/xxhash/v2"

// Digest remembers the xxhash of the most recent output so repeated
// identical output can be skipped.
type Digest struct {
	sum  uint64
	seen bool
}

// Changed reports whether b differs from the output last given to Changed,
// and records b. The first call always reports true.
func (d *Digest) Changed(b []byte) bool {
	sum := xxhash.Sum64(b)
	if d.seen && sum == d.sum {
		return false
	}

	d.sum, d.seen = sum, true

	return true
}

// Sum returns the digest of the last recorded output.
func (d *Digest) Sum() uint64 { return d.sum }
