package quantize

import (
	"strconv"
	"strings"
)

// Key is the discrete, hashable form of a quantized state vector: one
// small integer per dimension, joined with '|'. Keys index the Q-table.
type Key string

// Range declares the fixed numeric span of one vector dimension. Bin
// edges are derived from these declared spans, never from the values of
// the vector being quantized: deriving edges from a vector's own min/max
// makes the key for one dimension depend on unrelated dimensions, which
// silently breaks the training/inference key identity.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Coarse quantization cuts over for vectors above this many dimensions
const coarseThreshold = 20

// Quantizer discretizes feature vectors by per-dimension equal-width
// binning over a fixed range table. It is deterministic, idempotent and
// never fails for finite input; out-of-range values clamp to the nearest
// edge bin. The exact same quantizer configuration must be used by the
// training environment and the inference path.
type Quantizer struct {
	ranges []Range
	bins   int
}

// New creates a quantizer over the given per-dimension ranges. Vectors
// longer than 20 dimensions get 5 bins per dimension, shorter ones 10.
func New(ranges []Range) *Quantizer {
	bins := 10
	if len(ranges) > coarseThreshold {
		bins = 5
	}
	q := &Quantizer{
		ranges: make([]Range, len(ranges)),
		bins:   bins,
	}
	copy(q.ranges, ranges)
	return q
}

// Bins returns the number of bins per dimension
func (q *Quantizer) Bins() int {
	return q.bins
}

// Dimensions returns the expected vector length
func (q *Quantizer) Dimensions() int {
	return len(q.ranges)
}

// Quantize maps a vector to its discrete key. Vectors shorter than the
// range table quantize the dimensions they have; extra dimensions clamp
// against the last declared range.
func (q *Quantizer) Quantize(v []float64) Key {
	var sb strings.Builder
	for i, x := range v {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(strconv.Itoa(q.bin(i, x)))
	}
	return Key(sb.String())
}

// bin maps one value into [0, bins-1] for its dimension
func (q *Quantizer) bin(dim int, x float64) int {
	if len(q.ranges) == 0 {
		return 0
	}
	if dim >= len(q.ranges) {
		dim = len(q.ranges) - 1
	}
	r := q.ranges[dim]
	if r.Max <= r.Min {
		return 0
	}
	if x != x { // NaN clamps to the lowest bin
		return 0
	}
	width := (r.Max - r.Min) / float64(q.bins)
	b := int((x - r.Min) / width)
	if b < 0 {
		return 0
	}
	if b >= q.bins {
		return q.bins - 1
	}
	return b
}
