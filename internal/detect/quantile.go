package detect

import (
	"math"
	"sort"
)

// Quantile computes the p-quantile with linear interpolation between order
// statistics (the R type-7 definition, which pandas and numpy default to).
// The input is copied, not mutated. Empty input returns 0; p is clamped to
// [0, 1].
func Quantile(vals []float64, p float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	h := p * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
