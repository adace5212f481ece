package simulate

import "math"

// Percentile returns the q-quantile (q in [0,1]) of sorted, interpolating
// linearly between the two nearest order statistics at rank (n-1)*q.
// sorted must be ascending and non-empty.
func Percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	switch {
	case q <= 0:
		return sorted[0]
	case q >= 1:
		return sorted[n-1]
	}

	pos := q * float64(n-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	weight := pos - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}
