package stats

import (
	"math"
	"slices"
)

// Percentiles returns the value at each requested fraction of values using
// linear interpolation between the two bracketing order statistics
// (position p*(n-1) in sorted order).
//
// values need not be sorted and are not modified. NaN and infinite values are
// ignored and fractions are clamped to [0,1]. Empty input returns nil.
func Percentiles(values []float64, ps []float64) []float64 {
	sorted := sortedFinite(values)
	if len(sorted) == 0 {
		return nil
	}

	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = percentileSorted(sorted, p)
	}
	return out
}

// Percentile returns a single interpolated percentile, or NaN for empty input.
func Percentile(values []float64, p float64) float64 {
	res := Percentiles(values, []float64{p})
	if res == nil {
		return math.NaN()
	}
	return res[0]
}

// Median is Percentile(values, 0.5).
func Median(values []float64) float64 {
	return Percentile(values, 0.5)
}

func percentileSorted(sorted []float64, p float64) float64 {
	switch {
	case math.IsNaN(p) || p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[len(sorted)-1]
	}

	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func sortedFinite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}
