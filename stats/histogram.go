package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Dividers returns bins+1 evenly spaced bin edges covering values. The last
// edge is nudged up so the maximum falls inside the final bin. Constant input
// gets a single unit-wide bin around the value. NaN and infinite values are
// ignored; input without any finite value returns nil.
func Dividers(values []float64, bins int) []float64 {
	data := sortedFinite(values)
	if len(data) == 0 {
		return nil
	}
	if bins < 1 {
		bins = 1
	}

	lo, hi := data[0], data[len(data)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	return dividers
}

// Histogram counts values into the bins delimited by dividers
// ([d[i], d[i+1]) for each i). Values outside the dividers, NaNs and
// infinities are dropped. dividers must be sorted and hold at least two edges, otherwise
// Histogram returns nil.
func Histogram(values []float64, dividers []float64) []float64 {
	if len(dividers) < 2 || !sort.Float64sAreSorted(dividers) {
		return nil
	}

	lo, hi := dividers[0], dividers[len(dividers)-1]
	data := make([]float64, 0, len(values))
	for _, v := range sortedFinite(values) {
		if v >= lo && v < hi {
			data = append(data, v)
		}
	}

	return stat.Histogram(nil, dividers, data, nil)
}

// NumericalDistribution is the histogram of values over dividers normalized
// to sum to 1. If no value falls inside the dividers all bins are zero.
func NumericalDistribution(values []float64, dividers []float64) []float64 {
	counts := Histogram(values, dividers)
	return Normalize(counts)
}

// CategoricalDistribution returns the relative frequency of each category.
//
// If categories is nil, the distinct values in order of first appearance are
// used. Values not in categories are ignored. The categories used are
// returned alongside the distribution.
func CategoricalDistribution(values []string, categories []string) ([]string, []float64) {
	if categories == nil {
		seen := make(map[string]struct{})
		for _, v := range values {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				categories = append(categories, v)
			}
		}
	}

	index := make(map[string]int, len(categories))
	for i, c := range categories {
		index[c] = i
	}

	counts := make([]float64, len(categories))
	for _, v := range values {
		if i, ok := index[v]; ok {
			counts[i]++
		}
	}

	return categories, Normalize(counts)
}

// Normalize returns a copy of counts scaled to sum to 1. A zero total yields
// all zeros.
func Normalize(counts []float64) []float64 {
	if counts == nil {
		return nil
	}
	out := make([]float64, len(counts))
	copy(out, counts)

	total := floats.Sum(out)
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		for i := range out {
			out[i] = 0
		}
		return out
	}
	floats.Scale(1/total, out)
	return out
}
