package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultResolution is the number of curve points used when Density is
// called with a non-positive resolution.
const DefaultResolution = 64

// Point is one sample of a density curve.
type Point struct {
	X       float64 `json:"x"`
	Density float64 `json:"density"`
}

// Density estimates a smooth distribution curve with a Gaussian kernel.
//
// The bandwidth follows Silverman's rule of thumb. The curve spans three
// bandwidths beyond the data range and has resolution evenly spaced points.
// Constant input uses a unit bandwidth. NaN and infinite values are ignored;
// input without any finite value returns nil.
func Density(values []float64, resolution int) []Point {
	data := sortedFinite(values)
	if len(data) == 0 {
		return nil
	}
	if resolution <= 0 {
		resolution = DefaultResolution
	}

	h := Bandwidth(data)
	lo := data[0] - 3*h
	hi := data[len(data)-1] + 3*h

	xs := make([]float64, resolution)
	if resolution == 1 {
		xs[0] = (lo + hi) / 2
	} else {
		floats.Span(xs, lo, hi)
	}

	kernel := distuv.Normal{Mu: 0, Sigma: 1}
	norm := 1 / (float64(len(data)) * h)

	points := make([]Point, resolution)
	for i, x := range xs {
		var sum float64
		for _, v := range data {
			sum += kernel.Prob((x - v) / h)
		}
		points[i] = Point{X: x, Density: sum * norm}
	}
	return points
}

// Bandwidth returns Silverman's rule-of-thumb kernel bandwidth for values.
// It never returns zero: constant or single-valued input yields 1.
func Bandwidth(values []float64) float64 {
	data := sortedFinite(values)
	n := len(data)
	if n < 2 {
		return 1
	}

	sd := stat.StdDev(data, nil)
	iqr := (percentileSorted(data, 0.75) - percentileSorted(data, 0.25)) / 1.34

	spread := sd
	if iqr > 0 && iqr < sd {
		spread = iqr
	}
	if spread <= 0 || math.IsNaN(spread) {
		return 1
	}

	return 0.9 * spread * math.Pow(float64(n), -0.2)
}
