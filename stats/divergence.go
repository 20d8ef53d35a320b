package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Epsilon is the floor applied to every bin before computing a divergence.
const Epsilon = 1e-10

// ErrLengthMismatch is returned when two distributions have different lengths.
var ErrLengthMismatch = errors.New("distribution length mismatch")

// DivergenceKind selects the divergence measure.
type DivergenceKind int

const (
	// KL is the Kullback-Leibler divergence D(p||q) in nats.
	KL DivergenceKind = iota
	// JensenShannon is the symmetric Jensen-Shannon divergence.
	JensenShannon
	// Hellinger is the Hellinger distance.
	Hellinger
)

func (k DivergenceKind) String() string {
	switch k {
	case KL:
		return "kl"
	case JensenShannon:
		return "js"
	case Hellinger:
		return "hellinger"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// ParseDivergenceKind resolves a kind from its String form.
func ParseDivergenceKind(s string) (DivergenceKind, error) {
	switch s {
	case "kl", "":
		return KL, nil
	case "js":
		return JensenShannon, nil
	case "hellinger":
		return Hellinger, nil
	default:
		return 0, fmt.Errorf("unknown divergence: %q", s)
	}
}

// Divergence scores how different two distributions over the same bins are.
//
// Both inputs are sanitized first: negative and NaN entries become zero,
// every bin is floored at Epsilon, and the result is renormalized. Zero
// probability bins therefore never produce Inf or NaN. Empty input scores 0.
func Divergence(p, q []float64, kind DivergenceKind) (float64, error) {
	if len(p) != len(q) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(p), len(q))
	}
	if len(p) == 0 {
		return 0, nil
	}

	ps := guard(p)
	qs := guard(q)

	var d float64
	switch kind {
	case KL:
		d = stat.KullbackLeibler(ps, qs)
	case JensenShannon:
		d = stat.JensenShannon(ps, qs)
	case Hellinger:
		d = stat.Hellinger(ps, qs)
	default:
		return 0, fmt.Errorf("unsupported divergence: %v", kind)
	}

	// Rounding can push identical inputs marginally below zero.
	if d < 0 || math.IsNaN(d) {
		d = 0
	}
	return d, nil
}

func guard(p []float64) []float64 {
	out := make([]float64, len(p))
	for i, v := range p {
		if v > 0 && !math.IsInf(v, 1) {
			out[i] = v
		}
		out[i] += Epsilon
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}
