package kmeans

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// RepairStrategy selects the donor sample handed to an empty cluster.
type RepairStrategy int

const (
	// RepairNearest gives an empty cluster the sample closest to its centroid.
	RepairNearest RepairStrategy = iota
	// RepairFarthest gives an empty cluster the sample farthest from its own
	// assigned centroid (outlier reseed).
	RepairFarthest
)

func (s RepairStrategy) String() string {
	switch s {
	case RepairNearest:
		return "nearest"
	case RepairFarthest:
		return "farthest"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// ParseRepairStrategy resolves a strategy from its String form.
func ParseRepairStrategy(s string) (RepairStrategy, error) {
	switch s {
	case "nearest", "":
		return RepairNearest, nil
	case "farthest":
		return RepairFarthest, nil
	default:
		return 0, fmt.Errorf("unknown repair strategy: %q", s)
	}
}

// FillEmptyClusters assigns every sample of a K×N distance matrix to its
// nearest cluster and then repairs empty clusters with RepairNearest.
// The result has one entry per sample.
func FillEmptyClusters(distances mat.Matrix) []int {
	assignments := Assign(distances)
	Repair(distances, assignments, RepairNearest)
	return assignments
}

// Repair hands each empty cluster one donor sample, modifying assignments in
// place, and returns the repaired cluster indices in ascending order.
//
// Empty clusters are visited in ascending order. A sample donates at most
// once per call and only if its current cluster keeps at least one member,
// so no repair empties another cluster. Score ties go to the earliest sample.
// When there are fewer samples than clusters some clusters stay empty.
//
// The reseeded cluster is not guaranteed to keep its donor on the next
// assignment pass; the driver simply repairs again.
func Repair(distances mat.Matrix, assignments []int, strategy RepairStrategy) []int {
	k, n := distances.Dims()
	sizes := ClusterSizes(assignments, k)

	var (
		repaired []int
		used     []bool
	)

	for c := 0; c < k; c++ {
		if sizes[c] > 0 {
			continue
		}
		if used == nil {
			used = make([]bool, n)
		}

		donor := -1
		var best float64
		for i := 0; i < n; i++ {
			if used[i] || sizes[assignments[i]] < 2 {
				continue
			}
			var score float64
			switch strategy {
			case RepairFarthest:
				score = distances.At(assignments[i], i)
				if donor < 0 || score > best {
					donor, best = i, score
				}
			default:
				score = distances.At(c, i)
				if donor < 0 || score < best {
					donor, best = i, score
				}
			}
		}
		if donor < 0 {
			break
		}

		sizes[assignments[donor]]--
		assignments[donor] = c
		sizes[c]++
		used[donor] = true
		repaired = append(repaired, c)
	}

	return repaired
}
