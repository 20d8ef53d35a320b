// Package distance provides dissimilarity measures between feature vectors.
//
// All functions return values where smaller means closer, so they can be
// plugged straight into nearest-centroid assignment.
//
// # Supported Metrics
//
//   - MetricL2: Squared Euclidean distance (default)
//   - MetricCosine: Cosine distance (1 - cosine similarity)
//   - MetricManhattan: L1 distance
//
// # Usage
//
//	d := distance.SquaredL2(a, b)
//	fn, _ := distance.Provider(distance.MetricCosine)
//	d = fn(a, b)
package distance
