// Package stats holds the distribution utilities behind Manifold's views:
// percentiles, kernel density curves, histograms and divergence scores.
//
// Everything here is a pure function over in-memory slices. Degenerate input
// (empty slices, all-NaN data, constant data) yields an empty or well-defined
// result instead of an error, since the results feed rendering code.
package stats
