// Package testutil provides testing utilities for Manifold.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded RNG and generators for synthetic model-performance
// data: uniform and Gaussian samples, well-separated blobs with known labels,
// and random normalized distributions.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	samples, labels := rng.Blobs(300, 4, 3, 0.5)
//	p := rng.Distribution(10)
//
// # Assertions
//
//	n := testutil.DistinctCount(assignments)
package testutil
