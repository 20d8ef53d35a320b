// Package kmeans implements Lloyd's k-means over gonum matrices.
//
// It is the clustering engine behind Manifold's performance segments: rows of
// a sample matrix (one per data point, one column per model metric) are
// grouped into k clusters. Initialization is Forgy (k distinct samples drawn
// without replacement from an injectable random source), so a fixed seed
// makes a whole run reproducible.
//
// Distances are stored cluster-major: a K×N matrix with one row per centroid
// and one column per sample.
//
// Empty clusters are never left to produce NaN centroids. After every
// assignment pass the driver runs Repair, which hands each starved cluster a
// donor sample taken from a cluster that can spare one.
package kmeans
