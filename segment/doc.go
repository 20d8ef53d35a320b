// Package segment turns cluster assignments into data segments and compares
// feature distributions between segments.
//
// A segment is a set of sample (row) indices stored as a Roaring bitmap.
// Segments come from a k-means assignment vector (Partition) or from a
// feature predicate (Where), and can be combined into groups with Group,
// Bitmap.And and Bitmap.Or.
//
// FeatureDistributions histograms every feature per group over shared bin
// edges, and RankFeatures orders features by how strongly their
// distributions diverge between two groups.
package segment
