// Package clustergo provides an embedded k-means clustering engine for Go.
//
// Clustergo partitions a set of float32 vectors into K clusters using
// Lloyd's algorithm: centroids are seeded uniformly at random inside the
// data's bounding box, then refined by alternating nearest-centroid
// assignment and per-cluster mean updates until the clustering cost
// stops changing.
//
// # Quick Start
//
//	ctx := context.Background()
//	km, _ := clustergo.New(2, clustergo.WithRandomSeed(42))
//	model, _ := km.Fit(ctx, [][]float32{
//	    {0, 0}, {0, 1},
//	    {10, 0}, {10, 1},
//	})
//	fmt.Println(model.Labels()) // e.g. [0 0 1 1]
//
// # Convergence
//
// By default the engine stops when the cost of two consecutive iterations
// is exactly equal, matching the classic textbook loop. Use
// WithTolerance to stop on a small cost delta instead, and
// WithMaxIterations to bound the number of iterations (default 300).
// A fit that hits the cap still returns the best labeling found so far;
// check Model.Converged to distinguish the two outcomes.
//
// # Determinism
//
// All randomness (initial centroids and empty-cluster recovery) flows
// through a single seedable source. With WithRandomSeed set, two runs on
// identical input produce identical labelings.
//
// # Persistence
//
// A trained Model can be snapshotted to any io.Writer with optional LZ4 or
// ZSTD compression, and stored through the store package (in-memory, local
// filesystem, or S3-compatible object storage via store/minio).
package clustergo
