package clustergo

import "math/rand"

// updateStep recomputes each centroid as the per-dimension mean of its
// assigned points, accumulating in float64. Clusters with no members are
// re-seeded from a fresh bounding-box draw instead of being dropped, in
// ascending cluster order so a seeded run stays reproducible.
//
// The returned centroid set never contains NaN or Inf for finite input:
// the mean is only taken over non-empty clusters, and a single-point mean
// is the point itself.
func updateStep(data []float32, asg *assignment, dim int, rng *rand.Rand) []float32 {
	k := len(asg.clusters)
	next := make([]float32, k*dim)
	sums := make([]float64, dim)

	var empty []int
	for c, members := range asg.clusters {
		count := members.GetCardinality()
		if count == 0 {
			empty = append(empty, c)
			continue
		}

		for d := range sums {
			sums[d] = 0
		}
		it := members.Iterator()
		for it.HasNext() {
			off := int(it.Next()) * dim
			for d := 0; d < dim; d++ {
				sums[d] += float64(data[off+d])
			}
		}

		inv := 1 / float64(count)
		for d := 0; d < dim; d++ {
			next[c*dim+d] = float32(sums[d] * inv)
		}
	}

	for _, c := range empty {
		randomCentroid(next[c*dim:(c+1)*dim], data, dim, rng)
	}

	return next
}
