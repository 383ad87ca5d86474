package clustergo

import "math/rand"

// initCentroids seeds k centroids uniformly at random inside the data's
// per-dimension bounding box. Dimensions are independent: no correlation
// between coordinates of a single centroid is preserved from the data.
//
// With k greater than the number of points some centroids may never receive
// points; empty-cluster recovery in the update step re-seeds them.
func initCentroids(data []float32, dim, k int, rng *rand.Rand) []float32 {
	lo, hi := dataBounds(data, dim)

	centroids := make([]float32, k*dim)
	for i := 0; i < k; i++ {
		drawWithin(centroids[i*dim:(i+1)*dim], lo, hi, rng)
	}
	return centroids
}

// randomCentroid re-seeds dst with a fresh bounding-box draw. Used by
// empty-cluster recovery; each recovery recomputes the bounds rather than
// reusing a cached box.
func randomCentroid(dst, data []float32, dim int, rng *rand.Rand) {
	lo, hi := dataBounds(data, dim)
	drawWithin(dst, lo, hi, rng)
}

// dataBounds computes the per-dimension minimum and maximum across all
// points. data must hold at least one point; Fit validates that before
// any centroid is drawn.
func dataBounds(data []float32, dim int) (lo, hi []float32) {
	lo = make([]float32, dim)
	hi = make([]float32, dim)
	copy(lo, data[:dim])
	copy(hi, data[:dim])

	for off := dim; off < len(data); off += dim {
		for d := 0; d < dim; d++ {
			v := data[off+d]
			if v < lo[d] {
				lo[d] = v
			}
			if v > hi[d] {
				hi[d] = v
			}
		}
	}
	return lo, hi
}

// drawWithin fills dst with one coordinate per dimension, each drawn
// uniformly from [lo, hi).
func drawWithin(dst, lo, hi []float32, rng *rand.Rand) {
	for d := range dst {
		dst[d] = lo[d] + rng.Float32()*(hi[d]-lo[d])
	}
}
