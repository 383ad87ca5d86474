package clustergo

import (
	"math"

	"github.com/hupe1980/clustergo/distance"
)

// costOf measures the total assignment error: the Euclidean norm of the
// whole point-minus-assigned-centroid residual matrix, i.e. the square root
// of the sum of squared residuals over all points and dimensions combined.
// Note this is not the sum of per-point distances; the two differ
// numerically.
func costOf(data []float32, labels []int, centroids []float32, dim int) float64 {
	var total float64
	for i, c := range labels {
		total += distance.SquaredL2F64(
			data[i*dim:(i+1)*dim],
			centroids[c*dim:(c+1)*dim],
		)
	}
	return math.Sqrt(total)
}
