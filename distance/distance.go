package distance

import "math"

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	return float32(squaredL2(a, b))
}

// L2 calculates the L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func L2(a, b []float32) float32 {
	return float32(math.Sqrt(squaredL2(a, b)))
}

// SquaredL2F64 calculates the squared L2 distance with float64 accumulation.
// Used by cost evaluation where residuals are summed across an entire dataset
// and float32 accumulation would lose precision.
func SquaredL2F64(a, b []float32) float64 {
	return squaredL2(a, b)
}

// squaredL2 accumulates in float64 with 4-way loop unrolling for better
// instruction-level parallelism.
func squaredL2(a, b []float32) float64 {
	n := len(a)
	var sum0, sum1, sum2, sum3 float64

	i := 0
	for ; i <= n-4; i += 4 {
		d0 := float64(a[i] - b[i])
		d1 := float64(a[i+1] - b[i+1])
		d2 := float64(a[i+2] - b[i+2])
		d3 := float64(a[i+3] - b[i+3])
		sum0 += d0 * d0
		sum1 += d1 * d1
		sum2 += d2 * d2
		sum3 += d3 * d3
	}

	for ; i < n; i++ {
		d := float64(a[i] - b[i])
		sum0 += d * d
	}

	return sum0 + sum1 + sum2 + sum3
}
