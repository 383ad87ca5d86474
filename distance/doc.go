// Package distance provides Euclidean distance calculations over float32 vectors.
//
// The clustering engine only needs the L2 family: squared L2 for nearest
// centroid searches (square roots do not change the argmin) and true L2
// where an actual distance is reported.
//
// # Usage
//
//	d := distance.SquaredL2(a, b)
//	d := distance.L2(a, b)
package distance
