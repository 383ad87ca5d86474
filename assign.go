package clustergo

import (
	"context"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/clustergo/distance"
	"golang.org/x/sync/errgroup"
)

// assignment maps every point to exactly one cluster: a dense label vector
// plus one membership bitmap per cluster (the indicator form consumed by
// the update step).
type assignment struct {
	labels   []int
	clusters []*roaring.Bitmap
}

// assignStep assigns every point to its nearest centroid under squared L2
// distance. Ties at exact floating-point equality go to the lowest-indexed
// centroid, so the result is deterministic for a fixed centroid ordering.
//
// Points are split into contiguous ranges across workers; each worker
// writes a disjoint region of the label vector, so the result is identical
// regardless of worker count. The membership bitmaps are built after the
// join, in point order.
func assignStep(ctx context.Context, data, centroids []float32, dim, workers int) (*assignment, error) {
	n := len(data) / dim
	k := len(centroids) / dim
	labels := make([]int, n)

	if workers > n {
		workers = n
	}
	if workers <= 1 {
		if err := assignRange(ctx, data, centroids, dim, labels, 0, n); err != nil {
			return nil, err
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		chunk := (n + workers - 1) / workers
		for lo := 0; lo < n; lo += chunk {
			lo, hi := lo, lo+chunk
			if hi > n {
				hi = n
			}
			g.Go(func() error {
				return assignRange(gctx, data, centroids, dim, labels, lo, hi)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	clusters := make([]*roaring.Bitmap, k)
	for c := range clusters {
		clusters[c] = roaring.New()
	}
	for i, label := range labels {
		clusters[label].Add(uint32(i))
	}

	return &assignment{labels: labels, clusters: clusters}, nil
}

// assignRange labels the points in [lo, hi).
func assignRange(ctx context.Context, data, centroids []float32, dim int, labels []int, lo, hi int) error {
	k := len(centroids) / dim

	for i := lo; i < hi; i++ {
		if i%1024 == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		point := data[i*dim : (i+1)*dim]
		best := 0
		minDist := float32(math.MaxFloat32)

		for c := 0; c < k; c++ {
			d := distance.SquaredL2(point, centroids[c*dim:(c+1)*dim])
			if d < minDist {
				minDist = d
				best = c
			}
		}

		labels[i] = best
	}
	return nil
}
