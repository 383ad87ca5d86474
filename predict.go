package clustergo

import (
	"math"
	"sort"
	"time"

	"github.com/hupe1980/clustergo/distance"
)

// Predict returns the id of the centroid nearest to vec under squared L2
// distance, with ties going to the lowest-indexed centroid.
func (m *Model) Predict(vec []float32) (int, error) {
	start := time.Now()

	if len(vec) != m.dim {
		err := &ErrDimensionMismatch{Expected: m.dim, Actual: len(vec)}
		m.metrics.RecordPredict(time.Since(start), err)
		return -1, err
	}

	best := 0
	minDist := float32(math.MaxFloat32)
	for c := 0; c < m.k; c++ {
		d := distance.SquaredL2(vec, m.centroids[c*m.dim:(c+1)*m.dim])
		if d < minDist {
			minDist = d
			best = c
		}
	}

	m.metrics.RecordPredict(time.Since(start), nil)
	return best, nil
}

type centroidDist struct {
	id   int
	dist float32
}

// NearestCentroids returns the ids of the n centroids closest to query,
// nearest first. n is capped at the number of clusters.
func (m *Model) NearestCentroids(query []float32, n int) ([]int, error) {
	start := time.Now()

	if len(query) != m.dim {
		err := &ErrDimensionMismatch{Expected: m.dim, Actual: len(query)}
		m.metrics.RecordPredict(time.Since(start), err)
		return nil, err
	}
	if n > m.k {
		n = m.k
	}
	if n <= 0 {
		m.metrics.RecordPredict(time.Since(start), nil)
		return nil, nil
	}

	dists := make([]centroidDist, m.k)
	for c := 0; c < m.k; c++ {
		d := distance.SquaredL2(query, m.centroids[c*m.dim:(c+1)*m.dim])
		dists[c] = centroidDist{id: c, dist: d}
	}

	sort.Slice(dists, func(i, j int) bool {
		return dists[i].dist < dists[j].dist
	})

	result := make([]int, n)
	for i := 0; i < n; i++ {
		result[i] = dists[i].id
	}

	m.metrics.RecordPredict(time.Since(start), nil)
	return result, nil
}
