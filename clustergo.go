package clustergo

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/time/rate"
)

// DefaultMaxIterations is the iteration cap used when WithMaxIterations is
// not set. Lloyd's algorithm with exact-equality convergence terminates on
// its own for virtually all inputs; the cap guards against cost sequences
// that oscillate at the bit level without ever repeating exactly.
const DefaultMaxIterations = 300

// KMeans is a k-means clustering engine.
//
// An engine is cheap to create and holds no data between fits. Fit calls on
// the same engine are serialized because they share one random source; for
// parallel fits create one engine per goroutine.
type KMeans struct {
	k             int
	maxIterations int
	tolerance     float64
	numWorkers    int
	logger        *Logger
	metrics       MetricsCollector
	progress      *rate.Limiter

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a k-means engine that partitions data into k clusters.
func New(k int, opts ...Option) (*KMeans, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}

	o := options{
		maxIterations: DefaultMaxIterations,
		numWorkers:    runtime.GOMAXPROCS(0),
		logger:        NoopLogger(),
		metrics:       NoopMetricsCollector{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	seed := o.seed
	if !o.seeded {
		seed = time.Now().UnixNano()
	}

	return &KMeans{
		k:             k,
		maxIterations: o.maxIterations,
		tolerance:     o.tolerance,
		numWorkers:    o.numWorkers,
		logger:        o.logger.WithK(k),
		metrics:       o.metrics,
		progress:      rate.NewLimiter(rate.Every(time.Second), 1),
		rng:           rand.New(rand.NewSource(seed)),
	}, nil
}

// Fit clusters the given points into k groups.
//
// Every row must have the same length. Fit runs Lloyd's algorithm: centroids
// are drawn uniformly from the data's bounding box, then refined by
// alternating assignment and mean updates until the cost of two consecutive
// iterations matches (exactly, or within the configured tolerance), or the
// iteration cap is reached. Clusters that end up with no points are re-seeded
// from a fresh bounding-box draw instead of being dropped.
//
// k may exceed the number of points; surplus centroids simply never receive
// points and are repeatedly re-seeded. The returned Model reports
// Converged() == false when the cap was hit, still carrying the best
// labeling found.
func (e *KMeans) Fit(ctx context.Context, points [][]float32) (*Model, error) {
	start := time.Now()

	model, err := e.fit(ctx, points)

	duration := time.Since(start)
	if err != nil {
		e.metrics.RecordFit(0, false, duration, err)
		e.logger.LogFit(ctx, 0, 0, false, err)
		return nil, err
	}

	model.duration = duration
	e.metrics.RecordFit(model.iterations, model.converged, duration, nil)
	e.logger.LogFit(ctx, model.iterations, model.Cost(), model.converged, nil)
	return model, nil
}

func (e *KMeans) fit(ctx context.Context, points [][]float32) (*Model, error) {
	data, dim, err := flatten(points)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	log := e.logger.WithDimension(dim).WithCount(len(points))

	centroids := initCentroids(data, dim, e.k, e.rng)

	var (
		asg     *assignment
		history []float64
	)

	converged := false
	iterations := 0

	for iter := 0; iter < e.maxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		asg, err = assignStep(ctx, data, centroids, dim, e.numWorkers)
		if err != nil {
			return nil, err
		}

		centroids = updateStep(data, asg, dim, e.rng)

		cost := costOf(data, asg.labels, centroids, dim)
		history = append(history, cost)
		iterations++

		if e.progress.Allow() {
			log.Debug("iteration completed",
				"iteration", iterations,
				"cost", cost,
			)
		}

		// Convergence is never checked before two completed iterations.
		if len(history) >= 2 && e.stable(history[len(history)-2], cost) {
			converged = true
			break
		}
	}

	return &Model{
		k:          e.k,
		dim:        dim,
		centroids:  centroids,
		labels:     asg.labels,
		clusters:   asg.clusters,
		history:    history,
		iterations: iterations,
		converged:  converged,
		metrics:    e.metrics,
	}, nil
}

// stable reports whether two consecutive costs count as converged.
func (e *KMeans) stable(prev, cur float64) bool {
	if e.tolerance == 0 {
		return cur == prev
	}
	delta := cur - prev
	if delta < 0 {
		delta = -delta
	}
	return delta <= e.tolerance
}

// flatten validates the dataset and packs it into a contiguous m*n slice.
func flatten(points [][]float32) ([]float32, int, error) {
	if len(points) == 0 {
		return nil, 0, ErrEmptyDataset
	}

	dim := len(points[0])
	if dim == 0 {
		return nil, 0, ErrZeroDimension
	}

	data := make([]float32, 0, len(points)*dim)
	for _, p := range points {
		if len(p) != dim {
			return nil, 0, &ErrDimensionMismatch{Expected: dim, Actual: len(p)}
		}
		data = append(data, p...)
	}
	return data, dim, nil
}

// Model is the result of a fit: the trained centroids, the final labeling
// and per-iteration cost history.
//
// A Model is immutable and safe for concurrent use.
type Model struct {
	k   int
	dim int

	centroids []float32 // k*dim, flat
	labels    []int     // nil for models loaded from a snapshot
	clusters  []*roaring.Bitmap
	history   []float64

	iterations int
	converged  bool
	duration   time.Duration

	metrics MetricsCollector
}

// K returns the number of clusters.
func (m *Model) K() int { return m.k }

// Dimension returns the point dimensionality.
func (m *Model) Dimension() int { return m.dim }

// Labels returns the cluster id of every training point, in input order.
// Returns nil for models loaded from a snapshot (snapshots carry centroids,
// not the training assignment).
func (m *Model) Labels() []int {
	if m.labels == nil {
		return nil
	}
	labels := make([]int, len(m.labels))
	copy(labels, m.labels)
	return labels
}

// Centroids returns the trained centroids, one row per cluster.
func (m *Model) Centroids() [][]float32 {
	centroids := make([][]float32, m.k)
	for i := range centroids {
		centroids[i] = m.Centroid(i)
	}
	return centroids
}

// Centroid returns a copy of the centroid for cluster i.
func (m *Model) Centroid(i int) []float32 {
	c := make([]float32, m.dim)
	copy(c, m.centroids[i*m.dim:(i+1)*m.dim])
	return c
}

// Cost returns the final clustering cost: the Euclidean norm of the full
// point-minus-assigned-centroid residual matrix. Zero for models loaded
// from a snapshot without history.
func (m *Model) Cost() float64 {
	if len(m.history) == 0 {
		return 0
	}
	return m.history[len(m.history)-1]
}

// CostHistory returns the cost of every completed iteration in order.
func (m *Model) CostHistory() []float64 {
	history := make([]float64, len(m.history))
	copy(history, m.history)
	return history
}

// Iterations returns the number of completed iterations.
func (m *Model) Iterations() int { return m.iterations }

// Converged reports whether the cost stabilized before the iteration cap.
func (m *Model) Converged() bool { return m.converged }

// Duration returns the wall-clock time the fit took.
func (m *Model) Duration() time.Duration { return m.duration }

// ClusterMembers returns the training point indices assigned to cluster i
// as a bitmap. Returns nil for models loaded from a snapshot.
func (m *Model) ClusterMembers(i int) *roaring.Bitmap {
	if m.clusters == nil {
		return nil
	}
	return m.clusters[i].Clone()
}

// Sizes returns the number of training points per cluster.
// Returns nil for models loaded from a snapshot.
func (m *Model) Sizes() []int {
	if m.clusters == nil {
		return nil
	}
	sizes := make([]int, m.k)
	for i, c := range m.clusters {
		sizes[i] = int(c.GetCardinality())
	}
	return sizes
}
