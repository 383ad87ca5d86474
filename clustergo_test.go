package clustergo

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fourCorners is two tight pairs on the x axis: the global optimum groups
// {(0,0),(0,1)} and {(10,0),(10,1)} with both centroids at y=0.5, leaving
// every point 0.5 from its centroid. The residual-matrix norm is then
// sqrt(4*0.25) = 1.
var fourCorners = [][]float32{
	{0, 0}, {0, 1},
	{10, 0}, {10, 1},
}

func TestFit_TwoClusters(t *testing.T) {
	model := fitTwoClusters(t)

	labels := model.Labels()
	require.Len(t, labels, 4)
	assert.Equal(t, labels[0], labels[1])
	assert.Equal(t, labels[2], labels[3])
	assert.NotEqual(t, labels[0], labels[2])

	assert.True(t, model.Converged())
	assert.InDelta(t, 1.0, model.Cost(), 1e-6)
	assert.Equal(t, []int{2, 2}, model.Sizes())

	// Centroids sit at the pair midpoints.
	for _, c := range model.Centroids() {
		assert.InDelta(t, 0.5, c[1], 1e-6)
	}
}

func TestFit_SinglePoint(t *testing.T) {
	km, err := New(1, WithRandomSeed(1))
	require.NoError(t, err)

	model, err := km.Fit(context.Background(), [][]float32{{3, -7, 2}})
	require.NoError(t, err)

	assert.True(t, model.Converged())
	assert.Equal(t, []int{0}, model.Labels())
	assert.Equal(t, float64(0), model.Cost())
	// Cost equality requires two completed iterations.
	assert.Equal(t, 2, model.Iterations())
	assert.InDeltaSlice(t, []float32{3, -7, 2}, model.Centroid(0), 1e-6)
}

func TestFit_KEqualsM(t *testing.T) {
	ctx := context.Background()
	points := [][]float32{
		{0, 0}, {10, 0}, {0, 10}, {10, 10},
	}

	var model *Model
	for seed := int64(0); seed < 64; seed++ {
		km, err := New(4, WithRandomSeed(seed))
		require.NoError(t, err)

		m, err := km.Fit(ctx, points)
		require.NoError(t, err)

		if m.Cost() == 0 {
			model = m
			break
		}
	}
	require.NotNil(t, model, "no seed gave every point its own centroid")

	assert.True(t, model.Converged())
	assert.Equal(t, []int{1, 1, 1, 1}, model.Sizes())

	// Labels are a permutation of the cluster ids.
	seen := make(map[int]bool)
	for _, l := range model.Labels() {
		assert.GreaterOrEqual(t, l, 0)
		assert.Less(t, l, 4)
		seen[l] = true
	}
	assert.Len(t, seen, 4)
}

func TestFit_KGreaterThanM(t *testing.T) {
	km, err := New(5, WithRandomSeed(7))
	require.NoError(t, err)

	model, err := km.Fit(context.Background(), [][]float32{{1, 2}, {3, 4}})
	require.NoError(t, err)

	labels := model.Labels()
	require.Len(t, labels, 2)
	for _, l := range labels {
		assert.GreaterOrEqual(t, l, 0)
		assert.Less(t, l, 5)
	}

	// Empty-cluster recovery must never leak NaN/Inf into the centroids.
	for _, c := range model.Centroids() {
		for _, v := range c {
			assert.False(t, math.IsNaN(float64(v)))
			assert.False(t, math.IsInf(float64(v), 0))
		}
	}
}

func TestFit_Determinism(t *testing.T) {
	ctx := context.Background()
	points := testBlobs(200, 3)

	run := func() []int {
		km, err := New(4, WithRandomSeed(99))
		require.NoError(t, err)
		model, err := km.Fit(ctx, points)
		require.NoError(t, err)
		return model.Labels()
	}

	assert.Equal(t, run(), run())
}

func TestFit_CostNonIncreasing(t *testing.T) {
	km, err := New(5, WithRandomSeed(42))
	require.NoError(t, err)

	model, err := km.Fit(context.Background(), testBlobs(300, 4))
	require.NoError(t, err)

	history := model.CostHistory()
	require.NotEmpty(t, history)
	for i := 1; i < len(history); i++ {
		assert.LessOrEqual(t, history[i], history[i-1]+1e-9,
			"cost increased at iteration %d", i)
	}
	assert.Equal(t, model.Cost(), history[len(history)-1])
}

func TestFit_IterationCap(t *testing.T) {
	// A single iteration can never satisfy the two-iteration convergence
	// check, so the cap path is taken deterministically.
	km, err := New(2, WithRandomSeed(3), WithMaxIterations(1))
	require.NoError(t, err)

	model, err := km.Fit(context.Background(), fourCorners)
	require.NoError(t, err)

	assert.False(t, model.Converged())
	assert.Equal(t, 1, model.Iterations())
	assert.Len(t, model.Labels(), 4)
	assert.Len(t, model.CostHistory(), 1)
}

func TestFit_Tolerance(t *testing.T) {
	km, err := New(3, WithRandomSeed(5), WithTolerance(1e-9))
	require.NoError(t, err)

	model, err := km.Fit(context.Background(), testBlobs(100, 2))
	require.NoError(t, err)
	assert.True(t, model.Converged())
}

func TestFit_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	km, err := New(10, WithRandomSeed(1))
	require.NoError(t, err)

	_, err = km.Fit(ctx, testBlobs(1000, 2))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFit_InvalidInput(t *testing.T) {
	ctx := context.Background()

	t.Run("InvalidK", func(t *testing.T) {
		_, err := New(0)
		assert.ErrorIs(t, err, ErrInvalidK)
	})

	t.Run("EmptyDataset", func(t *testing.T) {
		km, err := New(2)
		require.NoError(t, err)
		_, err = km.Fit(ctx, nil)
		assert.ErrorIs(t, err, ErrEmptyDataset)
	})

	t.Run("ZeroDimension", func(t *testing.T) {
		km, err := New(2)
		require.NoError(t, err)
		_, err = km.Fit(ctx, [][]float32{{}})
		assert.ErrorIs(t, err, ErrZeroDimension)
	})

	t.Run("RaggedRows", func(t *testing.T) {
		km, err := New(2)
		require.NoError(t, err)
		_, err = km.Fit(ctx, [][]float32{{1, 2}, {1, 2, 3}})

		var mismatch *ErrDimensionMismatch
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, 2, mismatch.Expected)
		assert.Equal(t, 3, mismatch.Actual)
	})
}

func TestFit_ConvergedStateIsFixedPoint(t *testing.T) {
	ctx := context.Background()
	model := fitTwoClusters(t)
	require.True(t, model.Converged())

	// Re-running assignment and update on the converged centroids must
	// reproduce them, and the cost must not move. Both clusters are
	// non-empty, so the update draws no randomness.
	data, dim, err := flatten(fourCorners)
	require.NoError(t, err)

	asg, err := assignStep(ctx, data, model.centroids, dim, 1)
	require.NoError(t, err)
	assert.Equal(t, model.labels, asg.labels)

	next := updateStep(data, asg, dim, rand.New(rand.NewSource(0)))
	for i := range next {
		assert.InDelta(t, model.centroids[i], next[i], 1e-6)
	}

	assert.Equal(t, model.Cost(), costOf(data, asg.labels, next, dim))
}

func TestModel_Accessors(t *testing.T) {
	km, err := New(2, WithRandomSeed(8))
	require.NoError(t, err)

	model, err := km.Fit(context.Background(), fourCorners)
	require.NoError(t, err)

	assert.Equal(t, 2, model.K())
	assert.Equal(t, 2, model.Dimension())
	assert.Positive(t, model.Duration())

	// Accessors return copies: mutating them must not affect the model.
	labels := model.Labels()
	labels[0] = 999
	assert.NotEqual(t, 999, model.Labels()[0])

	c := model.Centroid(0)
	c[0] = 12345
	assert.NotEqual(t, float32(12345), model.Centroid(0)[0])

	members := model.ClusterMembers(0)
	require.NotNil(t, members)
	members.Add(4096)
	assert.False(t, model.ClusterMembers(0).Contains(4096))

	total := 0
	for _, size := range model.Sizes() {
		total += size
	}
	assert.Equal(t, 4, total)
}

func TestMetrics(t *testing.T) {
	mc := &BasicMetricsCollector{}
	km, err := New(2, WithRandomSeed(8), WithMetricsCollector(mc))
	require.NoError(t, err)

	model, err := km.Fit(context.Background(), fourCorners)
	require.NoError(t, err)

	assert.Equal(t, int64(1), mc.FitCount.Load())
	assert.Equal(t, int64(0), mc.FitErrors.Load())
	assert.Positive(t, mc.FitTotalNanos.Load())

	_, err = km.Fit(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, int64(1), mc.FitErrors.Load())

	// The model records predicts against the engine's collector.
	_, err = model.Predict([]float32{0, 0})
	require.NoError(t, err)
	assert.Equal(t, int64(1), mc.PredictCount.Load())
	assert.Equal(t, int64(0), mc.PredictErrors.Load())

	_, err = model.Predict([]float32{0})
	require.Error(t, err)
	assert.Equal(t, int64(2), mc.PredictCount.Load())
	assert.Equal(t, int64(1), mc.PredictErrors.Load())

	_, err = model.NearestCentroids([]float32{0, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), mc.PredictCount.Load())
}

// testBlobs generates a deterministic dataset of n points spread over a few
// well-separated blobs. It avoids a shared random source so tests stay
// reproducible.
func testBlobs(n, dim int) [][]float32 {
	centers := []float32{0, 50, 100, -50}
	points := make([][]float32, n)
	for i := range points {
		p := make([]float32, dim)
		center := centers[i%len(centers)]
		for d := range p {
			// Deterministic jitter in [0, 4).
			p[d] = center + float32((i*31+d*17)%64)/16
		}
		points[i] = p
	}
	return points
}
