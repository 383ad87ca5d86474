package clustergo

type options struct {
	maxIterations int
	tolerance     float64
	numWorkers    int
	seed          int64
	seeded        bool
	logger        *Logger
	metrics       MetricsCollector
}

// Option configures a KMeans engine.
type Option func(*options)

// WithMaxIterations sets the iteration cap for Fit.
// A fit that reaches the cap without the cost stabilizing still returns a
// Model; check Model.Converged to tell the two outcomes apart.
//
// If n <= 0, DefaultMaxIterations is used.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithRandomSeed seeds the random source used for centroid initialization
// and empty-cluster recovery. Two fits with the same seed on identical
// input produce identical labelings.
//
// Without this option the engine is seeded from the wall clock.
func WithRandomSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithTolerance sets the convergence tolerance: the fit stops when the
// absolute cost delta between two consecutive iterations is at most eps.
//
// The default (eps = 0) requires exact floating-point cost equality,
// matching the classic reference loop bit for bit.
func WithTolerance(eps float64) Option {
	return func(o *options) {
		if eps > 0 {
			o.tolerance = eps
		}
	}
}

// WithNumWorkers sets the number of goroutines used for the assignment
// step. Defaults to GOMAXPROCS. The result is identical regardless of
// worker count; only throughput changes.
func WithNumWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.numWorkers = n
		}
	}
}

// WithLogger configures structured logging. If nil is passed, logging is
// disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures operational metrics collection.
// If nil is passed, NoopMetricsCollector is used.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}
