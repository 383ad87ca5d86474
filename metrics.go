package clustergo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordFit is called after each fit operation.
	// iterations is the number of completed iterations, converged reports
	// whether the cost stabilized before the iteration cap, duration is the
	// total time taken, err is nil if successful.
	RecordFit(iterations int, converged bool, duration time.Duration, err error)

	// RecordPredict is called after each predict or nearest-centroid
	// lookup on a trained model. Models loaded from a snapshot use a
	// NoopMetricsCollector.
	RecordPredict(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFit(int, bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordPredict(time.Duration, error)        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FitCount          atomic.Int64
	FitErrors         atomic.Int64
	FitCapped         atomic.Int64
	FitIterations     atomic.Int64
	FitTotalNanos     atomic.Int64
	PredictCount      atomic.Int64
	PredictErrors     atomic.Int64
	PredictTotalNanos atomic.Int64
}

func (c *BasicMetricsCollector) RecordFit(iterations int, converged bool, duration time.Duration, err error) {
	c.FitCount.Add(1)
	c.FitIterations.Add(int64(iterations))
	c.FitTotalNanos.Add(int64(duration))
	if err != nil {
		c.FitErrors.Add(1)
	} else if !converged {
		c.FitCapped.Add(1)
	}
}

func (c *BasicMetricsCollector) RecordPredict(duration time.Duration, err error) {
	c.PredictCount.Add(1)
	c.PredictTotalNanos.Add(int64(duration))
	if err != nil {
		c.PredictErrors.Add(1)
	}
}
