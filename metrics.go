package redimap

import (
	"sync"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    opCounter  *prometheus.CounterVec
//	    opDuration *prometheus.HistogramVec
//	}
//
//	func (p *PrometheusCollector) RecordOperation(op string, duration time.Duration, err error) {
//	    p.opCounter.WithLabelValues(op).Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordOperation is called after each map operation. op is the
	// operation name (e.g. "get", "put", "clear"), duration the total
	// time taken, err is nil on success.
	RecordOperation(op string, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOperation(string, time.Duration, error) {}

// OperationStats aggregates the recordings for one operation kind.
type OperationStats struct {
	Count      int64
	Errors     int64
	TotalNanos int64
}

// BasicMetricsCollector provides simple in-memory metrics collection,
// keyed by operation name. Useful for debugging and basic monitoring
// without external dependencies. Safe for concurrent use.
type BasicMetricsCollector struct {
	mu    sync.Mutex
	stats map[string]*OperationStats
}

// NewBasicMetricsCollector creates an empty collector.
func NewBasicMetricsCollector() *BasicMetricsCollector {
	return &BasicMetricsCollector{
		stats: make(map[string]*OperationStats),
	}
}

// RecordOperation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOperation(op string, duration time.Duration, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.stats[op]
	if !ok {
		s = &OperationStats{}
		b.stats[op] = s
	}

	s.Count++
	s.TotalNanos += duration.Nanoseconds()
	if err != nil {
		s.Errors++
	}
}

// Stats returns a copy of the aggregates for op.
func (b *BasicMetricsCollector) Stats(op string) OperationStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.stats[op]; ok {
		return *s
	}
	return OperationStats{}
}
