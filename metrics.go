package sparsego

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordConversion is called after each format conversion attempt.
	// ok is false when the target format refused the pattern.
	RecordConversion(from, to string, d time.Duration, ok bool)

	// RecordSpMV is called after each matrix-vector product.
	RecordSpMV(format string, d time.Duration)

	// RecordSolve is called after each solver run.
	RecordSolve(iterations int, residual float64, d time.Duration)

	// RecordTransfer is called after each bulk data movement.
	RecordTransfer(bytes int64, d time.Duration)
}

// NoopMetrics is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetrics struct{}

func (NoopMetrics) RecordConversion(string, string, time.Duration, bool) {}
func (NoopMetrics) RecordSpMV(string, time.Duration)                     {}
func (NoopMetrics) RecordSolve(int, float64, time.Duration)              {}
func (NoopMetrics) RecordTransfer(int64, time.Duration)                  {}

// BasicMetrics provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetrics struct {
	ConversionCount    atomic.Int64
	ConversionRefusals atomic.Int64
	SpMVCount          atomic.Int64
	SpMVTotalNanos     atomic.Int64
	SolveCount         atomic.Int64
	SolveIterations    atomic.Int64
	SolveTotalNanos    atomic.Int64
	TransferCount      atomic.Int64
	TransferBytes      atomic.Int64
}

// RecordConversion implements MetricsCollector.
func (b *BasicMetrics) RecordConversion(_, _ string, _ time.Duration, ok bool) {
	b.ConversionCount.Add(1)
	if !ok {
		b.ConversionRefusals.Add(1)
	}
}

// RecordSpMV implements MetricsCollector.
func (b *BasicMetrics) RecordSpMV(_ string, d time.Duration) {
	b.SpMVCount.Add(1)
	b.SpMVTotalNanos.Add(d.Nanoseconds())
}

// RecordSolve implements MetricsCollector.
func (b *BasicMetrics) RecordSolve(iterations int, _ float64, d time.Duration) {
	b.SolveCount.Add(1)
	b.SolveIterations.Add(int64(iterations))
	b.SolveTotalNanos.Add(d.Nanoseconds())
}

// RecordTransfer implements MetricsCollector.
func (b *BasicMetrics) RecordTransfer(bytes int64, _ time.Duration) {
	b.TransferCount.Add(1)
	b.TransferBytes.Add(bytes)
}

// Stats returns a snapshot of current metrics.
func (b *BasicMetrics) Stats() BasicMetricsStats {
	return BasicMetricsStats{
		ConversionCount:    b.ConversionCount.Load(),
		ConversionRefusals: b.ConversionRefusals.Load(),
		SpMVCount:          b.SpMVCount.Load(),
		SpMVAvgNanos:       avg(b.SpMVTotalNanos.Load(), b.SpMVCount.Load()),
		SolveCount:         b.SolveCount.Load(),
		SolveIterations:    b.SolveIterations.Load(),
		SolveAvgNanos:      avg(b.SolveTotalNanos.Load(), b.SolveCount.Load()),
		TransferCount:      b.TransferCount.Load(),
		TransferBytes:      b.TransferBytes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetrics state.
type BasicMetricsStats struct {
	ConversionCount    int64
	ConversionRefusals int64
	SpMVCount          int64
	SpMVAvgNanos       int64
	SolveCount         int64
	SolveIterations    int64
	SolveAvgNanos      int64
	TransferCount      int64
	TransferBytes      int64
}
