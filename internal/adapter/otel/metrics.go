package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "codelore"

// Metrics holds all codelore metric instruments.
type Metrics struct {
	AnalysesStarted   metric.Int64Counter
	AnalysesCompleted metric.Int64Counter
	AnalysesFailed    metric.Int64Counter
	CacheHits         metric.Int64Counter
	CacheMisses       metric.Int64Counter
	FilesReused       metric.Int64Counter
	BatchDuration     metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.AnalysesStarted, err = meter.Int64Counter("codelore.analyses.started",
		metric.WithDescription("Number of file analyses started"))
	if err != nil {
		return nil, err
	}

	m.AnalysesCompleted, err = meter.Int64Counter("codelore.analyses.completed",
		metric.WithDescription("Number of file analyses completed"))
	if err != nil {
		return nil, err
	}

	m.AnalysesFailed, err = meter.Int64Counter("codelore.analyses.failed",
		metric.WithDescription("Number of file analyses failed"))
	if err != nil {
		return nil, err
	}

	m.CacheHits, err = meter.Int64Counter("codelore.cache.hits",
		metric.WithDescription("Number of content-addressed cache hits"))
	if err != nil {
		return nil, err
	}

	m.CacheMisses, err = meter.Int64Counter("codelore.cache.misses",
		metric.WithDescription("Number of content-addressed cache misses"))
	if err != nil {
		return nil, err
	}

	m.FilesReused, err = meter.Int64Counter("codelore.files.reused",
		metric.WithDescription("Number of unchanged files reused from the previous run"))
	if err != nil {
		return nil, err
	}

	m.BatchDuration, err = meter.Float64Histogram("codelore.batch.duration_seconds",
		metric.WithDescription("Codebase analysis batch duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
