package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetrics counts sync runs and their record outcomes by kind
type SyncMetrics struct {
	runs       *Counter
	found      *Counter
	saved      *Counter
	duplicates *Counter
	errors     *Counter
	duration   *Histogram
}

// SyncRun is one finished run as seen by the metrics
type SyncRun struct {
	Kind       string
	Decoder    string
	Cause      string // empty when the transport succeeded
	Found      int
	Saved      int
	Duplicates int
	Errors     int
	Duration   time.Duration
}

// NewSyncMetrics registers the sync instruments on meter
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	m := &SyncMetrics{}
	var err error
	if m.runs, err = NewCounter(meter, "tallysync.runs", "Sync runs by kind and outcome", "{run}"); err != nil {
		return nil, err
	}
	if m.found, err = NewCounter(meter, "tallysync.records.found", "Records decoded from exports", "{record}"); err != nil {
		return nil, err
	}
	if m.saved, err = NewCounter(meter, "tallysync.records.saved", "Records inserted", "{record}"); err != nil {
		return nil, err
	}
	if m.duplicates, err = NewCounter(meter, "tallysync.records.duplicates", "Records already present", "{record}"); err != nil {
		return nil, err
	}
	if m.errors, err = NewCounter(meter, "tallysync.records.errors", "Records or runs that failed", "{record}"); err != nil {
		return nil, err
	}
	m.duration, err = NewHistogram(meter, "tallysync.run.duration", "Sync run duration", "s",
		0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRun adds one run to every instrument
func (m *SyncMetrics) RecordRun(ctx context.Context, run SyncRun) {
	if m == nil {
		return
	}
	kind := attribute.String("kind", run.Kind)
	outcome := "ok"
	if run.Cause != "" {
		outcome = run.Cause
	}

	m.runs.Inc(ctx, kind, attribute.String("outcome", outcome), attribute.String("decoder", run.Decoder))
	m.found.Add(ctx, int64(run.Found), kind)
	m.saved.Add(ctx, int64(run.Saved), kind)
	m.duplicates.Add(ctx, int64(run.Duplicates), kind)
	m.errors.Add(ctx, int64(run.Errors), kind)
	m.duration.RecordDuration(ctx, run.Duration, kind)
}
