package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricOpsTotal     = "debtmap.operations.total"
	metricOpDuration   = "debtmap.operation.duration.seconds"
	metricErrorsTotal  = "debtmap.errors.total"
	metricInflightOps  = "debtmap.inflight.operations"

	attrOp     = "op"
	attrStatus = "status"

	statusError = "error"
)

// durationBucketBoundaries covers 1ms to 300s, spanning a single function's
// complexity pass up through a whole-repository parallel analysis run.
var durationBucketBoundaries = []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}

// REDMetrics holds the OTel instruments for Rate, Error, Duration metrics
// applied to debtmap's per-file and per-phase analysis operations (parse,
// call-graph build, score, validate).
type REDMetrics struct {
	opsTotal    metric.Int64Counter
	opDuration  metric.Float64Histogram
	errorsTotal metric.Int64Counter
	inflightOps metric.Int64UpDownCounter
}

// NewREDMetrics creates RED metric instruments from the given meter.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	opsTotal, err := mt.Int64Counter(metricOpsTotal,
		metric.WithDescription("Total number of analysis operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricOpsTotal, err)
	}

	opDuration, err := mt.Float64Histogram(metricOpDuration,
		metric.WithDescription("Analysis operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricOpDuration, err)
	}

	errTotal, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of analysis errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	inflight, err := mt.Int64UpDownCounter(metricInflightOps,
		metric.WithDescription("Number of in-flight analysis operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInflightOps, err)
	}

	return &REDMetrics{
		opsTotal:    opsTotal,
		opDuration:  opDuration,
		errorsTotal: errTotal,
		inflightOps: inflight,
	}, nil
}

// RecordOperation records a completed operation (e.g. "parse_file",
// "build_call_graph", "score_function") with its status and duration.
func (rm *REDMetrics) RecordOperation(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	rm.opsTotal.Add(ctx, 1, attrs)
	rm.opDuration.Record(ctx, duration.Seconds(), attrs)

	if status == statusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String(attrOp, op),
		))
	}
}

// TrackInflight increments the in-flight gauge for op and returns a function
// to decrement it; intended to be deferred around one worker's unit of work.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightOps.Add(ctx, 1, attrs)

	return func() {
		rm.inflightOps.Add(ctx, -1, attrs)
	}
}
