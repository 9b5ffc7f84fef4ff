package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/debtmap/debtmap/pkg/observability"
)

// acceptanceSpanCount is the expected number of spans in the acceptance test
// (root + file + function).
const acceptanceSpanCount = 3

// acceptanceFileCount is the simulated file count used in log assertions.
const acceptanceFileCount = 42

// TestAcceptance_EndToEnd verifies all three observability signals (traces,
// metrics, structured logs with trace context) work together across a
// simulated analysis run.
func TestAcceptance_EndToEnd(t *testing.T) {
	t.Parallel()

	// Setup: in-memory trace exporter.
	spanExporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(spanExporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	tracer := tp.Tracer("debtmap")

	// Setup: in-memory metric reader.
	metricReader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(metricReader))
	meter := mp.Meter("debtmap")

	red, err := observability.NewREDMetrics(meter)
	require.NoError(t, err)

	analysis, err := observability.NewAnalysisMetrics(meter)
	require.NoError(t, err)

	// Setup: structured logger with trace context.
	var logBuf bytes.Buffer

	innerHandler := slog.NewJSONHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	tracingHandler := observability.NewTracingHandler(innerHandler, "debtmap", "test", observability.ModeCLI)
	logger := slog.New(tracingHandler)

	// Simulate an analysis run: root span, child spans, metrics, logs.
	ctx, rootSpan := tracer.Start(context.Background(), "debtmap.analyze")

	_, fileSpan := tracer.Start(ctx, "debtmap.parse_file")
	fileSpan.End()

	_, scoreSpan := tracer.Start(ctx, "debtmap.scorer.UnifiedScore")
	scoreSpan.End()

	// Record metrics within the trace context.
	red.RecordOperation(ctx, "cli.analyze", "ok", time.Second)

	analysis.RecordRun(ctx, observability.AnalysisStats{
		FilesAnalyzed:     acceptanceFileCount,
		ItemsScored:       3,
		ItemDurations:     []time.Duration{time.Second, 2 * time.Second, 3 * time.Second},
		ContextCacheHits:  100,
		ContextCacheMiss:  10,
		LookupCacheHits:   50,
		LookupCacheMisses: 5,
	})

	// Emit a log line within the trace context.
	logger.InfoContext(ctx, "analysis.complete", "files", acceptanceFileCount)

	rootSpan.End()

	// Assert: Traces.
	spans := spanExporter.GetSpans()
	require.Len(t, spans, acceptanceSpanCount, "expected root + 2 child spans")

	spanNames := make(map[string]bool, len(spans))
	for _, s := range spans {
		spanNames[s.Name] = true
	}

	assert.True(t, spanNames["debtmap.analyze"], "root span should exist")
	assert.True(t, spanNames["debtmap.parse_file"], "parse span should exist")
	assert.True(t, spanNames["debtmap.scorer.UnifiedScore"], "scorer span should exist")

	// All spans share the same trace ID.
	traceID := spans[0].SpanContext.TraceID()
	for _, s := range spans[1:] {
		assert.Equal(t, traceID, s.SpanContext.TraceID(),
			"span %q should share trace ID", s.Name)
	}

	// Assert: Metrics.
	var rm metricdata.ResourceMetrics

	err = metricReader.Collect(ctx, &rm)
	require.NoError(t, err)

	opsTotal := findMetric(rm, "debtmap.operations.total")
	require.NotNil(t, opsTotal, "operation counter should be recorded")

	opDuration := findMetric(rm, "debtmap.operation.duration.seconds")
	require.NotNil(t, opDuration, "duration histogram should be recorded")

	// Assert: Analysis metrics.
	filesTotal := findMetric(rm, "debtmap.analysis.files.total")
	require.NotNil(t, filesTotal, "analysis files counter should be recorded")

	itemsTotal := findMetric(rm, "debtmap.analysis.items.total")
	require.NotNil(t, itemsTotal, "analysis items counter should be recorded")

	itemDuration := findMetric(rm, "debtmap.analysis.item.duration.seconds")
	require.NotNil(t, itemDuration, "item duration histogram should be recorded")

	cacheHits := findMetric(rm, "debtmap.analysis.cache.hits.total")
	require.NotNil(t, cacheHits, "cache hits counter should be recorded")

	cacheMisses := findMetric(rm, "debtmap.analysis.cache.misses.total")
	require.NotNil(t, cacheMisses, "cache misses counter should be recorded")

	// Assert: Logs contain trace_id.
	var logRecord map[string]any

	err = json.Unmarshal(logBuf.Bytes(), &logRecord)
	require.NoError(t, err)

	assert.Equal(t, traceID.String(), logRecord["trace_id"],
		"log line should contain the active trace_id")
	assert.Contains(t, logRecord, "span_id",
		"log line should contain span_id")
	assert.Equal(t, "debtmap", logRecord["service"],
		"log line should contain service name")

	files, ok := logRecord["files"].(float64)
	require.True(t, ok, "files should be a number")
	assert.InDelta(t, acceptanceFileCount, files, 0,
		"log line should contain custom attributes")
}
