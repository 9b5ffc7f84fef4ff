package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
)

// allowedPrefixes are attribute key prefixes that pass through the filter.
// Any key starting with one of these prefixes is allowed.
var allowedPrefixes = []string{
	"debtmap.",
	"error.",
	"analysis.",
	"analyzer.",
	"callgraph.",
	"coverage.",
	"scoring.",
	"validation.",
	"file.",
	"function.",
	"init.",
	"op",
	"cache",
	"worker_index",
	"stall_count",
	"stack",
	"hits",
	"misses",
}

// blockedPrefixes are attribute key prefixes that are always stripped.
var blockedPrefixes = []string{
	"source.",
	"env.",
}

// blockedKeys are exact attribute keys that are always stripped. debtmap
// never sends request/response bodies, but a source snippet or environment
// variable dump could slip into a span by mistake; keep the allow-list
// defense-in-depth regardless.
var blockedKeys = map[string]bool{
	"source.snippet": true,
	"env.value":      true,
}

// attributeFilter is a SpanProcessor that strips blocked/unknown attributes
// before forwarding to a delegate processor. It enforces an allow-list to
// prevent PII and high-cardinality data from reaching the exporter.
type attributeFilter struct {
	delegate sdktrace.SpanProcessor
	logger   *slog.Logger
}

// NewAttributeFilter returns a SpanProcessor that filters span attributes.
// Keys with an allowed prefix pass through; blocked keys (source.*, env.*)
// and keys matching no allowed prefix are stripped. When logger is non-nil,
// stripped attributes are logged as warnings (Init passes one when
// DebugTrace is set).
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{delegate: delegate, logger: logger}
}

// OnStart delegates to the wrapped processor.
func (f *attributeFilter) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	f.delegate.OnStart(parent, s)
}

// OnEnd filters attributes, then delegates to the wrapped processor.
func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	// ReadOnlySpan attributes cannot be mutated; wrap with filtered view.
	f.delegate.OnEnd(&filteredSpan{ReadOnlySpan: s, filter: f})
}

// Shutdown delegates to the wrapped processor.
func (f *attributeFilter) Shutdown(ctx context.Context) error {
	err := f.delegate.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter shutdown: %w", err)
	}

	return nil
}

// ForceFlush delegates to the wrapped processor.
func (f *attributeFilter) ForceFlush(ctx context.Context) error {
	err := f.delegate.ForceFlush(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter flush: %w", err)
	}

	return nil
}

func (f *attributeFilter) isAllowed(key string) bool {
	if blockedKeys[key] {
		f.warn(key)

		return false
	}

	for _, prefix := range blockedPrefixes {
		if strings.HasPrefix(key, prefix) {
			f.warn(key)

			return false
		}
	}

	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}

		if key == prefix {
			return true
		}
	}

	// Allow OTel semantic convention keys (e.g. "error", "service.name").
	if key == "error" {
		return true
	}

	f.warn(key)

	return false
}

func (f *attributeFilter) warn(key string) {
	if f.logger != nil {
		f.logger.Warn("attribute blocked by filter", "key", key)
	}
}

// filteredSpan wraps a ReadOnlySpan and returns only allowed attributes.
type filteredSpan struct {
	sdktrace.ReadOnlySpan

	filter *attributeFilter
}

// Attributes returns only the allowed attributes.
func (s *filteredSpan) Attributes() []attribute.KeyValue {
	orig := s.ReadOnlySpan.Attributes()
	filtered := make([]attribute.KeyValue, 0, len(orig))

	for _, kv := range orig {
		if s.filter.isAllowed(string(kv.Key)) {
			filtered = append(filtered, kv)
		}
	}

	return filtered
}

// verboseSpanPrefixes names span prefixes considered hot-path: one span per
// file or per function, rather than one per analysis phase. These are only
// kept when TraceVerbose is set, since a multi-thousand-function repository
// would otherwise produce a span volume proportional to item count.
var verboseSpanPrefixes = []string{
	"score_function",
	"parse_file",
	"build_node",
}

// filteringTracerProvider drops hot-path spans unless verbose tracing was
// requested, while always letting phase-level spans (analyze, build_graph,
// validate) through.
type filteringTracerProvider struct {
	embedded.TracerProvider

	delegate trace.TracerProvider
}

// NewFilteringTracerProvider wraps delegate so that Tracer() returns tracers
// whose hot-path spans are no-ops, keeping export volume proportional to
// repository phases rather than per-function item count.
func NewFilteringTracerProvider(delegate trace.TracerProvider) trace.TracerProvider {
	return &filteringTracerProvider{delegate: delegate}
}

func (p *filteringTracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return &filteringTracer{delegate: p.delegate.Tracer(name, opts...)}
}

type filteringTracer struct {
	embedded.Tracer

	delegate trace.Tracer
}

func (t *filteringTracer) Start(
	ctx context.Context, spanName string, opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	for _, prefix := range verboseSpanPrefixes {
		if strings.HasPrefix(spanName, prefix) {
			return ctx, trace.SpanFromContext(ctx)
		}
	}

	return t.delegate.Start(ctx, spanName, opts...)
}
