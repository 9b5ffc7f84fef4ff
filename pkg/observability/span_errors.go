package observability

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Error type classification constants per OTel semantic conventions.
const (
	ErrTypeTimeout               = "timeout"
	ErrTypeCancel                = "cancel"
	ErrTypeValidation            = "validation"
	ErrTypeDependencyUnavailable = "dependency_unavailable"
	ErrTypeInternal              = "internal"
)

// Error source classification constants.
const (
	ErrSourceAnalyzer = "analyzer"
	ErrSourceProvider = "provider"
	ErrSourceConfig   = "config"
)

// RecordSpanError records an error on a span with structured classification
// attributes (error.type and optionally error.source), used by the
// orchestrator and analyzers to annotate the diagnostics kinds of spec §7
// (ParseFailure, CoverageParseError, ProviderError, LookupAmbiguous,
// GraphInvariant) on the active span.
func RecordSpanError(span trace.Span, err error, errType, errSource string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	attrs := []attribute.KeyValue{
		attribute.String("error.type", errType),
	}

	if errSource != "" {
		attrs = append(attrs, attribute.String("error.source", errSource))
	}

	span.SetAttributes(attrs...)
}
