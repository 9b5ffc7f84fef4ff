// Package observability provides OpenTelemetry-based tracing, metrics, and
// structured logging for debtmap's CLI and library entry points.
package observability

import "log/slog"

// AppMode identifies how debtmap was invoked.
type AppMode string

const (
	// ModeCLI is a single-shot `debtmap analyze`/`validate`/`lookup` run.
	ModeCLI AppMode = "cli"
	// ModeLibrary is an embedding program driving debtmap as a library.
	ModeLibrary AppMode = "library"
)

const (
	defaultServiceName       = "debtmap"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the semantic version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment (e.g. "ci", "local").
	Environment string

	// Mode identifies how the binary was launched.
	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address for traces (e.g.
	// "localhost:4317"). Empty disables trace export; the tracer becomes
	// a no-op.
	OTLPEndpoint string

	// OTLPHeaders are additional gRPC metadata headers for the OTLP
	// trace exporter.
	OTLPHeaders map[string]string

	// OTLPInsecure disables TLS for the OTLP gRPC connection.
	OTLPInsecure bool

	// DebugTrace forces 100% trace sampling when true.
	DebugTrace bool

	// SampleRatio is the trace sampling ratio (0.0 to 1.0) when
	// DebugTrace is false. Zero uses the SDK default.
	SampleRatio float64

	// TraceVerbose enables hot-path spans (per-file, per-function scoring).
	// When false, the filtering tracer provider drops those spans to keep export
	// volume proportional to repository phases rather than item count.
	TraceVerbose bool

	// LogLevel controls the minimum slog severity.
	LogLevel slog.Level

	// LogJSON enables JSON-formatted log output.
	LogJSON bool

	// PrometheusAddr, when non-empty, serves a pull-based /metrics
	// endpoint at this address for the run's duration (e.g.
	// "localhost:9090"). Empty disables Prometheus export.
	PrometheusAddr string

	// ShutdownTimeoutSec is the maximum seconds to wait for flush on shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config with sensible defaults for zero-config runs.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
