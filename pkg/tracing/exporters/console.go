package exporters

import (
	"context"

	"go.opentelemetry.io/otel/sdk/trace"
)

// NoopExporter drops all spans. Used when tracing export is disabled.
type NoopExporter struct{}

func (c *NoopExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (c *NoopExporter) Shutdown(ctx context.Context) error {
	return nil
}
