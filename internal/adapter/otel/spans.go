package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "codelore"

// StartFileSpan starts a span for a single-file analysis.
func StartFileSpan(ctx context.Context, filePath string, force bool) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "analyze_file",
		trace.WithAttributes(
			attribute.String("file.path", filePath),
			attribute.Bool("analysis.force", force),
		),
	)
}

// StartCodebaseSpan starts a span for a codebase analysis batch.
func StartCodebaseSpan(ctx context.Context, codebaseID string, incremental bool) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "analyze_codebase",
		trace.WithAttributes(
			attribute.String("codebase.id", codebaseID),
			attribute.Bool("analysis.incremental", incremental),
		),
	)
}

// StartScanSpan starts a span for a codebase scan.
func StartScanSpan(ctx context.Context, root string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "scan_codebase",
		trace.WithAttributes(attribute.String("scan.root", root)),
	)
}
