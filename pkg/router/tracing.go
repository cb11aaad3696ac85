package router

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "github.com/vango-dev/fsroute/pkg/router"

// spanLoad is the name of the span wrapping every scan.
const spanLoad = "router.Load"

func defaultTracer() trace.Tracer {
	return otel.Tracer(defaultTracerName)
}

func (l *Loader) startSpan(ctx context.Context) (context.Context, trace.Span) {
	return l.tracer.Start(ctx, spanLoad,
		trace.WithAttributes(
			attribute.String("fsroute.framework", string(l.framework)),
			attribute.String("fsroute.root", l.root),
		),
	)
}

func endSpan(span trace.Span, report *Report, err error) {
	span.SetAttributes(
		attribute.Int("fsroute.scanned", report.Scanned),
		attribute.Int("fsroute.added", len(report.Diff.Added)),
		attribute.Int("fsroute.removed", len(report.Diff.Removed)),
		attribute.Int("fsroute.changed", len(report.Diff.Changed)),
		attribute.Int("fsroute.failures", len(report.Failures)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
