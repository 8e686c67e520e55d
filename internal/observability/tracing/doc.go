// Package tracing provides OpenTelemetry tracing helpers.
//
// Spans are created through the global tracer provider, so a run is traced
// as soon as main installs an SDK provider and is a no-op otherwise.
//
//	ctx, span := tracing.StartSpan(ctx, "announce.source",
//	    attribute.String("source", src.Name))
//	defer func() { tracing.EndSpan(span, err) }()
package tracing
