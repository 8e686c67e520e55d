package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return exporter
}

func TestStartSpan_RecordsAttributes(t *testing.T) {
	exporter := installRecorder(t)

	_, span := StartSpan(context.Background(), "announce.source", attribute.String("source", "asobistore"))
	EndSpan(span, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "announce.source", spans[0].Name)
	assert.Equal(t, TracerName, spans[0].InstrumentationScope.Name)
	assert.Contains(t, spans[0].Attributes, attribute.String("source", "asobistore"))
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
}

func TestEndSpan_MarksError(t *testing.T) {
	exporter := installRecorder(t)

	_, span := StartSpan(context.Background(), "notify.send")
	EndSpan(span, errors.New("webhook returned 500"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "webhook returned 500", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestStartSpan_NestsUnderParent(t *testing.T) {
	exporter := installRecorder(t)

	ctx, parent := StartSpan(context.Background(), "announce.Run")
	_, child := StartSpan(ctx, "compact.group")
	child.End()
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}
