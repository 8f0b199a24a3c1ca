package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore/oteladapters"
)

func Test_TracingCollector_Should_Record_ASuccessfulSpan(t *testing.T) {
	// setup
	exporter, collector := givenTracingCollector()

	// act
	ctx, spanCtx := collector.StartSpan(
		context.Background(),
		"streamstore.append",
		map[string]string{"operation": "append", "table_name": "user_stream"},
	)
	collector.FinishSpan(spanCtx, "success", map[string]string{"event_count": "2"})

	// assert
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid(), "the returned context should carry the span")

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "streamstore.append", span.Name)
	assert.Equal(t, trace.SpanKindClient, span.SpanKind)
	assert.Equal(t, codes.Ok, span.Status.Code)
	assertSpanAttribute(t, span, "operation", "append")
	assertSpanAttribute(t, span, "table_name", "user_stream")
	assertSpanAttribute(t, span, "event_count", "2")
}

func Test_TracingCollector_Should_Record_AFailedSpan(t *testing.T) {
	// setup
	exporter, collector := givenTracingCollector()

	// act
	_, spanCtx := collector.StartSpan(context.Background(), "streamstore.load", map[string]string{"operation": "load"})
	collector.FinishSpan(spanCtx, "error", map[string]string{"error_type": "missing_table"})

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "missing_table", spans[0].Status.Description)
	assertSpanAttribute(t, spans[0], "error_type", "missing_table")
}

func Test_TracingCollector_Should_Nest_Spans(t *testing.T) {
	// setup
	exporter, collector := givenTracingCollector()

	// act
	parentCtx, parent := collector.StartSpan(context.Background(), "parent", nil)
	_, child := collector.StartSpan(parentCtx, "child", nil)
	collector.FinishSpan(child, "success", nil)
	collector.FinishSpan(parent, "success", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "child", spans[0].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func Test_OTelSpanContext_Should_Map_Statuses_And_Attributes(t *testing.T) {
	// setup
	exporter, collector := givenTracingCollector()

	// act
	_, spanCtx := collector.StartSpan(context.Background(), "streamstore.create_schema", nil)
	spanCtx.AddAttribute("table_name", "user_stream")
	spanCtx.SetStatus("partial")
	collector.FinishSpan(spanCtx, "partial", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assertSpanAttribute(t, spans[0], "table_name", "user_stream")
	assertSpanAttribute(t, spans[0], "status", "partial")
}

func Test_TracingCollector_Should_Ignore_ForeignSpanContexts(t *testing.T) {
	// setup
	exporter, collector := givenTracingCollector()

	// act & assert
	assert.NotPanics(t, func() {
		collector.FinishSpan(nil, "success", nil)
	})
	assert.Empty(t, exporter.GetSpans())
}

func givenTracingCollector() (*tracetest.InMemoryExporter, *oteladapters.TracingCollector) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return exporter, oteladapters.NewTracingCollector(provider.Tracer("test"))
}

func assertSpanAttribute(t *testing.T, span tracetest.SpanStub, key, expected string) {
	t.Helper()

	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) {
			assert.Equal(t, expected, attr.Value.AsString(), "attribute %s", key)
			return
		}
	}

	t.Errorf("attribute %s not found on span %s", key, span.Name)
}
