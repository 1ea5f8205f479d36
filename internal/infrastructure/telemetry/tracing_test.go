package telemetry

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
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// useRecorder installs a recording tracer provider globally for the test
func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

type stringer struct{}

func (stringer) String() string { return "stringified" }

func TestStartServiceSpan(t *testing.T) {
	recorder := useRecorder(t)

	_, span := StartServiceSpan(context.Background(), "sale", "register", WithSpanKind(trace.SpanKindServer), WithAttribute("lines_count", 2))
	SetAttributes(span,
		"client_id", "c-1",
		"quantity", int64(10),
		"ratio", 0.18,
		"ok", true,
		"ids", []string{"a", "b"},
		"id", stringer{},
		42, "skipped",
	)
	AddEvent(span, "stock_checked", "product_id", "p-1")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "sale.register", s.Name())
	assert.Equal(t, trace.SpanKindServer, s.SpanKind())

	attrs := attrMap(s.Attributes())
	assert.Equal(t, int64(2), attrs["lines_count"].AsInt64())
	assert.Equal(t, "c-1", attrs["client_id"].AsString())
	assert.Equal(t, int64(10), attrs["quantity"].AsInt64())
	assert.Equal(t, 0.18, attrs["ratio"].AsFloat64())
	assert.True(t, attrs["ok"].AsBool())
	assert.Equal(t, []string{"a", "b"}, attrs["ids"].AsStringSlice())
	assert.Equal(t, "stringified", attrs["id"].AsString())
	assert.Len(t, attrs, 7)

	require.Len(t, s.Events(), 1)
	assert.Equal(t, "stock_checked", s.Events()[0].Name)
}

func TestRecordError(t *testing.T) {
	recorder := useRecorder(t)

	_, span := StartSpan(context.Background(), "stock_ledger.decrease")
	RecordError(span, errors.New("insufficient stock"))
	RecordError(span, nil)
	span.End()

	s := recorder.Ended()[0]
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "insufficient stock", s.Status().Description)
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "exception", s.Events()[0].Name)
}

func TestHelpers_NilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		SetAttributes(nil, "k", "v")
		RecordError(nil, errors.New("x"))
		AddEvent(nil, "e")
	})
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.ForceFlush(context.Background()))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1.0).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}
