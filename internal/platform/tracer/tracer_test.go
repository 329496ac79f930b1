package tracer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNoopTracer_Start(t *testing.T) {
	tr := NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, SpanEnroll,
		String(AttrModality, "FACE"),
		Bool(AttrReplaced, true),
	)
	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	span.SetAttributes(Float64(AttrQuality, 0.5))
	span.AddEvent("audit.emitted", Int64("count", 1))
	span.End(errors.New("boom"))
}

func TestOTelTracer_WithInjectedTracer(t *testing.T) {
	tr := NewOTel(WithOTelTracer(noop.NewTracerProvider().Tracer("test")))
	ctx, span := tr.Start(context.Background(), SpanVerify, String(AttrUserHash, "4ee3d1cd0e1b6e23"))
	require.NotNil(t, ctx)
	span.SetAttributes(Bool(AttrVerified, false))
	span.End(nil)
}

func TestToOTelAttributes(t *testing.T) {
	got := toOTelAttributes([]Attribute{
		String("s", "v"),
		Bool("b", true),
		Int64("i64", 7),
		{Key: "int", Value: 3},
		Float64("f", 0.25),
		Duration("d", 1500*time.Millisecond),
		{Key: "skipped", Value: struct{}{}},
	})
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("s", "v"),
		attribute.Bool("b", true),
		attribute.Int64("i64", 7),
		attribute.Int64("int", 3),
		attribute.Float64("f", 0.25),
		attribute.Int64("d", 1500),
	}, got)
	assert.Nil(t, toOTelAttributes(nil))
}

