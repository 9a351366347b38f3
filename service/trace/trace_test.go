package trace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestDisabledSpansAreNoops(t *testing.T) {
	require.NoError(t, Init(false))

	ctx := context.Background()
	spanCtx, span := StartSpan(ctx, "noop", PairAttributes("SPY", "IVV", 30))
	assert.Equal(t, ctx, spanCtx)
	assert.False(t, span.SpanContext().IsValid())
	assert.False(t, span.IsRecording())

	EndSpan(span, errors.New("ignored"))
	require.NoError(t, Shutdown(ctx))
}

func TestDisabledSpanLeavesCallerSpanOpen(t *testing.T) {
	require.NoError(t, Init(false))

	provider := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	ctx, parent := provider.Tracer("caller").Start(context.Background(), "request")
	require.True(t, parent.IsRecording())

	_, span := StartSpan(ctx, "core.ComputeAlerts", IngestAttributes("SPY", "IVV", 120, false))
	assert.NotEqual(t, parent.SpanContext(), span.SpanContext())

	EndSpan(span, errors.New("feed down"))
	assert.True(t, parent.IsRecording(), "caller span must still be open")

	parent.End()
	assert.False(t, parent.IsRecording())
}
