package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "oakd", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Enabled = false

	shutdown, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	err = shutdown(ctx)
	assert.NoError(t, err)

	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	tracer = nil
	enabled = false

	tr := Tracer()
	require.NotNil(t, tr)
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestSpanFromContext(t *testing.T) {
	ctx := context.Background()

	span := SpanFromContext(ctx)
	require.NotNil(t, span)
}

func TestAddEvent(t *testing.T) {
	ctx := context.Background()

	require.NotPanics(t, func() {
		AddEvent(ctx, "test.event")
	})
}

func TestRecordError(t *testing.T) {
	ctx := context.Background()

	require.NotPanics(t, func() {
		RecordError(ctx, nil)
	})

	require.NotPanics(t, func() {
		RecordError(ctx, errors.New("test error"))
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Ok, "success")
	})

	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Error, "failed")
	})
}

func TestSetAttributes(t *testing.T) {
	ctx := context.Background()

	require.NotPanics(t, func() {
		SetAttributes(ctx, ShapedStatus("ok"))
	})
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()

	traceID := TraceID(ctx)
	assert.Equal(t, "", traceID)
}

func TestSpanID(t *testing.T) {
	ctx := context.Background()

	spanID := SpanID(ctx)
	assert.Equal(t, "", spanID)
}

func TestAttributeHelpers(t *testing.T) {
	t.Run("ShapedStatus", func(t *testing.T) {
		attr := ShapedStatus("ok")
		assert.Equal(t, AttrShapedStatus, string(attr.Key))
		assert.Equal(t, "ok", attr.Value.AsString())
	})

	t.Run("ResponseLength", func(t *testing.T) {
		attr := ResponseLength(128)
		assert.Equal(t, AttrResponseLength, string(attr.Key))
		assert.Equal(t, int64(128), attr.Value.AsInt64())
	})

	t.Run("LookupHit", func(t *testing.T) {
		attr := LookupHit(true)
		assert.Equal(t, AttrLookupHit, string(attr.Key))
		assert.True(t, attr.Value.AsBool())
	})

	t.Run("ExtensionHandleAttr", func(t *testing.T) {
		attr := ExtensionHandleAttr(2)
		assert.Equal(t, AttrExtensionHandle, string(attr.Key))
		assert.Equal(t, int64(2), attr.Value.AsInt64())
	})

	t.Run("ChannelOutcome", func(t *testing.T) {
		attr := ChannelOutcome("sent")
		assert.Equal(t, AttrChannelOutcome, string(attr.Key))
		assert.Equal(t, "sent", attr.Value.AsString())
	})
}

func TestStartHandlerSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartHandlerSpan(ctx)
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestStartShaperSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartShaperSpan(ctx)
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestStartExtensionSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartExtensionSpan(ctx, 1)
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}
