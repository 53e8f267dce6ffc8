package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for request tracing. Handler.Handle starts the root span
// and a child span inside its Shaper.Run callback, and sets the shaped
// status and response length; the lookup-hit, extension-handle and
// channel-outcome attributes and StartExtensionSpan have no caller here.
const (
	AttrShapedStatus    = "oakd.shaped_status"
	AttrResponseLength  = "oakd.response_length"
	AttrLookupHit       = "oakd.lookup_hit"
	AttrExtensionHandle = "oakd.extension_handle"
	AttrChannelOutcome  = "oakd.channel_outcome"
)

// SpanHandlerHandle is the root span around one Handler.Handle invocation.
const SpanHandlerHandle = "oakd.handle"

// SpanShaperRun is the span around Shaper.Run's timer-gated wait.
const SpanShaperRun = "policy.shaper_run"

// SpanExtensionInvoke is the span around a single extension.Set.Invoke
// dispatch.
const SpanExtensionInvoke = "extension.invoke"

// ShapedStatus returns an attribute for the policy-shaped response status.
func ShapedStatus(status string) attribute.KeyValue {
	return attribute.String(AttrShapedStatus, status)
}

// ResponseLength returns an attribute for the pre-padding response length.
func ResponseLength(length int) attribute.KeyValue {
	return attribute.Int(AttrResponseLength, length)
}

// LookupHit returns an attribute for whether a lookup extension call found
// its key.
func LookupHit(hit bool) attribute.KeyValue {
	return attribute.Bool(AttrLookupHit, hit)
}

// ExtensionHandleAttr returns an attribute for which extension handle was
// dispatched to.
func ExtensionHandleAttr(handle uint32) attribute.KeyValue {
	return attribute.Int64(AttrExtensionHandle, int64(handle))
}

// ChannelOutcome returns an attribute for a channel send/receive result.
func ChannelOutcome(outcome string) attribute.KeyValue {
	return attribute.String(AttrChannelOutcome, outcome)
}

// StartHandlerSpan starts the root span for one Handler.Handle invocation.
func StartHandlerSpan(ctx context.Context) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanHandlerHandle)
}

// StartShaperSpan starts the span around one Shaper.Run call.
func StartShaperSpan(ctx context.Context) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanShaperRun)
}

// StartExtensionSpan starts the span around one extension dispatch.
func StartExtensionSpan(ctx context.Context, handle uint32) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanExtensionInvoke, trace.WithAttributes(ExtensionHandleAttr(handle)))
}
