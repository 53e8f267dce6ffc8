package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context for one Handler.Handle
// invocation.
type LogContext struct {
	TraceID         string // OpenTelemetry trace ID
	SpanID          string // OpenTelemetry span ID
	ExtensionHandle uint32 // Last extension.Handle dispatched, 0 if none yet
	ShapedStatus    string // Final policy.Status.String(), set once Shaper.Run returns
	StartTime       time.Time
}

// WithContext returns a new context with the given LogContext.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext with its clock started.
func NewLogContext() *LogContext {
	return &LogContext{StartTime: time.Now()}
}

// Clone creates a copy of the LogContext.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithExtension returns a copy with the last-dispatched extension handle set.
func (lc *LogContext) WithExtension(handle uint32) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.ExtensionHandle = handle
	}
	return clone
}

// WithShaped returns a copy with the final shaped status set.
func (lc *LogContext) WithShaped(status string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.ShapedStatus = status
	}
	return clone
}

// WithTrace returns a copy with trace info set.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
