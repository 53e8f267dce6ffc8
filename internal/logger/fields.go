package logger

import "log/slog"

// Standard field keys for structured logging. Use these keys consistently
// across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Request / Policy Shaping
	// ========================================================================
	KeyShapedStatus   = "shaped_status"   // Final policy.Status after shaping, as a string
	KeyResponseLength = "response_length" // Pre-padding response length in bytes
	KeyDurationMs     = "duration_ms"     // Operation duration in milliseconds

	// ========================================================================
	// Extension & Channel Dispatch
	// ========================================================================
	KeyExtensionHandle = "extension_handle" // extension.Handle invoked
	KeyChannelOutcome  = "channel_outcome"  // Outcome of a channel Send/TryRecv
	KeyLookupHit       = "lookup_hit"       // Whether a lookup extension call found a value

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyError     = "error"      // Error message
	KeyErrorCode = "error_code" // ombox.ErrorCode name
	KeySource    = "source"     // Lookup data source location (file/http/s3)
	KeyOperation = "operation"  // Sub-operation type for complex operations

	// ========================================================================
	// Lookup Data Acquisition (pkg/lookupsource)
	// ========================================================================
	KeyEntries    = "entries"     // Number of lookup table entries
	KeyAttempt    = "attempt"     // Retry attempt number
	KeyMaxRetries = "max_retries" // Maximum retry attempts
	KeyBucket     = "bucket"      // S3 bucket name
	KeyRegion     = "region"      // S3 region
	KeyObjectKey  = "object_key"  // S3 object key
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// ShapedStatus returns a slog.Attr for the final policy.Status of a request.
func ShapedStatus(status string) slog.Attr {
	return slog.String(KeyShapedStatus, status)
}

// ResponseLength returns a slog.Attr for a response's pre-padding length.
func ResponseLength(n int) slog.Attr {
	return slog.Int(KeyResponseLength, n)
}

// DurationMs returns a slog.Attr for an operation's duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// ExtensionHandle returns a slog.Attr for the extension.Handle invoked.
func ExtensionHandle(h uint32) slog.Attr {
	return slog.Any(KeyExtensionHandle, h)
}

// ChannelOutcome returns a slog.Attr describing a channel operation's result.
func ChannelOutcome(outcome string) slog.Attr {
	return slog.String(KeyChannelOutcome, outcome)
}

// LookupHit returns a slog.Attr for whether a lookup call found a value.
func LookupHit(hit bool) slog.Attr {
	return slog.Bool(KeyLookupHit, hit)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for an ombox.ErrorCode name.
func ErrorCode(code string) slog.Attr {
	return slog.String(KeyErrorCode, code)
}

// Source returns a slog.Attr for a lookup data source location.
func Source(src string) slog.Attr {
	return slog.String(KeySource, src)
}

// Operation returns a slog.Attr for a sub-operation type.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Entries returns a slog.Attr for the number of lookup table entries.
func Entries(n int) slog.Attr {
	return slog.Int(KeyEntries, n)
}

// Attempt returns a slog.Attr for a retry attempt number.
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// MaxRetries returns a slog.Attr for the maximum retry attempt count.
func MaxRetries(n int) slog.Attr {
	return slog.Int(KeyMaxRetries, n)
}

// Bucket returns a slog.Attr for an S3 bucket name.
func Bucket(name string) slog.Attr {
	return slog.String(KeyBucket, name)
}

// Region returns a slog.Attr for an S3 region.
func Region(r string) slog.Attr {
	return slog.String(KeyRegion, r)
}

// ObjectKey returns a slog.Attr for an S3 object key.
func ObjectKey(key string) slog.Attr {
	return slog.String(KeyObjectKey, key)
}
