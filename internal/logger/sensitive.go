package logger

import "sync/atomic"

// sensitiveEnabled gates the DebugSensitive sink. Lookup keys/values and
// workload log lines carry request content, so logging them is opt-in even
// at debug level — distinct from the general debug gate on currentLevel.
var sensitiveEnabled atomic.Bool

// SetSensitiveLogging enables or disables DebugSensitive output. Wired from
// Config.LogSensitiveContent at Init time.
func SetSensitiveLogging(enabled bool) {
	sensitiveEnabled.Store(enabled)
}

// DebugSensitive logs at debug level, but only when both the debug level
// gate and sensitive-content gate are open. Used for lookup extension
// keys/values and workload log lines, which the policy explicitly calls out
// as sensitive.
func DebugSensitive(msg string, args ...any) {
	if !sensitiveEnabled.Load() {
		return
	}
	Debug(msg, args...)
}
