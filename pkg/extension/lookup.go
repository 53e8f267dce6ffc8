package extension

import (
	"context"

	"github.com/marmos91/oakd/internal/logger"
	"github.com/marmos91/oakd/pkg/lookup"
)

// maxLoggedFieldBytes bounds how much of a lookup key or value is logged at
// debug level, matching the 512-byte truncation the original Oak Functions
// lookup extension applies to both fields before logging
// (original_source/oak_functions/lookup/src/lib.rs, key_to_log/value_to_log).
const maxLoggedFieldBytes = 512

// LookupExtension answers key lookups against the snapshot it was created
// with. One instance is constructed per request by NewLookupFactory, so its
// snapshot reference never crosses a request boundary.
type LookupExtension struct {
	snapshot *lookup.Snapshot
}

// NewLookupFactory returns a Factory that binds each constructed extension
// to snapshot — the lookup snapshot current at the start of the request
// that owns this factory call.
func NewLookupFactory(snapshot *lookup.Snapshot) Factory {
	return func() Extension {
		return &LookupExtension{snapshot: snapshot}
	}
}

// Invoke treats request as a raw key and returns a presence-prefixed
// encoding of {present byte, value bytes}: a single 0x00 byte if absent, or 0x01
// followed by the value if present. The guest ABI layer decodes this.
func (e *LookupExtension) Invoke(ctx context.Context, request []byte) ([]byte, error) {
	value, ok := e.snapshot.Get(request)

	loggedKey, keyTruncated := truncateForLogging(request)
	loggedValue, valueTruncated := truncateForLogging(value)
	logger.DebugSensitive("lookup invoked",
		"key", loggedKey, "key_truncated", keyTruncated,
		"present", ok,
		"value", loggedValue, "value_truncated", valueTruncated)

	if !ok {
		return []byte{0x00}, nil
	}
	out := make([]byte, 0, 1+len(value))
	out = append(out, 0x01)
	out = append(out, value...)
	return out, nil
}

// truncateForLogging bounds b to maxLoggedFieldBytes, reporting whether it
// cut anything off.
func truncateForLogging(b []byte) (out []byte, truncated bool) {
	if len(b) <= maxLoggedFieldBytes {
		return b, false
	}
	return b[:maxLoggedFieldBytes], true
}

// Terminate is a no-op: the extension holds no resources beyond a shared
// pointer that the Go runtime reclaims normally.
func (e *LookupExtension) Terminate() error { return nil }

// Handle reports HandleLookup.
func (e *LookupExtension) Handle() Handle { return HandleLookup }
