// Package policy implements the response-shaping Policy Shaper: it runs a
// guest invocation under a fixed time budget and pads its response to a
// fixed size, so that from an observer's perspective every request looks
// identical regardless of what the guest actually did.
package policy

import "time"

// minResponseSizeBytes is the smallest constant response size a policy may
// declare — large enough to hold either canned reason body with room to
// spare, per spec.md's startup validation rule.
const minResponseSizeBytes = 50

// minProcessingTime is the smallest constant processing time a policy may
// declare.
const minProcessingTime = time.Millisecond

// Policy is the per-deployment response-shaping configuration: every
// request served under the same Policy produces a wire response of
// identical size, after waiting at least ConstantProcessingTime.
type Policy struct {
	ConstantResponseSizeBytes uint32        `mapstructure:"constant_response_size_bytes" validate:"min=50"`
	ConstantProcessingTime    time.Duration `mapstructure:"constant_processing_time" validate:"min=1ms"`
}

// Validate re-checks the struct tag invariants directly, for callers that
// construct a Policy outside the config-loading path (tests, programmatic
// callers) where go-playground/validator is not already in the loop.
func (p Policy) Validate() error {
	if p.ConstantResponseSizeBytes < minResponseSizeBytes {
		return errInvalidPolicy("constant_response_size_bytes must be >= %d, got %d", minResponseSizeBytes, p.ConstantResponseSizeBytes)
	}
	if p.ConstantProcessingTime < minProcessingTime {
		return errInvalidPolicy("constant_processing_time must be >= %s, got %s", minProcessingTime, p.ConstantProcessingTime)
	}
	return nil
}
