package policy

import (
	"context"
	"time"

	"github.com/marmos91/oakd/pkg/metrics"
)

// invokeResult carries the outcome of one guest invocation back to the
// timer goroutine that is waiting on it.
type invokeResult struct {
	resp Response
	err  error
}

// Shaper runs a guest invocation under a fixed Policy: every response it
// emits has the same wire size, and is never emitted before
// Policy.ConstantProcessingTime has elapsed, regardless of how quickly the
// guest actually finished.
type Shaper struct {
	policy  Policy
	metrics metrics.PolicyMetrics
}

// NewShaper constructs a Shaper bound to policy. A nil policyMetrics is
// always safe.
func NewShaper(p Policy, policyMetrics metrics.PolicyMetrics) *Shaper {
	return &Shaper{policy: p, metrics: policyMetrics}
}

// Run invokes fn concurrently with a timer of Policy.ConstantProcessingTime
// and shapes whatever it observes at the timer's fire into a Response of
// exactly Policy.ConstantResponseSizeBytes bytes.
//
// Run always blocks until the timer fires — even if fn has already
// completed — so that a deployment's response latency is a constant
// function of its policy, never a function of the guest's actual work. If
// fn's ctx is cancelled, fn is still given the chance to observe that
// cancellation, but Run still waits out the timer before returning.
func (s *Shaper) Run(ctx context.Context, fn func(context.Context) (Response, error)) Response {
	start := time.Now()
	done := make(chan invokeResult, 1)

	go func() {
		resp, err := fn(ctx)
		done <- invokeResult{resp: resp, err: err}
	}()

	timer := time.NewTimer(s.policy.ConstantProcessingTime)
	defer timer.Stop()
	<-timer.C

	var shaped Response
	select {
	case result := <-done:
		shaped = s.resolve(result)
	default:
		shaped = Response{
			Status: StatusPolicyTimeViolation,
			Body:   []byte(reasonNotAvailable),
			Length: uint64(len(reasonNotAvailable)),
		}
	}

	shaped = s.enforceSize(shaped)

	if s.metrics != nil {
		s.metrics.ObserveShaped(shaped.Status.String(), time.Since(start), int(shaped.Length))
	}
	return shaped
}

// resolve turns a completed invocation into a pre-size-check Response: a
// framework or guest-reported error becomes an internal error response,
// success passes the guest's own response through unchanged.
func (s *Shaper) resolve(result invokeResult) Response {
	if result.err != nil {
		body := []byte(result.err.Error())
		return Response{
			Status: StatusInternalServerError,
			Body:   body,
			Length: uint64(len(body)),
		}
	}
	return result.resp
}

// enforceSize applies the size-violation replacement (if the body exceeds
// the policy's constant size) and then zero-pads to exactly that size,
// recording the pre-padding length.
//
// Length is only ever touched here when Body is actually modified — by the
// size-violation replacement (which sets it explicitly) or by the
// zero-padding step below. A Body already at exactly n bytes is left
// untouched, and so is its Length: re-shaping an already-shaped Response
// must be a no-op (spec.md §8 Law 1), and a body that happens to already be
// n bytes long carries no reliable signal of whether it is fresh,
// unpadded content or the result of a prior shaping pass.
func (s *Shaper) enforceSize(resp Response) Response {
	n := int(s.policy.ConstantResponseSizeBytes)

	if len(resp.Body) > n {
		resp = Response{
			Status: StatusPolicySizeViolation,
			Body:   []byte(reasonTooLarge),
			Length: uint64(len(reasonTooLarge)),
		}
	}

	if len(resp.Body) < n {
		origLen := len(resp.Body)
		padded := make([]byte, n)
		copy(padded, resp.Body)
		resp.Body = padded
		resp.Length = uint64(origLen)
	}
	return resp
}
