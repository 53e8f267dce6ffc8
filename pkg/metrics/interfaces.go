package metrics

import "time"

// PolicyMetrics records Shaper outcomes: how a request's actual outcome
// (on-time success, time violation, size violation, internal error)
// relates to the policy budget it ran under.
type PolicyMetrics interface {
	// ObserveShaped records one shaped response: its final status, the wall
	// time the Shaper spent before emitting, and the pre-padding body
	// length.
	ObserveShaped(status string, elapsed time.Duration, preShapedLength int)
}

// LookupMetrics records LookupManager activity.
type LookupMetrics interface {
	// ObserveUpdate records the outcome of one UpdateData call.
	ObserveUpdate(result string, entries int)
	// ObserveSnapshotHandout records one CreateLookupData call.
	ObserveSnapshotHandout()
}

// ChannelMetrics records channel fabric activity: send/receive outcomes
// across every Endpoint a request creates.
type ChannelMetrics interface {
	// ObserveSend records one Send call's outcome ("ok", "full", "closed").
	ObserveSend(outcome string)
	// ObserveRecv records one TryRecv call's outcome ("ok", "empty", "disconnected").
	ObserveRecv(outcome string)
}
