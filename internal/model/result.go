// SPDX-License-Identifier: MIT

package model

// Result is the outcome for a single item of a batch operation. Exactly one
// of the two interpretations applies: a succeeded result carries the updated
// session, a failed one carries the same session annotated with a failure
// reason.
type Result struct {
	Session Session `json:"session"`
	// FailureReason is empty on success. Collaborator failures are copied
	// into it verbatim.
	FailureReason string `json:"failure_reason,omitempty"`
}

// Failed reports whether this item failed.
func (r Result) Failed() bool {
	return r.FailureReason != ""
}

// BatchResult is the ordered per-item outcome of a batch operation. Order
// matches the request; a failure on one item never blocks the others.
type BatchResult []Result

// Succeeded returns the sessions that completed the operation.
func (b BatchResult) Succeeded() []Session {
	var out []Session
	for _, r := range b {
		if !r.Failed() {
			out = append(out, r.Session)
		}
	}
	return out
}

// Failed returns the failed sessions, each with FailureReason populated.
func (b BatchResult) Failed() []Session {
	var out []Session
	for _, r := range b {
		if r.Failed() {
			s := r.Session
			s.FailureReason = r.FailureReason
			out = append(out, s)
		}
	}
	return out
}

// Failure builds a failed result for the given session.
func Failure(s Session, reason string) Result {
	s.FailureReason = reason
	return Result{Session: s, FailureReason: reason}
}

// Success builds a succeeded result for the given session.
func Success(s Session) Result { return Result{Session: s} }
