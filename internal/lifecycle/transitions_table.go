// SPDX-License-Identifier: MIT

package lifecycle

import "github.com/driftlab/vdeskd/internal/model"

// Transition is a single allowed edge in the lifecycle state machine.
type Transition struct {
	From  model.SessionState
	To    model.SessionState
	Event EventKind
}

// Decision records whether a transition is allowed and why it is forbidden.
type Decision struct {
	Allowed bool
	Reason  string
}

var transitionsTable = []Transition{
	// Provisioning and resume both complete on host-ready.
	{From: model.StateProvisioning, To: model.StateReady, Event: EvHostReady},
	{From: model.StateResuming, To: model.StateReady, Event: EvHostReady},

	// Stop path
	{From: model.StateReady, To: model.StateStopping, Event: EvStopRequested},
	{From: model.StateStopping, To: model.StateStopped, Event: EvStopConfirmed},
	{From: model.StateStopping, To: model.StateStoppedIdle, Event: EvIdleStopConfirmed},

	// Resume path
	{From: model.StateStopped, To: model.StateResuming, Event: EvResumeRequested},
	{From: model.StateStoppedIdle, To: model.StateResuming, Event: EvResumeRequested},

	// Reboot path (re-enters RESUMING)
	{From: model.StateReady, To: model.StateResuming, Event: EvRebootRequested},
	{From: model.StateError, To: model.StateResuming, Event: EvRebootRequested},

	// Broker-confirmed teardown. Terminate has no state precondition, so
	// every live non-stopped state has a delete edge; stopped sessions are
	// deleted directly without passing through DELETING.
	{From: model.StateProvisioning, To: model.StateDeleting, Event: EvDeleteRequested},
	{From: model.StateReady, To: model.StateDeleting, Event: EvDeleteRequested},
	{From: model.StateResuming, To: model.StateDeleting, Event: EvDeleteRequested},
	{From: model.StateStopping, To: model.StateDeleting, Event: EvDeleteRequested},
	{From: model.StateError, To: model.StateDeleting, Event: EvDeleteRequested},
	{From: model.StateDeleting, To: model.StateDeleted, Event: EvDeleteConfirmed},
	{From: model.StateStopped, To: model.StateDeleted, Event: EvDeleteConfirmed},
	{From: model.StateStoppedIdle, To: model.StateDeleted, Event: EvDeleteConfirmed},
}

// faultable lists the states that may be forced into ERROR.
var faultable = []model.SessionState{
	model.StateProvisioning,
	model.StateReady,
	model.StateResuming,
	model.StateStopping,
	model.StateStopped,
	model.StateStoppedIdle,
	model.StateDeleting,
}

// TransitionFor returns the allowed transition for a given state+event.
func TransitionFor(from model.SessionState, ev EventKind) (Transition, bool) {
	if ev == EvFault {
		for _, s := range faultable {
			if s == from {
				return Transition{From: from, To: model.StateError, Event: ev}, true
			}
		}
		return Transition{}, false
	}
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return Transition{}, false
}
