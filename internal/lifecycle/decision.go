// SPDX-License-Identifier: MIT

package lifecycle

import (
	"fmt"

	"github.com/driftlab/vdeskd/internal/model"
)

// DecisionFor reports whether the event is legal from the given state, with a
// human-readable reason when it is not. The reason ends up verbatim in batch
// failure responses.
func DecisionFor(from model.SessionState, ev EventKind) Decision {
	if _, ok := TransitionFor(from, ev); ok {
		return Decision{Allowed: true}
	}
	return Decision{Reason: forbiddenReason(from, ev)}
}

func forbiddenReason(from model.SessionState, ev EventKind) string {
	switch ev {
	case EvStopRequested:
		return fmt.Sprintf("session is in %s state, cannot stop; wait for it to be %s", from, model.StateReady)
	case EvResumeRequested:
		return fmt.Sprintf("session is in %s state, cannot resume a session that is not stopped", from)
	case EvRebootRequested:
		return fmt.Sprintf("session is in %s state, cannot reboot; wait for it to be %s or %s", from, model.StateReady, model.StateError)
	default:
		return fmt.Sprintf("no %s transition from %s state", ev, from)
	}
}

// Apply advances the session to the target state of the transition for ev.
// It returns an error when the transition is forbidden.
func Apply(s *model.Session, ev EventKind) error {
	tr, ok := TransitionFor(s.State, ev)
	if !ok {
		return fmt.Errorf("illegal transition: %s", forbiddenReason(s.State, ev))
	}
	s.State = tr.To
	return nil
}
