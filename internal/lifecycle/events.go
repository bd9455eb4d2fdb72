// SPDX-License-Identifier: MIT

// Package lifecycle defines the session state machine: which lifecycle
// transitions are legal, and why a requested transition is forbidden.
package lifecycle

// EventKind names the triggers that move a session between states.
type EventKind string

const (
	// EvHostReady fires when the compute host reports the remote display
	// session is reachable. It completes both provisioning and resume.
	EvHostReady EventKind = "host-ready"

	// EvStopRequested starts a stop; EvStopConfirmed and EvIdleStopConfirmed
	// complete it once the host is down.
	EvStopRequested     EventKind = "stop-requested"
	EvStopConfirmed     EventKind = "stop-confirmed"
	EvIdleStopConfirmed EventKind = "idle-stop-confirmed"

	EvResumeRequested EventKind = "resume-requested"

	// EvRebootRequested shares the RESUMING state with resume; the reboot
	// completion event disambiguates the two paths.
	EvRebootRequested EventKind = "reboot-requested"

	// EvDeleteRequested starts broker-side teardown; EvDeleteConfirmed
	// removes the record.
	EvDeleteRequested EventKind = "delete-requested"
	EvDeleteConfirmed EventKind = "delete-confirmed"

	// EvFault forces a session into ERROR from any live state.
	EvFault EventKind = "fault"
)
