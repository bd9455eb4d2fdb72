// SPDX-License-Identifier: MIT

// Package model holds the shared domain types for virtual desktop sessions,
// their weekly schedules, and the events that coordinate them.
package model

import "time"

// SessionState is the lifecycle state of a virtual desktop session.
type SessionState string

const (
	StateProvisioning SessionState = "PROVISIONING"
	StateReady        SessionState = "READY"
	StateResuming     SessionState = "RESUMING"
	StateStopping     SessionState = "STOPPING"
	StateStopped      SessionState = "STOPPED"
	StateStoppedIdle  SessionState = "STOPPED_IDLE"
	StateDeleting     SessionState = "DELETING"
	StateDeleted      SessionState = "DELETED"
	StateError        SessionState = "ERROR"
)

// IsTerminal returns true if the state is final. A DELETED session no longer
// has a store record; the state only appears in batch responses.
func (s SessionState) IsTerminal() bool {
	return s == StateDeleted
}

// IsStopped reports whether the session's host is powered down (plain stop or
// idle-detected stop).
func (s SessionState) IsStopped() bool {
	return s == StateStopped || s == StateStoppedIdle
}

// Server is the projection of the compute host backing a session. The
// orchestrator only reads what it needs to pick hibernate-vs-stop behaviour
// and to address provisioner batch calls.
type Server struct {
	InstanceID string `json:"instance_id"`
	IsIdle     bool   `json:"is_idle,omitempty"`
}

// Session is a user's remote interactive desktop and its lifecycle state.
// It is owned by the orchestrator and mutated only through state-machine
// transitions.
type Session struct {
	ID              string       `json:"session_id"`
	Owner           string       `json:"owner"`
	DisplayName     string       `json:"display_name,omitempty"`
	State           SessionState `json:"state"`
	Server          *Server      `json:"server,omitempty"`
	RemoteSessionID string       `json:"remote_session_id,omitempty"`

	HibernationCapable bool `json:"hibernation_capable,omitempty"`

	// Force is a per-request override. It is carried on the wire but never
	// persisted.
	Force bool `json:"force,omitempty"`

	Schedule      *WeekSchedule `json:"schedule,omitempty"`
	FailureReason string        `json:"failure_reason,omitempty"`

	CreatedOn time.Time `json:"created_on,omitempty"`
	UpdatedOn time.Time `json:"updated_on,omitempty"`
}

// HasRemoteSession reports whether the display broker ever registered this
// session. Sessions without a remote session id bypass the broker on stop
// and terminate.
func (s *Session) HasRemoteSession() bool {
	return s != nil && s.RemoteSessionID != ""
}

// SessionRef identifies a session in a batch request. Only the identity and
// the force flag are trusted; every operation re-reads the authoritative
// record from the store.
type SessionRef struct {
	ID    string `json:"session_id"`
	Owner string `json:"owner"`
	Force bool   `json:"force,omitempty"`
}
