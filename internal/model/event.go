// SPDX-License-Identifier: MIT

package model

// EventType identifies which handler an event is routed to.
type EventType string

const (
	// Host-side completions.
	EventHostReady            EventType = "HOST_READY"
	EventHostRebootComplete   EventType = "HOST_REBOOT_COMPLETE"
	EventInstanceStateChanged EventType = "INSTANCE_STATE_CHANGED"

	// Asynchronous confirmations of broker-side teardown.
	EventValidateSessionDeletion EventType = "VALIDATE_SESSION_DELETION"

	// Schedule engine traffic.
	EventScheduledTick   EventType = "SCHEDULED_TICK"
	EventScheduledResume EventType = "SESSION_SCHEDULED_RESUME"
	EventScheduledStop   EventType = "SESSION_SCHEDULED_STOP"

	// Deferred session teardown requests.
	EventSessionTerminate EventType = "SESSION_TERMINATE"
)

// ClusterEventGroup is the sentinel ordering group for events that are not
// scoped to a single session, such as the periodic schedule tick.
const ClusterEventGroup = "vdeskd-cluster"

// Event is the queue message body. GroupID is the ordering unit (the session
// id, or ClusterEventGroup for cluster-wide events). The remaining fields are
// event-type specific and left empty when not applicable.
type Event struct {
	GroupID string    `json:"event_group_id"`
	Type    EventType `json:"event_type"`

	SessionID       string `json:"session_id,omitempty"`
	Owner           string `json:"owner,omitempty"`
	RemoteSessionID string `json:"remote_session_id,omitempty"`
	InstanceID      string `json:"instance_id,omitempty"`
	InstanceState   string `json:"instance_state,omitempty"`

	// Time is the wall-clock HH:MM carried on SCHEDULED_TICK events.
	Time string `json:"time,omitempty"`

	Force bool `json:"force,omitempty"`
}
