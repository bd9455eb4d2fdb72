// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID = "session_id"
	FieldOwner     = "owner"
	FieldMessageID = "message_id"
	FieldGroupID   = "group_id"
	FieldSenderID  = "sender_id"
	FieldServerID  = "server_id"

	// Process fields
	FieldComponent = "component"
	FieldEventType = "event_type"
	FieldWorker    = "worker"
	FieldOperation = "operation"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Schedule fields
	FieldDayOfWeek    = "day_of_week"
	FieldScheduleType = "schedule_type"
)
