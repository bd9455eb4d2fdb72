// SPDX-License-Identifier: MIT

package model

// SessionPermission grants an actor access to a session under a named
// permission profile. The orchestrator only creates and deletes grants;
// enforcement is external.
type SessionPermission struct {
	SessionID string `json:"session_id"`
	Actor     string `json:"actor"`
	Profile   string `json:"profile"`
}
