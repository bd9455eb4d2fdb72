// SPDX-License-Identifier: MIT

// Package store defines the persistence contracts for sessions, schedules and
// permission grants, and provides the SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/driftlab/vdeskd/internal/model"
)

// ErrNotFound is returned when the referenced record does not exist.
var ErrNotFound = errors.New("store: record not found")

// ErrStateConflict is returned by conditional updates when the persisted
// state no longer matches the expected one. Batch operations surface it as a
// per-item failure; there is no locking across batch items.
var ErrStateConflict = errors.New("store: session state changed concurrently")

// SessionStore is keyed persistence for session records.
type SessionStore interface {
	Get(ctx context.Context, id string) (*model.Session, error)
	Create(ctx context.Context, s *model.Session) error
	Update(ctx context.Context, s *model.Session) error

	// UpdateIf writes s only while the persisted state still equals expect.
	// A mismatch returns ErrStateConflict.
	UpdateIf(ctx context.Context, s *model.Session, expect model.SessionState) error

	Delete(ctx context.Context, id string) error
}

// ScheduleStore is keyed persistence for per-day schedules, looked up by
// (session id, day of week).
type ScheduleStore interface {
	Get(ctx context.Context, sessionID string, day model.DayOfWeek) (*model.DaySchedule, error)

	// Week assembles the session's seven-day schedule. Missing days come back
	// as nil entries.
	Week(ctx context.Context, sessionID string) (*model.WeekSchedule, error)

	// ListDay returns every persisted schedule for the given day across all
	// sessions. The scheduled tick walks this.
	ListDay(ctx context.Context, day model.DayOfWeek) ([]model.DaySchedule, error)

	// Create persists the schedule and assigns its id.
	Create(ctx context.Context, s *model.DaySchedule) error

	Delete(ctx context.Context, s *model.DaySchedule) error
	DeleteForSession(ctx context.Context, sessionID string) error
}

// PermissionStore is keyed persistence for session permission grants.
type PermissionStore interface {
	Create(ctx context.Context, p *model.SessionPermission) error
	ListForSession(ctx context.Context, sessionID string) ([]model.SessionPermission, error)
	DeleteForSession(ctx context.Context, sessionID string) error
}

// Stores bundles the three contracts the orchestrator consumes.
type Stores struct {
	Sessions    SessionStore
	Schedules   ScheduleStore
	Permissions PermissionStore
}
