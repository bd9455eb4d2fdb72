// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/driftlab/vdeskd/internal/model"
)

// sqliteSchedules and sqlitePermissions are views over SqliteStore that
// satisfy the narrower contracts without method-name collisions on Get.
type sqliteSchedules SqliteStore

func (s *sqliteSchedules) base() *SqliteStore { return (*SqliteStore)(s) }

func (s *sqliteSchedules) Get(ctx context.Context, sessionID string, day model.DayOfWeek) (*model.DaySchedule, error) {
	return s.base().GetSchedule(ctx, sessionID, day)
}

func (s *sqliteSchedules) Week(ctx context.Context, sessionID string) (*model.WeekSchedule, error) {
	return s.base().Week(ctx, sessionID)
}

func (s *sqliteSchedules) ListDay(ctx context.Context, day model.DayOfWeek) ([]model.DaySchedule, error) {
	return s.base().ListDay(ctx, day)
}

func (s *sqliteSchedules) Create(ctx context.Context, ds *model.DaySchedule) error {
	return s.base().CreateSchedule(ctx, ds)
}

func (s *sqliteSchedules) Delete(ctx context.Context, ds *model.DaySchedule) error {
	return s.base().DeleteSchedule(ctx, ds)
}

func (s *sqliteSchedules) DeleteForSession(ctx context.Context, sessionID string) error {
	return s.base().DeleteSchedulesForSession(ctx, sessionID)
}

type sqlitePermissions SqliteStore

func (s *sqlitePermissions) base() *SqliteStore { return (*SqliteStore)(s) }

func (s *sqlitePermissions) Create(ctx context.Context, p *model.SessionPermission) error {
	return s.base().CreatePermission(ctx, p)
}

func (s *sqlitePermissions) ListForSession(ctx context.Context, sessionID string) ([]model.SessionPermission, error) {
	return s.base().ListPermissionsForSession(ctx, sessionID)
}

func (s *sqlitePermissions) DeleteForSession(ctx context.Context, sessionID string) error {
	return s.base().DeletePermissionsForSession(ctx, sessionID)
}

var (
	_ SessionStore    = (*SqliteStore)(nil)
	_ ScheduleStore   = (*sqliteSchedules)(nil)
	_ PermissionStore = (*sqlitePermissions)(nil)
)
