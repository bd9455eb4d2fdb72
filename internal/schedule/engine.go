// SPDX-License-Identifier: MIT

package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/driftlab/vdeskd/internal/config"
	vlog "github.com/driftlab/vdeskd/internal/log"
	"github.com/driftlab/vdeskd/internal/model"
	"github.com/driftlab/vdeskd/internal/store"
)

// Engine reconciles weekly schedules against the schedule store and exposes
// the cluster defaults.
type Engine struct {
	Schedules    store.ScheduleStore
	WorkingHours Window

	defaults map[model.DayOfWeek]config.DayScheduleConfig
	logger   zerolog.Logger
}

// NewEngine builds a schedule engine from the cluster session policy.
func NewEngine(schedules store.ScheduleStore, cfg config.SessionsConfig) (*Engine, error) {
	window, err := ParseWindow(cfg.WorkingHours.StartUpTime, cfg.WorkingHours.ShutDownTime)
	if err != nil {
		return nil, fmt.Errorf("schedule: working hours: %w", err)
	}
	defaults := make(map[model.DayOfWeek]config.DayScheduleConfig, len(cfg.DefaultSchedule))
	for day, ds := range cfg.DefaultSchedule {
		defaults[model.DayOfWeek(day)] = ds
	}
	return &Engine{
		Schedules:    schedules,
		WorkingHours: window,
		defaults:     defaults,
		logger:       vlog.WithComponent("schedule-engine"),
	}, nil
}

// DefaultWeek returns the cluster default weekly schedule applied to newly
// created sessions. Days missing from config get no schedule.
func (e *Engine) DefaultWeek() *model.WeekSchedule {
	week := &model.WeekSchedule{}
	for _, day := range model.DaysOfWeek() {
		dc, ok := e.defaults[day]
		if !ok {
			week.SetDay(day, &model.DaySchedule{Day: day, Type: model.ScheduleNone})
			continue
		}
		week.SetDay(day, &model.DaySchedule{
			Day:          day,
			Type:         model.ScheduleType(dc.Type),
			StartUpTime:  dc.StartUpTime,
			ShutDownTime: dc.ShutDownTime,
		})
	}
	return week
}

// ReconcileDay brings one day's persisted schedule in line with desired. When
// the two are equivalent the current schedule is returned untouched and
// nothing is written. Otherwise the current record is deleted and, unless
// desired is NO_SCHEDULE, a replacement is created.
func (e *Engine) ReconcileDay(ctx context.Context, sess *model.Session, day model.DayOfWeek, current, desired *model.DaySchedule) (*model.DaySchedule, error) {
	if current == nil {
		current = &model.DaySchedule{Day: day, Type: model.ScheduleNone}
	}
	if desired == nil {
		// No desired value for this day leaves it as-is.
		return current, nil
	}
	if Equivalent(current, desired) {
		return current, nil
	}

	if !current.IsEmpty() || current.ID != "" {
		if err := e.Schedules.Delete(ctx, current); err != nil {
			return nil, fmt.Errorf("schedule: delete %s/%s: %w", sess.ID, day, err)
		}
	}

	if desired.Type == model.ScheduleNone {
		return &model.DaySchedule{Day: day, Type: model.ScheduleNone}, nil
	}

	created := &model.DaySchedule{
		SessionID:    sess.ID,
		Owner:        sess.Owner,
		Day:          day,
		Type:         desired.Type,
		StartUpTime:  desired.StartUpTime,
		ShutDownTime: desired.ShutDownTime,
	}
	if err := e.Schedules.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("schedule: create %s/%s: %w", sess.ID, day, err)
	}
	e.logger.Debug().
		Str(vlog.FieldSessionID, sess.ID).
		Str(vlog.FieldDayOfWeek, string(day)).
		Str(vlog.FieldScheduleType, string(created.Type)).
		Msg("schedule replaced")
	return created, nil
}

// ReconcileWeek runs ReconcileDay for all seven days and attaches the
// resulting week to the session. Reconciliation is independent per day; the
// first error aborts the walk.
func (e *Engine) ReconcileWeek(ctx context.Context, sess *model.Session, desired *model.WeekSchedule) error {
	if sess.Schedule == nil {
		sess.Schedule = &model.WeekSchedule{}
	}
	for _, day := range model.DaysOfWeek() {
		updated, err := e.ReconcileDay(ctx, sess, day, sess.Schedule.Day(day), desired.Day(day))
		if err != nil {
			return err
		}
		sess.Schedule.SetDay(day, updated)
	}
	return nil
}

// DeleteForSession removes every persisted schedule of a session.
func (e *Engine) DeleteForSession(ctx context.Context, sessionID string) error {
	if err := e.Schedules.DeleteForSession(ctx, sessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}
