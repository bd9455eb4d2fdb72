// SPDX-License-Identifier: MIT

package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftlab/vdeskd/internal/config"
	"github.com/driftlab/vdeskd/internal/model"
	"github.com/driftlab/vdeskd/internal/store/storetest"
)

func newTestEngine(t *testing.T) (*Engine, *storetest.Memory) {
	t.Helper()
	mem := storetest.NewMemory()
	eng, err := NewEngine(mem.Bundle().Schedules, config.SessionsConfig{
		WorkingHours: config.WindowConfig{StartUpTime: "09:00", ShutDownTime: "17:00"},
		DefaultSchedule: map[string]config.DayScheduleConfig{
			"monday":   {Type: "WORKING_HOURS"},
			"saturday": {Type: "STOP_ALL_DAY"},
		},
	})
	require.NoError(t, err)
	return eng, mem
}

func TestNewEngine_InvalidWorkingHours(t *testing.T) {
	mem := storetest.NewMemory()
	_, err := NewEngine(mem.Bundle().Schedules, config.SessionsConfig{
		WorkingHours: config.WindowConfig{StartUpTime: "bogus", ShutDownTime: "17:00"},
	})
	assert.Error(t, err)
}

func TestDefaultWeek(t *testing.T) {
	eng, _ := newTestEngine(t)
	week := eng.DefaultWeek()

	require.NotNil(t, week.Day(model.Monday))
	assert.Equal(t, model.ScheduleWorkingHours, week.Day(model.Monday).Type)
	assert.Equal(t, model.ScheduleStopAllDay, week.Day(model.Saturday).Type)
	assert.Equal(t, model.ScheduleNone, week.Day(model.Tuesday).Type)
}

func TestReconcileDay(t *testing.T) {
	ctx := context.Background()
	sess := &model.Session{ID: "s1", Owner: "alice"}

	t.Run("equivalent static type writes nothing", func(t *testing.T) {
		eng, mem := newTestEngine(t)
		current := &model.DaySchedule{ID: "sch-1", SessionID: "s1", Day: model.Monday, Type: model.ScheduleWorkingHours}
		desired := &model.DaySchedule{Day: model.Monday, Type: model.ScheduleWorkingHours}

		got, err := eng.ReconcileDay(ctx, sess, model.Monday, current, desired)
		require.NoError(t, err)
		assert.Equal(t, current, got, "existing schedule must be kept")
		assert.Zero(t, mem.ScheduleWrites)
	})

	t.Run("nil desired leaves day untouched", func(t *testing.T) {
		eng, mem := newTestEngine(t)
		current := &model.DaySchedule{ID: "sch-1", Day: model.Monday, Type: model.ScheduleStopAllDay}

		got, err := eng.ReconcileDay(ctx, sess, model.Monday, current, nil)
		require.NoError(t, err)
		assert.Equal(t, current, got)
		assert.Zero(t, mem.ScheduleWrites)
	})

	t.Run("type change replaces the record", func(t *testing.T) {
		eng, mem := newTestEngine(t)
		current := &model.DaySchedule{SessionID: "s1", Day: model.Monday, Type: model.ScheduleStopAllDay}
		require.NoError(t, eng.Schedules.Create(ctx, current))
		writesBefore := mem.ScheduleWrites

		got, err := eng.ReconcileDay(ctx, sess, model.Monday, current, &model.DaySchedule{Day: model.Monday, Type: model.ScheduleStartAllDay})
		require.NoError(t, err)
		assert.Equal(t, model.ScheduleStartAllDay, got.Type)
		assert.NotEmpty(t, got.ID)
		assert.NotEqual(t, current.ID, got.ID)
		assert.Equal(t, 2, mem.ScheduleWrites-writesBefore, "one delete plus one create")
	})

	t.Run("custom to custom is always replaced", func(t *testing.T) {
		eng, mem := newTestEngine(t)
		current := &model.DaySchedule{SessionID: "s1", Day: model.Monday, Type: model.ScheduleCustom, StartUpTime: "08:00", ShutDownTime: "16:00"}
		require.NoError(t, eng.Schedules.Create(ctx, current))
		writesBefore := mem.ScheduleWrites

		got, err := eng.ReconcileDay(ctx, sess, model.Monday, current, customDay("09:00", "17:00"))
		require.NoError(t, err)
		assert.Equal(t, "09:00", got.StartUpTime)
		assert.Equal(t, 2, mem.ScheduleWrites-writesBefore)
	})

	t.Run("clearing to no schedule keeps nothing persisted", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		current := &model.DaySchedule{SessionID: "s1", Day: model.Monday, Type: model.ScheduleStopAllDay}
		require.NoError(t, eng.Schedules.Create(ctx, current))

		got, err := eng.ReconcileDay(ctx, sess, model.Monday, current, &model.DaySchedule{Day: model.Monday, Type: model.ScheduleNone})
		require.NoError(t, err)
		assert.Empty(t, got.ID, "placeholder must carry no persisted id")
		assert.Equal(t, model.ScheduleNone, got.Type)

		listed, err := eng.Schedules.ListDay(ctx, model.Monday)
		require.NoError(t, err)
		assert.Empty(t, listed)
	})
}

func TestReconcileWeek_Idempotent(t *testing.T) {
	ctx := context.Background()
	eng, mem := newTestEngine(t)
	sess := &model.Session{ID: "s1", Owner: "alice"}

	require.NoError(t, eng.ReconcileWeek(ctx, sess, eng.DefaultWeek()))
	firstWrites := mem.ScheduleWrites
	assert.Equal(t, 2, firstWrites, "only monday and saturday create records")

	// Same desired week again: every day is equivalent, nothing is written.
	require.NoError(t, eng.ReconcileWeek(ctx, sess, eng.DefaultWeek()))
	assert.Equal(t, firstWrites, mem.ScheduleWrites)

	require.NotNil(t, sess.Schedule)
	assert.Equal(t, model.ScheduleWorkingHours, sess.Schedule.Day(model.Monday).Type)
	assert.NotEmpty(t, sess.Schedule.Day(model.Monday).ID)
}
