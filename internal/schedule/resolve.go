// SPDX-License-Identifier: MIT

package schedule

import (
	"fmt"
	"time"

	"github.com/driftlab/vdeskd/internal/model"
)

// ResolveAction maps a day schedule and a point in time to the action the
// controller should take. WORKING_HOURS resolves against the cluster-wide
// working window; CUSTOM resolves against the schedule's own window. Before
// the window opens the session is left as-is.
func ResolveAction(now time.Time, ds *model.DaySchedule, working Window) (model.Action, error) {
	if ds.IsEmpty() {
		return model.ActionNone, nil
	}

	switch ds.Type {
	case model.ScheduleStopAllDay:
		return model.ActionStop, nil
	case model.ScheduleStartAllDay:
		return model.ActionResume, nil
	case model.ScheduleWorkingHours, model.ScheduleCustom:
		window := working
		if ds.Type == model.ScheduleCustom {
			var err error
			window, err = ParseWindow(ds.StartUpTime, ds.ShutDownTime)
			if err != nil {
				return model.ActionNone, err
			}
		}
		at := ClockOf(now)
		switch {
		case at < window.Start:
			return model.ActionNone, nil
		case at < window.End:
			return model.ActionResume, nil
		default:
			return model.ActionStop, nil
		}
	default:
		return model.ActionNone, fmt.Errorf("schedule: unknown schedule type %q", ds.Type)
	}
}

// Equivalent defines the reconciliation equivalence relation: both schedules
// absent, or both present with the same static type. CUSTOM schedules are
// never equivalent since their windows may differ.
func Equivalent(a, b *model.DaySchedule) bool {
	if a.IsEmpty() && b.IsEmpty() {
		return true
	}
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	return a.Type == b.Type && a.Type.IsStatic()
}
