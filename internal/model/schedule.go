// SPDX-License-Identifier: MIT

package model

import "time"

// ScheduleType classifies a single day's start/stop policy.
type ScheduleType string

const (
	ScheduleNone         ScheduleType = "NO_SCHEDULE"
	ScheduleWorkingHours ScheduleType = "WORKING_HOURS"
	ScheduleStopAllDay   ScheduleType = "STOP_ALL_DAY"
	ScheduleStartAllDay  ScheduleType = "START_ALL_DAY"
	ScheduleCustom       ScheduleType = "CUSTOM"
)

// IsStatic reports whether two schedules of this type are interchangeable
// without comparing time windows.
func (t ScheduleType) IsStatic() bool {
	switch t {
	case ScheduleNone, ScheduleWorkingHours, ScheduleStopAllDay, ScheduleStartAllDay:
		return true
	}
	return false
}

// DayOfWeek is the lowercase day key used for schedule storage and config.
type DayOfWeek string

const (
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
	Sunday    DayOfWeek = "sunday"
)

// DaysOfWeek lists all days Monday..Sunday in order.
func DaysOfWeek() []DayOfWeek {
	return []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// DayOfWeekFromTime maps a wall-clock instant to its schedule day key.
func DayOfWeekFromTime(t time.Time) DayOfWeek {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// DaySchedule is one day's policy for one session. A NO_SCHEDULE entry is a
// placeholder and never carries a persisted id.
type DaySchedule struct {
	ID        string       `json:"schedule_id,omitempty"`
	SessionID string       `json:"session_id,omitempty"`
	Owner     string       `json:"owner,omitempty"`
	Day       DayOfWeek    `json:"day_of_week"`
	Type      ScheduleType `json:"schedule_type"`

	// Wall-clock HH:MM window, only meaningful for CUSTOM schedules.
	StartUpTime  string `json:"start_up_time,omitempty"`
	ShutDownTime string `json:"shut_down_time,omitempty"`
}

// IsEmpty reports whether the schedule is absent or a NO_SCHEDULE placeholder.
func (s *DaySchedule) IsEmpty() bool {
	return s == nil || s.Type == "" || s.Type == ScheduleNone
}

// WeekSchedule holds the seven per-day schedules of a session.
type WeekSchedule struct {
	Monday    *DaySchedule `json:"monday,omitempty"`
	Tuesday   *DaySchedule `json:"tuesday,omitempty"`
	Wednesday *DaySchedule `json:"wednesday,omitempty"`
	Thursday  *DaySchedule `json:"thursday,omitempty"`
	Friday    *DaySchedule `json:"friday,omitempty"`
	Saturday  *DaySchedule `json:"saturday,omitempty"`
	Sunday    *DaySchedule `json:"sunday,omitempty"`
}

// Day returns the schedule for the given day, or nil.
func (w *WeekSchedule) Day(d DayOfWeek) *DaySchedule {
	if w == nil {
		return nil
	}
	switch d {
	case Monday:
		return w.Monday
	case Tuesday:
		return w.Tuesday
	case Wednesday:
		return w.Wednesday
	case Thursday:
		return w.Thursday
	case Friday:
		return w.Friday
	case Saturday:
		return w.Saturday
	case Sunday:
		return w.Sunday
	}
	return nil
}

// SetDay replaces the schedule for the given day.
func (w *WeekSchedule) SetDay(d DayOfWeek, s *DaySchedule) {
	switch d {
	case Monday:
		w.Monday = s
	case Tuesday:
		w.Tuesday = s
	case Wednesday:
		w.Wednesday = s
	case Thursday:
		w.Thursday = s
	case Friday:
		w.Friday = s
	case Saturday:
		w.Saturday = s
	case Sunday:
		w.Sunday = s
	}
}

// Action is the decision the schedule engine makes for one session at one
// point in time.
type Action int

const (
	ActionNone Action = iota
	ActionResume
	ActionStop
)

func (a Action) String() string {
	switch a {
	case ActionResume:
		return "resume"
	case ActionStop:
		return "stop"
	default:
		return "none"
	}
}
