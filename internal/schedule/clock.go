// SPDX-License-Identifier: MIT

// Package schedule decides stop/resume actions from wall-clock time and
// reconciles desired weekly schedules against persisted ones with the
// minimum number of store writes.
package schedule

import (
	"fmt"
	"time"
)

// Clock is a wall-clock time of day in minutes since midnight.
type Clock int

// ParseClock parses "HH:MM".
func ParseClock(s string) (Clock, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("schedule: invalid clock time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("schedule: invalid clock time %q", s)
	}
	return Clock(h*60 + m), nil
}

// ClockOf truncates an instant to its time of day.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

// Window is a [start, end) wall-clock interval.
type Window struct {
	Start Clock
	End   Clock
}

// ParseWindow parses a start/end HH:MM pair.
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: s, End: e}, nil
}
