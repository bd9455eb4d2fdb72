// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"time"

	"github.com/driftlab/vdeskd/internal/dispatch"
	vlog "github.com/driftlab/vdeskd/internal/log"
	"github.com/driftlab/vdeskd/internal/model"
	"github.com/driftlab/vdeskd/internal/schedule"
)

// ScheduledTick walks every persisted schedule for the current day, resolves
// the action due at the tick's wall-clock time and fans out per-session
// resume/stop events. The fan-out events carry the session id as their group
// so they serialize with everything else touching that session.
func (s *Set) ScheduledTick(ctx context.Context, ev model.Event) (dispatch.Outcome, error) {
	clock, err := schedule.ParseClock(ev.Time)
	if err != nil {
		s.logger.Error().Err(err).Msg("tick carries an unparseable time, dropping")
		return dispatch.Drop, nil
	}

	now := s.now()
	at := time.Date(now.Year(), now.Month(), now.Day(), int(clock)/60, int(clock)%60, 0, 0, now.Location())
	day := model.DayOfWeekFromTime(at)

	schedules, err := s.Stores.Schedules.ListDay(ctx, day)
	if err != nil {
		return dispatch.Handled, err
	}

	for i := range schedules {
		ds := &schedules[i]
		action, err := schedule.ResolveAction(at, ds, s.Schedules.WorkingHours)
		if err != nil {
			s.logger.Error().Err(err).
				Str(vlog.FieldSessionID, ds.SessionID).
				Str(vlog.FieldScheduleType, string(ds.Type)).
				Msg("failed to resolve schedule action")
			continue
		}
		switch action {
		case model.ActionResume:
			err = s.Events.ScheduledResume(ctx, ds.SessionID, ds.Owner)
		case model.ActionStop:
			err = s.Events.ScheduledStop(ctx, ds.SessionID, ds.Owner)
		default:
			continue
		}
		if err != nil {
			s.logger.Error().Err(err).
				Str(vlog.FieldSessionID, ds.SessionID).
				Msg("failed to publish scheduled action")
		}
	}
	return dispatch.Handled, nil
}

// ScheduledResume resumes a session its schedule says should be running.
// Sessions not currently stopped are left alone; a stop that is still in
// flight resolves on a later tick.
func (s *Set) ScheduledResume(ctx context.Context, ev model.Event) (dispatch.Outcome, error) {
	sess, err := s.loadSession(ctx, ev)
	if err != nil {
		return dispatch.Handled, err
	}
	if sess == nil {
		return dispatch.Drop, nil
	}
	if !sess.State.IsStopped() {
		s.logger.Info().
			Str(vlog.FieldSessionID, sess.ID).
			Str(vlog.FieldOldState, string(sess.State)).
			Msg("session is not stopped, skipping scheduled resume")
		return dispatch.Handled, nil
	}

	ref := model.SessionRef{ID: sess.ID, Owner: sess.Owner}
	results := s.Orchestrator.ResumeSessions(ctx, []model.SessionRef{ref})
	if failed := results.Failed(); len(failed) > 0 {
		s.logger.Warn().
			Str(vlog.FieldSessionID, sess.ID).
			Str("reason", failed[0].FailureReason).
			Msg("scheduled resume failed, retrying later")
		return dispatch.RetryLater, nil
	}
	return dispatch.Handled, nil
}

// ScheduledStop stops a session its schedule says should be down. The stop
// is marked idle so the resulting state is STOPPED_IDLE rather than STOPPED.
func (s *Set) ScheduledStop(ctx context.Context, ev model.Event) (dispatch.Outcome, error) {
	sess, err := s.loadSession(ctx, ev)
	if err != nil {
		return dispatch.Handled, err
	}
	if sess == nil {
		return dispatch.Drop, nil
	}
	if sess.State != model.StateReady {
		s.logger.Info().
			Str(vlog.FieldSessionID, sess.ID).
			Str(vlog.FieldOldState, string(sess.State)).
			Msg("session is not ready, skipping scheduled stop")
		return dispatch.Handled, nil
	}

	if sess.Server != nil && !sess.Server.IsIdle {
		sess.Server.IsIdle = true
		if err := s.Stores.Sessions.Update(ctx, sess); err != nil {
			return dispatch.Handled, err
		}
	}

	ref := model.SessionRef{ID: sess.ID, Owner: sess.Owner}
	results := s.Orchestrator.StopSessions(ctx, []model.SessionRef{ref})
	if failed := results.Failed(); len(failed) > 0 {
		s.logger.Warn().
			Str(vlog.FieldSessionID, sess.ID).
			Str("reason", failed[0].FailureReason).
			Msg("scheduled stop failed, retrying later")
		return dispatch.RetryLater, nil
	}
	return dispatch.Handled, nil
}
