// SPDX-License-Identifier: MIT

package handlers

import (
	"context"

	"github.com/driftlab/vdeskd/internal/dispatch"
	"github.com/driftlab/vdeskd/internal/lifecycle"
	vlog "github.com/driftlab/vdeskd/internal/log"
	"github.com/driftlab/vdeskd/internal/model"
)

// HostReady fires when the agent on a freshly provisioned or resumed host
// reports the remote display session up. It records the remote session id
// and moves the session to READY. An event whose instance id does not match
// the session's server is treated as forged and dropped.
func (s *Set) HostReady(ctx context.Context, ev model.Event) (dispatch.Outcome, error) {
	sess, err := s.loadSession(ctx, ev)
	if err != nil {
		return dispatch.Handled, err
	}
	if sess == nil {
		return dispatch.Drop, nil
	}
	if sess.Server == nil || ev.InstanceID == "" || sess.Server.InstanceID != ev.InstanceID {
		s.logger.Error().
			Str(vlog.FieldSessionID, sess.ID).
			Str(vlog.FieldServerID, ev.InstanceID).
			Msg("host ready event instance does not match the session server")
		return dispatch.Drop, nil
	}

	switch sess.State {
	case model.StateProvisioning, model.StateResuming:
	default:
		s.logger.Info().
			Str(vlog.FieldSessionID, sess.ID).
			Str(vlog.FieldOldState, string(sess.State)).
			Msg("session is not waiting on a host, ignoring ready event")
		return dispatch.Handled, nil
	}

	if ev.RemoteSessionID != "" {
		sess.RemoteSessionID = ev.RemoteSessionID
	}
	if sess.Server.IsIdle {
		sess.Server.IsIdle = false
	}
	if err := s.Orchestrator.Apply(ctx, sess, lifecycle.EvHostReady); err != nil {
		return dispatch.Handled, err
	}
	return dispatch.Handled, nil
}

// HostRebootComplete marks a rebooted host's session READY again. Hibernated
// hosts never rerun their boot reporting, so this event is also synthesized
// from the instance running notification for them.
func (s *Set) HostRebootComplete(ctx context.Context, ev model.Event) (dispatch.Outcome, error) {
	sess, err := s.loadSession(ctx, ev)
	if err != nil {
		return dispatch.Handled, err
	}
	if sess == nil {
		return dispatch.Drop, nil
	}
	if sess.State != model.StateResuming {
		s.logger.Info().
			Str(vlog.FieldSessionID, sess.ID).
			Str(vlog.FieldOldState, string(sess.State)).
			Msg("session is not resuming, ignoring reboot completion")
		return dispatch.Handled, nil
	}
	if err := s.Orchestrator.Apply(ctx, sess, lifecycle.EvHostReady); err != nil {
		return dispatch.Handled, err
	}
	return dispatch.Handled, nil
}

// InstanceStateChanged reconciles session state with out-of-band power
// changes of the compute host. A host that stops while its session is being
// provisioned or resumed died unexpectedly and faults the session.
func (s *Set) InstanceStateChanged(ctx context.Context, ev model.Event) (dispatch.Outcome, error) {
	if ev.InstanceID == "" {
		s.logger.Error().Msg("instance state event without an instance id, dropping")
		return dispatch.Drop, nil
	}

	switch ev.InstanceState {
	case "stopping", "stopped":
		return s.instanceStopped(ctx, ev)
	case "running":
		return s.instanceRunning(ctx, ev)
	default:
		s.logger.Debug().
			Str(vlog.FieldServerID, ev.InstanceID).
			Str("instance_state", ev.InstanceState).
			Msg("ignoring instance state")
		return dispatch.Handled, nil
	}
}

func (s *Set) instanceStopped(ctx context.Context, ev model.Event) (dispatch.Outcome, error) {
	sess, err := s.loadSession(ctx, ev)
	if err != nil {
		return dispatch.Handled, err
	}
	if sess == nil {
		return dispatch.Drop, nil
	}

	switch sess.State {
	case model.StateStopped, model.StateStoppedIdle, model.StateDeleting, model.StateDeleted, model.StateError:
		return dispatch.Handled, nil

	case model.StateProvisioning, model.StateResuming:
		// The host went down while the session was coming up.
		if err := s.Orchestrator.MarkError(ctx, sess, "compute host stopped unexpectedly"); err != nil {
			return dispatch.Handled, err
		}
		return dispatch.Handled, nil
	}

	// READY or STOPPING: a stop was in flight or the host was powered down
	// out of band.
	if sess.State == model.StateReady {
		if err := s.Orchestrator.Apply(ctx, sess, lifecycle.EvStopRequested); err != nil {
			return dispatch.Handled, err
		}
	}
	if ev.InstanceState == "stopped" {
		kind := lifecycle.EvStopConfirmed
		if sess.Server != nil && sess.Server.IsIdle {
			kind = lifecycle.EvIdleStopConfirmed
		}
		sess.RemoteSessionID = ""
		if err := s.Orchestrator.Apply(ctx, sess, kind); err != nil {
			return dispatch.Handled, err
		}
	}
	return dispatch.Handled, nil
}

func (s *Set) instanceRunning(ctx context.Context, ev model.Event) (dispatch.Outcome, error) {
	sess, err := s.loadSession(ctx, ev)
	if err != nil {
		return dispatch.Handled, err
	}
	if sess == nil {
		return dispatch.Drop, nil
	}
	if sess.HibernationCapable && sess.State == model.StateResuming {
		if err := s.Events.Publish(ctx, model.Event{
			Type:       model.EventHostRebootComplete,
			SessionID:  sess.ID,
			Owner:      sess.Owner,
			InstanceID: ev.InstanceID,
		}); err != nil {
			return dispatch.Handled, err
		}
	}
	return dispatch.Handled, nil
}
