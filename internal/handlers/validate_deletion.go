// SPDX-License-Identifier: MIT

package handlers

import (
	"context"

	"github.com/driftlab/vdeskd/internal/dispatch"
	"github.com/driftlab/vdeskd/internal/lifecycle"
	vlog "github.com/driftlab/vdeskd/internal/log"
	"github.com/driftlab/vdeskd/internal/model"
)

// ValidateSessionDeletion polls the broker after a stop or terminate was
// submitted. While the broker still reports the remote session the event is
// left for redelivery; once it is gone the deferred half of the operation
// runs: power-down for a stop, full record cleanup for a terminate.
func (s *Set) ValidateSessionDeletion(ctx context.Context, ev model.Event) (dispatch.Outcome, error) {
	sess, err := s.loadSession(ctx, ev)
	if err != nil {
		return dispatch.Handled, err
	}
	if sess == nil {
		return dispatch.Drop, nil
	}

	if sess.State != model.StateStopping && sess.State != model.StateDeleting {
		s.logger.Info().
			Str(vlog.FieldSessionID, sess.ID).
			Str(vlog.FieldOldState, string(sess.State)).
			Msg("session is not waiting on broker teardown, ignoring event")
		return dispatch.Handled, nil
	}

	if sess.HasRemoteSession() {
		exists, err := s.Broker.DescribeSession(ctx, sess.RemoteSessionID)
		if err != nil {
			return dispatch.Handled, err
		}
		if exists {
			s.logger.Debug().
				Str(vlog.FieldSessionID, sess.ID).
				Msg("broker still reports the remote session, retrying later")
			return dispatch.RetryLater, nil
		}
	}

	if sess.State == model.StateDeleting {
		if err := s.Orchestrator.FinalizeDeletion(ctx, sess); err != nil {
			return dispatch.Handled, err
		}
		return dispatch.Handled, nil
	}

	// STOPPING: the remote session is gone, power the host down and confirm.
	return s.confirmStop(ctx, sess)
}

// confirmStop powers the host down now that the broker released the remote
// session and records the stop. Idle-initiated stops land in STOPPED_IDLE so
// the schedule engine can tell them apart from user stops.
func (s *Set) confirmStop(ctx context.Context, sess *model.Session) (dispatch.Outcome, error) {
	if sess.Server != nil {
		servers := []model.Server{*sess.Server}
		var err error
		if sess.HibernationCapable {
			err = s.Provisioner.Hibernate(ctx, servers)
		} else {
			err = s.Provisioner.Stop(ctx, servers)
		}
		if err != nil {
			return dispatch.Handled, err
		}
	}

	kind := lifecycle.EvStopConfirmed
	if sess.Server != nil && sess.Server.IsIdle {
		kind = lifecycle.EvIdleStopConfirmed
	}
	sess.RemoteSessionID = ""
	if err := s.Orchestrator.Apply(ctx, sess, kind); err != nil {
		return dispatch.Handled, err
	}
	return dispatch.Handled, nil
}
