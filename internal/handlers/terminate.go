// SPDX-License-Identifier: MIT

package handlers

import (
	"context"

	"github.com/driftlab/vdeskd/internal/dispatch"
	vlog "github.com/driftlab/vdeskd/internal/log"
	"github.com/driftlab/vdeskd/internal/model"
)

// SessionTerminate runs a deferred teardown request. Sessions still moving
// through a transient state are retried until the batch operation accepts
// them.
func (s *Set) SessionTerminate(ctx context.Context, ev model.Event) (dispatch.Outcome, error) {
	sess, err := s.loadSession(ctx, ev)
	if err != nil {
		return dispatch.Handled, err
	}
	if sess == nil {
		return dispatch.Drop, nil
	}
	if sess.State == model.StateDeleting || sess.State == model.StateDeleted {
		return dispatch.Handled, nil
	}

	ref := model.SessionRef{ID: sess.ID, Owner: sess.Owner, Force: ev.Force}
	results := s.Orchestrator.TerminateSessions(ctx, []model.SessionRef{ref})
	if failed := results.Failed(); len(failed) > 0 {
		s.logger.Warn().
			Str(vlog.FieldSessionID, sess.ID).
			Str("reason", failed[0].FailureReason).
			Msg("deferred terminate failed, retrying later")
		return dispatch.RetryLater, nil
	}
	return dispatch.Handled, nil
}
