// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"

	"github.com/driftlab/vdeskd/internal/lifecycle"
	vlog "github.com/driftlab/vdeskd/internal/log"
	"github.com/driftlab/vdeskd/internal/model"
)

// TerminateSessions tears a batch of sessions down. Sessions the broker
// never registered, or that are already stopped, are terminated directly:
// their hosts are terminated and their schedules, permission grants and
// record removed here. Everything else goes through the broker delete path;
// its cleanup is deferred to the deletion-confirmation handler so it never
// runs before the remote resource is actually gone.
func (o *Orchestrator) TerminateSessions(ctx context.Context, refs []model.SessionRef) model.BatchResult {
	results := make(model.BatchResult, len(refs))

	var direct []pending
	var viaBroker []pending

	for i, ref := range refs {
		sess, reason := o.load(ctx, ref, "terminate")
		if sess == nil {
			results[i] = model.Failure(placeholder(ref), reason)
			continue
		}
		p := pending{idx: i, sess: sess}
		if !sess.HasRemoteSession() || sess.State.IsStopped() {
			direct = append(direct, p)
			continue
		}
		viaBroker = append(viaBroker, p)
	}

	if len(viaBroker) > 0 {
		o.settleBrokerDeletions(ctx, viaBroker, lifecycle.EvDeleteRequested, results)
	}

	// Terminate the hosts of the direct batch first, then clean up records.
	var servers []model.Server
	for _, p := range direct {
		if p.sess.Server != nil {
			servers = append(servers, *p.sess.Server)
		}
	}
	if len(servers) > 0 {
		if err := o.Provisioner.Terminate(ctx, servers); err != nil {
			o.logger.Error().Err(err).Int("servers", len(servers)).Msg("batched server terminate failed")
		}
	}

	for _, p := range direct {
		if err := o.removeSessionRecords(ctx, p.sess); err != nil {
			results[p.idx] = model.Failure(*p.sess, err.Error())
			continue
		}
		p.sess.State = model.StateDeleted
		results[p.idx] = model.Success(*p.sess)
	}
	return o.finish("terminate", results)
}

// removeSessionRecords deletes the session's schedules, permission grants
// and record. Called from the direct terminate branch and from the
// deletion-confirmation handler once the broker reports the remote session
// gone.
func (o *Orchestrator) removeSessionRecords(ctx context.Context, sess *model.Session) error {
	if err := o.Schedules.DeleteForSession(ctx, sess.ID); err != nil {
		return err
	}
	if err := o.Stores.Permissions.DeleteForSession(ctx, sess.ID); err != nil {
		return err
	}
	if err := o.Stores.Sessions.Delete(ctx, sess.ID); err != nil {
		return err
	}
	o.logger.Info().
		Str(vlog.FieldSessionID, sess.ID).
		Str(vlog.FieldOwner, sess.Owner).
		Msg("session records removed")
	return nil
}

// FinalizeDeletion completes the broker-confirmed teardown of a session:
// host terminate, record cleanup, DELETED reported. Invoked by the
// deletion-confirmation handler.
func (o *Orchestrator) FinalizeDeletion(ctx context.Context, sess *model.Session) error {
	if sess.Server != nil {
		if err := o.Provisioner.Terminate(ctx, []model.Server{*sess.Server}); err != nil {
			o.logger.Error().Err(err).Str(vlog.FieldSessionID, sess.ID).Msg("server terminate failed during deletion finalization")
		}
	}
	if err := o.removeSessionRecords(ctx, sess); err != nil {
		return err
	}
	sess.State = model.StateDeleted
	return nil
}

// UpdateSchedule reconciles the session's weekly schedule against desired,
// writing only the days that actually changed.
func (o *Orchestrator) UpdateSchedule(ctx context.Context, ref model.SessionRef, desired *model.WeekSchedule) model.Result {
	sess, reason := o.load(ctx, ref, "update schedule for")
	if sess == nil {
		return model.Failure(placeholder(ref), reason)
	}
	week, err := o.Schedules.Schedules.Week(ctx, sess.ID)
	if err != nil {
		return model.Failure(*sess, err.Error())
	}
	sess.Schedule = week
	if err := o.Schedules.ReconcileWeek(ctx, sess, desired); err != nil {
		return model.Failure(*sess, err.Error())
	}
	return model.Success(*sess)
}

// MarkError forces the session into ERROR with the given reason. Used by
// event handlers when a host-side completion reports failure.
func (o *Orchestrator) MarkError(ctx context.Context, sess *model.Session, reason string) error {
	sess.FailureReason = reason
	return o.transition(ctx, sess, lifecycle.EvFault)
}
