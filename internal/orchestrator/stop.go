// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"
	"fmt"

	"github.com/driftlab/vdeskd/internal/lifecycle"
	"github.com/driftlab/vdeskd/internal/model"
)

// StopSessions stops a batch of READY sessions. Sessions the broker never
// registered are stopped directly (hibernate when capable, plain stop
// otherwise); the rest go through one batched broker delete call and await
// asynchronous teardown confirmation.
func (o *Orchestrator) StopSessions(ctx context.Context, refs []model.SessionRef) model.BatchResult {
	results := make(model.BatchResult, len(refs))

	var direct []pending
	var viaBroker []pending

	for i, ref := range refs {
		sess, reason := o.load(ctx, ref, "stop")
		if sess == nil {
			results[i] = model.Failure(placeholder(ref), reason)
			continue
		}
		if d := lifecycle.DecisionFor(sess.State, lifecycle.EvStopRequested); !d.Allowed {
			results[i] = model.Failure(*sess, d.Reason)
			continue
		}
		if !sess.HasRemoteSession() {
			direct = append(direct, pending{idx: i, sess: sess})
			continue
		}
		viaBroker = append(viaBroker, pending{idx: i, sess: sess})
	}

	// One broker call for the whole batch.
	if len(viaBroker) > 0 {
		o.settleBrokerDeletions(ctx, viaBroker, lifecycle.EvStopRequested, results)
	}

	// Direct stops bypass the broker and power the host down immediately.
	var toStop, toHibernate []model.Server
	for _, p := range direct {
		if err := o.transition(ctx, p.sess, lifecycle.EvStopRequested); err != nil {
			results[p.idx] = model.Failure(*p.sess, err.Error())
			continue
		}
		if p.sess.Server != nil {
			if p.sess.HibernationCapable {
				toHibernate = append(toHibernate, *p.sess.Server)
			} else {
				toStop = append(toStop, *p.sess.Server)
			}
		}
		results[p.idx] = model.Success(*p.sess)
	}

	o.stopOrHibernate(ctx, toStop, toHibernate)
	return o.finish("stop", results)
}

// settleBrokerDeletions submits one batched broker delete for the pending
// sessions and settles every item: rejected items carry the broker's reason
// verbatim, items the response mentions in neither list fail outright, and
// accepted items transition via kind. The teardown-confirmation event is
// queued before the transition; if it cannot be queued the item fails with
// its state untouched, and a stray confirmation for a session that never
// transitioned is ignored by its handler.
func (o *Orchestrator) settleBrokerDeletions(ctx context.Context, viaBroker []pending, kind lifecycle.EventKind, results model.BatchResult) {
	sessions := make([]model.Session, 0, len(viaBroker))
	for _, p := range viaBroker {
		sessions = append(sessions, *p.sess)
	}
	succeeded, failed, err := o.Broker.DeleteSessions(ctx, sessions)
	if err != nil {
		for _, p := range viaBroker {
			results[p.idx] = model.Failure(*p.sess, err.Error())
		}
		return
	}

	accepted := make(map[string]bool, len(succeeded))
	for _, remoteID := range succeeded {
		accepted[remoteID] = true
	}
	rejected := make(map[string]string, len(failed))
	for _, f := range failed {
		rejected[f.RemoteSessionID] = f.Reason
	}

	for _, p := range viaBroker {
		if reason, ok := rejected[p.sess.RemoteSessionID]; ok {
			results[p.idx] = model.Failure(*p.sess, reason)
			continue
		}
		if !accepted[p.sess.RemoteSessionID] {
			results[p.idx] = model.Failure(*p.sess,
				fmt.Sprintf("broker returned no result for session %s", p.sess.ID))
			continue
		}
		if perr := o.Events.ValidateSessionDeletion(ctx, p.sess.ID, p.sess.Owner); perr != nil {
			results[p.idx] = model.Failure(*p.sess, perr.Error())
			continue
		}
		if terr := o.transition(ctx, p.sess, kind); terr != nil {
			results[p.idx] = model.Failure(*p.sess, terr.Error())
			continue
		}
		results[p.idx] = model.Success(*p.sess)
	}
}

// stopOrHibernate submits the accumulated servers in two batched calls.
// Both are fire-and-forget; failures are logged, not surfaced per item.
func (o *Orchestrator) stopOrHibernate(ctx context.Context, toStop, toHibernate []model.Server) {
	if len(toStop) > 0 {
		if err := o.Provisioner.Stop(ctx, toStop); err != nil {
			o.logger.Error().Err(err).Int("servers", len(toStop)).Msg("batched server stop failed")
		}
	}
	if len(toHibernate) > 0 {
		if err := o.Provisioner.Hibernate(ctx, toHibernate); err != nil {
			o.logger.Error().Err(err).Int("servers", len(toHibernate)).Msg("batched server hibernate failed")
		}
	}
}
