// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"

	"github.com/driftlab/vdeskd/internal/lifecycle"
	"github.com/driftlab/vdeskd/internal/model"
)

// ResumeSessions starts the hosts of a batch of stopped sessions with one
// provisioner call. A global start failure fails every session in the batch
// with the provisioner's error.
func (o *Orchestrator) ResumeSessions(ctx context.Context, refs []model.SessionRef) model.BatchResult {
	results := make(model.BatchResult, len(refs))

	var eligible []pending
	var servers []model.Server

	for i, ref := range refs {
		sess, reason := o.load(ctx, ref, "resume")
		if sess == nil {
			results[i] = model.Failure(placeholder(ref), reason)
			continue
		}
		if d := lifecycle.DecisionFor(sess.State, lifecycle.EvResumeRequested); !d.Allowed {
			results[i] = model.Failure(*sess, d.Reason)
			continue
		}
		if sess.Server == nil {
			results[i] = model.Failure(*sess, "session has no server record, cannot resume")
			continue
		}
		eligible = append(eligible, pending{idx: i, sess: sess})
		servers = append(servers, *sess.Server)
	}

	if len(eligible) == 0 {
		return o.finish("resume", results)
	}

	// One batched start call gates the whole batch.
	if err := o.Provisioner.Start(ctx, servers); err != nil {
		for _, p := range eligible {
			results[p.idx] = model.Failure(*p.sess, err.Error())
		}
		return o.finish("resume", results)
	}

	for _, p := range eligible {
		if err := o.transition(ctx, p.sess, lifecycle.EvResumeRequested); err != nil {
			results[p.idx] = model.Failure(*p.sess, err.Error())
			continue
		}
		results[p.idx] = model.Success(*p.sess)
	}
	return o.finish("resume", results)
}
