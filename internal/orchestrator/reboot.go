// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"
	"fmt"

	"github.com/driftlab/vdeskd/internal/lifecycle"
	"github.com/driftlab/vdeskd/internal/model"
)

// RebootSessions reboots a batch of READY or ERROR sessions. Unless forced,
// sessions with active remote display connections are rejected; the broker
// is asked for connection counts in one batch query.
func (o *Orchestrator) RebootSessions(ctx context.Context, refs []model.SessionRef) model.BatchResult {
	results := make(model.BatchResult, len(refs))

	var queued []pending
	var needValidation []pending

	for i, ref := range refs {
		sess, reason := o.load(ctx, ref, "reboot")
		if sess == nil {
			results[i] = model.Failure(placeholder(ref), reason)
			continue
		}
		if d := lifecycle.DecisionFor(sess.State, lifecycle.EvRebootRequested); !d.Allowed {
			results[i] = model.Failure(*sess, d.Reason)
			continue
		}
		p := pending{idx: i, sess: sess}
		// Without a remote session there is nothing to be connected to, so
		// those reboots skip the connection check like forced ones.
		if sess.Force || !sess.HasRemoteSession() {
			queued = append(queued, p)
			continue
		}
		needValidation = append(needValidation, p)
	}

	if len(needValidation) > 0 {
		sessions := make([]model.Session, 0, len(needValidation))
		for _, p := range needValidation {
			sessions = append(sessions, *p.sess)
		}
		counts, err := o.Broker.ActiveConnectionCounts(ctx, sessions)
		if err != nil {
			for _, p := range needValidation {
				results[p.idx] = model.Failure(*p.sess, err.Error())
			}
		} else {
			countByRemote := make(map[string]int, len(counts))
			for _, c := range counts {
				countByRemote[c.RemoteSessionID] = c.Count
			}
			for _, p := range needValidation {
				n, ok := countByRemote[p.sess.RemoteSessionID]
				if !ok {
					results[p.idx] = model.Failure(*p.sess,
						fmt.Sprintf("broker returned no connection count for session %s", p.sess.ID))
					continue
				}
				if n > 0 {
					results[p.idx] = model.Failure(*p.sess,
						fmt.Sprintf("there are %d active connection(s) for session %s, terminate them first", n, p.sess.ID))
					continue
				}
				queued = append(queued, p)
			}
		}
	}

	var servers []model.Server
	for _, p := range queued {
		if err := o.transition(ctx, p.sess, lifecycle.EvRebootRequested); err != nil {
			results[p.idx] = model.Failure(*p.sess, err.Error())
			continue
		}
		if p.sess.Server != nil {
			servers = append(servers, *p.sess.Server)
		}
		results[p.idx] = model.Success(*p.sess)
	}

	if len(servers) > 0 {
		if err := o.Provisioner.Reboot(ctx, servers); err != nil {
			o.logger.Error().Err(err).Int("servers", len(servers)).Msg("batched server reboot failed")
		}
	}
	return o.finish("reboot", results)
}
