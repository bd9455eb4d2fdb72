// SPDX-License-Identifier: MIT

// Package events publishes typed controller events onto the queue.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/driftlab/vdeskd/internal/metrics"
	"github.com/driftlab/vdeskd/internal/model"
	"github.com/driftlab/vdeskd/internal/queue"
)

// Publisher serialises events and hands them to the queue. The ordering
// group defaults to the session id so per-session causality is preserved.
type Publisher struct {
	Queue queue.Queue
}

// Publish enqueues the event under its ordering group.
func (p *Publisher) Publish(ctx context.Context, ev model.Event) error {
	if ev.GroupID == "" {
		if ev.SessionID != "" {
			ev.GroupID = ev.SessionID
		} else {
			ev.GroupID = model.ClusterEventGroup
		}
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", ev.Type, err)
	}
	if err := p.Queue.Publish(ctx, ev.GroupID, body); err != nil {
		return fmt.Errorf("events: publish %s: %w", ev.Type, err)
	}
	metrics.IncEventPublished(string(ev.Type))
	return nil
}

// ValidateSessionDeletion asks the deletion-confirmation handler to verify
// broker-side teardown of the given session.
func (p *Publisher) ValidateSessionDeletion(ctx context.Context, sessionID, owner string) error {
	return p.Publish(ctx, model.Event{
		Type:      model.EventValidateSessionDeletion,
		SessionID: sessionID,
		Owner:     owner,
	})
}

// ScheduledResume requests a schedule-driven resume of the session.
func (p *Publisher) ScheduledResume(ctx context.Context, sessionID, owner string) error {
	return p.Publish(ctx, model.Event{
		Type:      model.EventScheduledResume,
		SessionID: sessionID,
		Owner:     owner,
	})
}

// ScheduledStop requests a schedule-driven stop of the session.
func (p *Publisher) ScheduledStop(ctx context.Context, sessionID, owner string) error {
	return p.Publish(ctx, model.Event{
		Type:      model.EventScheduledStop,
		SessionID: sessionID,
		Owner:     owner,
	})
}

// ScheduledTick fans the periodic wall-clock tick into the queue.
func (p *Publisher) ScheduledTick(ctx context.Context, hhmm string) error {
	return p.Publish(ctx, model.Event{
		GroupID: model.ClusterEventGroup,
		Type:    model.EventScheduledTick,
		Time:    hhmm,
	})
}

// SessionTerminate requests asynchronous termination of the session.
func (p *Publisher) SessionTerminate(ctx context.Context, sessionID, owner string, force bool) error {
	return p.Publish(ctx, model.Event{
		Type:      model.EventSessionTerminate,
		SessionID: sessionID,
		Owner:     owner,
		Force:     force,
	})
}
