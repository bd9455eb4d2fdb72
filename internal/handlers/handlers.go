// SPDX-License-Identifier: MIT

// Package handlers implements the typed event handlers behind the dispatch
// engine: host-side completions, broker deletion confirmations, the periodic
// schedule tick and the per-session scheduled actions it fans out to.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/driftlab/vdeskd/internal/dispatch"
	"github.com/driftlab/vdeskd/internal/events"
	vlog "github.com/driftlab/vdeskd/internal/log"
	"github.com/driftlab/vdeskd/internal/model"
	"github.com/driftlab/vdeskd/internal/orchestrator"
	"github.com/driftlab/vdeskd/internal/ports"
	"github.com/driftlab/vdeskd/internal/schedule"
	"github.com/driftlab/vdeskd/internal/store"
)

// Set bundles the collaborators the handlers share and exposes them as a
// dispatch registry. Handlers are idempotent: every path either acknowledges
// the event or leaves it for redelivery, never both.
type Set struct {
	Orchestrator *orchestrator.Orchestrator
	Stores       store.Stores
	Provisioner  ports.Provisioner
	Broker       ports.Broker
	Events       *events.Publisher
	Schedules    *schedule.Engine

	now    func() time.Time
	logger zerolog.Logger
}

// New wires a handler set.
func New(o *orchestrator.Orchestrator, stores store.Stores, prov ports.Provisioner, broker ports.Broker, pub *events.Publisher, eng *schedule.Engine) *Set {
	return &Set{
		Orchestrator: o,
		Stores:       stores,
		Provisioner:  prov,
		Broker:       broker,
		Events:       pub,
		Schedules:    eng,
		now:          time.Now,
		logger:       vlog.WithComponent("handlers"),
	}
}

// Registry maps every event type to its handler.
func (s *Set) Registry() dispatch.Registry {
	return dispatch.Registry{
		model.EventHostReady:               dispatch.HandlerFunc(s.HostReady),
		model.EventHostRebootComplete:      dispatch.HandlerFunc(s.HostRebootComplete),
		model.EventInstanceStateChanged:    dispatch.HandlerFunc(s.InstanceStateChanged),
		model.EventValidateSessionDeletion: dispatch.HandlerFunc(s.ValidateSessionDeletion),
		model.EventScheduledTick:           dispatch.HandlerFunc(s.ScheduledTick),
		model.EventScheduledResume:         dispatch.HandlerFunc(s.ScheduledResume),
		model.EventScheduledStop:           dispatch.HandlerFunc(s.ScheduledStop),
		model.EventSessionTerminate:        dispatch.HandlerFunc(s.SessionTerminate),
	}
}

// loadSession fetches the event's session and verifies ownership. A missing
// record or an owner mismatch returns (nil, nil); the caller acknowledges
// without side effects since redelivery cannot fix a stale or forged
// reference. A store read failure is returned as an error so the message
// stays on the queue for redelivery.
func (s *Set) loadSession(ctx context.Context, ev model.Event) (*model.Session, error) {
	if ev.SessionID == "" || ev.Owner == "" {
		s.logger.Error().
			Str(vlog.FieldEventType, string(ev.Type)).
			Msg("event is missing session identity")
		return nil, nil
	}
	sess, err := s.Stores.Sessions.Get(ctx, ev.SessionID)
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Error().
			Str(vlog.FieldSessionID, ev.SessionID).
			Str(vlog.FieldOwner, ev.Owner).
			Str(vlog.FieldEventType, string(ev.Type)).
			Msg("event references an unknown session")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s for %s event: %w", ev.SessionID, ev.Type, err)
	}
	if sess.Owner != ev.Owner {
		s.logger.Error().
			Str(vlog.FieldSessionID, ev.SessionID).
			Str(vlog.FieldOwner, ev.Owner).
			Msg("event owner does not match the session record")
		return nil, nil
	}
	return sess, nil
}
