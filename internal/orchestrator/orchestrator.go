// SPDX-License-Identifier: MIT

// Package orchestrator drives session lifecycle transitions: batch stop,
// resume, reboot and terminate operations against the provisioner and the
// display broker, plus single-session creation.
//
// Batch operations are not transactional across items. Each item's read,
// precondition check and conditional write happen independently; concurrent
// batches touching the same session are resolved by the store's conditional
// update, not by locking.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/driftlab/vdeskd/internal/events"
	"github.com/driftlab/vdeskd/internal/lifecycle"
	vlog "github.com/driftlab/vdeskd/internal/log"
	"github.com/driftlab/vdeskd/internal/metrics"
	"github.com/driftlab/vdeskd/internal/model"
	"github.com/driftlab/vdeskd/internal/ports"
	"github.com/driftlab/vdeskd/internal/schedule"
	"github.com/driftlab/vdeskd/internal/store"
)

// Orchestrator owns session records and the batch operations over them.
type Orchestrator struct {
	Stores      store.Stores
	Provisioner ports.Provisioner
	Broker      ports.Broker
	Events      *events.Publisher
	Schedules   *schedule.Engine

	logger zerolog.Logger
}

// New wires an orchestrator.
func New(stores store.Stores, prov ports.Provisioner, broker ports.Broker, pub *events.Publisher, sched *schedule.Engine) *Orchestrator {
	return &Orchestrator{
		Stores:      stores,
		Provisioner: prov,
		Broker:      broker,
		Events:      pub,
		Schedules:   sched,
		logger:      vlog.WithComponent("orchestrator"),
	}
}

// pending tracks one batch item through the phases of an operation so the
// response keeps request order.
type pending struct {
	idx  int
	sess *model.Session
}

// load re-reads the authoritative session record. Only the identity and the
// force flag of the reference are trusted.
func (o *Orchestrator) load(ctx context.Context, ref model.SessionRef, verb string) (*model.Session, string) {
	sess, err := o.Stores.Sessions.Get(ctx, ref.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Sprintf("invalid session id %s for user %s, nothing to %s", ref.ID, ref.Owner, verb)
	}
	if err != nil {
		return nil, fmt.Sprintf("failed to read session %s: %v", ref.ID, err)
	}
	sess.Force = ref.Force
	return sess, ""
}

// transition applies the lifecycle event and writes the session back with a
// conditional update on its previous state. A lost race surfaces as an
// error, never as a silent overwrite.
func (o *Orchestrator) transition(ctx context.Context, sess *model.Session, ev lifecycle.EventKind) error {
	from := sess.State
	if err := lifecycle.Apply(sess, ev); err != nil {
		return err
	}
	if err := o.Stores.Sessions.UpdateIf(ctx, sess, from); err != nil {
		sess.State = from
		return err
	}
	o.logger.Info().
		Str(vlog.FieldSessionID, sess.ID).
		Str(vlog.FieldOldState, string(from)).
		Str(vlog.FieldNewState, string(sess.State)).
		Msg("session state changed")
	return nil
}

// Apply runs one lifecycle transition on behalf of an event handler, with
// the same conditional write the batch operations use.
func (o *Orchestrator) Apply(ctx context.Context, sess *model.Session, ev lifecycle.EventKind) error {
	return o.transition(ctx, sess, ev)
}

func placeholder(ref model.SessionRef) model.Session {
	return model.Session{ID: ref.ID, Owner: ref.Owner}
}

func (o *Orchestrator) finish(op string, results model.BatchResult) model.BatchResult {
	for _, r := range results {
		metrics.IncBatchItem(op, r.Failed())
	}
	return results
}

// CreateSession provisions a host for the new session, applies the requested
// weekly schedule (or the cluster default when none was given) and persists
// the record in PROVISIONING state. On
// provisioning failure nothing is persisted and the provisioner's reason is
// returned on the result.
func (o *Orchestrator) CreateSession(ctx context.Context, sess model.Session) model.Result {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}

	server, err := o.Provisioner.Provision(ctx, ports.ProvisionSpec{
		SessionID:   sess.ID,
		Owner:       sess.Owner,
		DisplayName: sess.DisplayName,
		Hibernation: sess.HibernationCapable,
	})
	if err != nil {
		o.logger.Error().Err(err).Str(vlog.FieldSessionID, sess.ID).Msg("host provisioning failed")
		metrics.IncBatchItem("create", true)
		return model.Failure(sess, err.Error())
	}
	sess.Server = server

	desired := sess.Schedule
	if desired == nil {
		desired = o.Schedules.DefaultWeek()
	}
	if err := o.Schedules.ReconcileWeek(ctx, &sess, desired); err != nil {
		metrics.IncBatchItem("create", true)
		return model.Failure(sess, err.Error())
	}

	sess.State = model.StateProvisioning
	if err := o.Stores.Sessions.Create(ctx, &sess); err != nil {
		metrics.IncBatchItem("create", true)
		return model.Failure(sess, err.Error())
	}

	o.logger.Info().
		Str(vlog.FieldSessionID, sess.ID).
		Str(vlog.FieldOwner, sess.Owner).
		Str(vlog.FieldNewState, string(sess.State)).
		Msg("session created")
	metrics.IncBatchItem("create", false)
	return model.Success(sess)
}
