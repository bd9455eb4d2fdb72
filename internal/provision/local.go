// SPDX-License-Identifier: MIT

// Package provision carries the built-in local backend for the provisioner
// and broker ports. It simulates compute hosts and remote display sessions
// in process, reporting completions through the same event queue a real
// fleet would, so the full lifecycle runs on a laptop. Production
// deployments swap in cloud-backed implementations of the same interfaces.
package provision

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/driftlab/vdeskd/internal/events"
	vlog "github.com/driftlab/vdeskd/internal/log"
	"github.com/driftlab/vdeskd/internal/model"
	"github.com/driftlab/vdeskd/internal/ports"
)

// hostState is the simulated power state of a local host.
type hostState int

const (
	hostRunning hostState = iota
	hostStopped
	hostTerminated
)

type localHost struct {
	sessionID string
	owner     string
	state     hostState
}

// Local implements both the Provisioner and Broker ports against in-memory
// hosts. Provision and Start publish host-ready events asynchronously via
// the queue, exactly like real host agents call home.
type Local struct {
	Events *events.Publisher

	mu      sync.Mutex
	hosts   map[string]*localHost // by instance id
	remotes map[string]string     // remote session id -> instance id
	logger  zerolog.Logger
}

// NewLocal wires a local backend publishing completions through pub.
func NewLocal(pub *events.Publisher) *Local {
	return &Local{
		Events:  pub,
		hosts:   make(map[string]*localHost),
		remotes: make(map[string]string),
		logger:  vlog.WithComponent("provision-local"),
	}
}

var (
	_ ports.Provisioner = (*Local)(nil)
	_ ports.Broker      = (*Local)(nil)
)

// Provision creates a simulated host and immediately reports it ready with
// a fresh remote session.
func (l *Local) Provision(ctx context.Context, spec ports.ProvisionSpec) (*model.Server, error) {
	instanceID := "i-" + uuid.NewString()[:12]
	remoteID := uuid.NewString()

	l.mu.Lock()
	l.hosts[instanceID] = &localHost{sessionID: spec.SessionID, owner: spec.Owner, state: hostRunning}
	l.remotes[remoteID] = instanceID
	l.mu.Unlock()

	l.logger.Info().
		Str(vlog.FieldSessionID, spec.SessionID).
		Str(vlog.FieldServerID, instanceID).
		Msg("local host provisioned")

	if err := l.Events.Publish(ctx, model.Event{
		Type:            model.EventHostReady,
		SessionID:       spec.SessionID,
		Owner:           spec.Owner,
		InstanceID:      instanceID,
		RemoteSessionID: remoteID,
	}); err != nil {
		return nil, err
	}
	return &model.Server{InstanceID: instanceID}, nil
}

// Start powers hosts back up and reports each ready with a new remote
// session.
func (l *Local) Start(ctx context.Context, servers []model.Server) error {
	for _, srv := range servers {
		l.mu.Lock()
		host, ok := l.hosts[srv.InstanceID]
		if !ok || host.state == hostTerminated {
			l.mu.Unlock()
			return fmt.Errorf("provision: unknown host %s", srv.InstanceID)
		}
		host.state = hostRunning
		remoteID := uuid.NewString()
		l.remotes[remoteID] = srv.InstanceID
		sessionID, owner := host.sessionID, host.owner
		l.mu.Unlock()

		if err := l.Events.Publish(ctx, model.Event{
			Type:            model.EventHostReady,
			SessionID:       sessionID,
			Owner:           owner,
			InstanceID:      srv.InstanceID,
			RemoteSessionID: remoteID,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Stop powers hosts down.
func (l *Local) Stop(ctx context.Context, servers []model.Server) error {
	return l.powerDown(ctx, servers, "stopped")
}

// Hibernate is a stop for the local backend; there is no RAM to preserve.
func (l *Local) Hibernate(ctx context.Context, servers []model.Server) error {
	return l.powerDown(ctx, servers, "hibernated")
}

func (l *Local) powerDown(ctx context.Context, servers []model.Server, verb string) (err error) {
	for _, srv := range servers {
		l.mu.Lock()
		host, ok := l.hosts[srv.InstanceID]
		var sessionID, owner string
		if ok {
			host.state = hostStopped
			sessionID, owner = host.sessionID, host.owner
		}
		l.mu.Unlock()
		if !ok {
			continue
		}
		l.logger.Info().Str(vlog.FieldServerID, srv.InstanceID).Msgf("local host %s", verb)
		evErr := l.Events.Publish(ctx, model.Event{
			Type:          model.EventInstanceStateChanged,
			SessionID:     sessionID,
			Owner:         owner,
			InstanceID:    srv.InstanceID,
			InstanceState: "stopped",
		})
		if evErr != nil && err == nil {
			err = evErr
		}
	}
	return err
}

// Reboot cycles hosts and reports the reboot done.
func (l *Local) Reboot(ctx context.Context, servers []model.Server) error {
	for _, srv := range servers {
		l.mu.Lock()
		host, ok := l.hosts[srv.InstanceID]
		l.mu.Unlock()
		if !ok {
			return fmt.Errorf("provision: unknown host %s", srv.InstanceID)
		}
		if err := l.Events.Publish(ctx, model.Event{
			Type:       model.EventHostRebootComplete,
			SessionID:  host.sessionID,
			Owner:      host.owner,
			InstanceID: srv.InstanceID,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Terminate destroys hosts.
func (l *Local) Terminate(_ context.Context, servers []model.Server) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, srv := range servers {
		if host, ok := l.hosts[srv.InstanceID]; ok {
			host.state = hostTerminated
		}
	}
	return nil
}

// DeleteSessions releases the given remote sessions.
func (l *Local) DeleteSessions(_ context.Context, sessions []model.Session) ([]string, []ports.DeleteFailure, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var succeeded []string
	var failed []ports.DeleteFailure
	for _, sess := range sessions {
		if _, ok := l.remotes[sess.RemoteSessionID]; !ok {
			failed = append(failed, ports.DeleteFailure{
				RemoteSessionID: sess.RemoteSessionID,
				Reason:          fmt.Sprintf("no remote session %s", sess.RemoteSessionID),
			})
			continue
		}
		delete(l.remotes, sess.RemoteSessionID)
		succeeded = append(succeeded, sess.RemoteSessionID)
	}
	return succeeded, failed, nil
}

// ActiveConnectionCounts reports zero connections; the local backend has no
// display clients.
func (l *Local) ActiveConnectionCounts(_ context.Context, sessions []model.Session) ([]ports.ConnectionCount, error) {
	counts := make([]ports.ConnectionCount, 0, len(sessions))
	for _, sess := range sessions {
		counts = append(counts, ports.ConnectionCount{RemoteSessionID: sess.RemoteSessionID})
	}
	return counts, nil
}

// DescribeSession reports whether the remote session is still registered.
func (l *Local) DescribeSession(_ context.Context, remoteSessionID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.remotes[remoteSessionID]
	return ok, nil
}
