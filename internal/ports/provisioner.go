// SPDX-License-Identifier: MIT

// Package ports declares the external collaborator contracts the orchestrator
// drives: the compute-host provisioner and the remote-display broker.
package ports

import (
	"context"

	"github.com/driftlab/vdeskd/internal/model"
)

// ProvisionSpec is the host specification submitted for a new session.
type ProvisionSpec struct {
	SessionID   string
	Owner       string
	DisplayName string
	Hibernation bool
}

// Provisioner starts, stops, hibernates, reboots and terminates compute
// hosts. All batch calls are fire-and-forget except Start, whose outcome
// gates whether sessions move to RESUMING: a returned error fails every
// session in the batch.
type Provisioner interface {
	// Provision launches a host for one new session and returns its server
	// projection.
	Provision(ctx context.Context, spec ProvisionSpec) (*model.Server, error)

	Start(ctx context.Context, servers []model.Server) error
	Stop(ctx context.Context, servers []model.Server) error
	Hibernate(ctx context.Context, servers []model.Server) error
	Reboot(ctx context.Context, servers []model.Server) error
	Terminate(ctx context.Context, servers []model.Server) error
}
