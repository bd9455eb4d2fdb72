// SPDX-License-Identifier: MIT

package ports

import (
	"context"

	"github.com/driftlab/vdeskd/internal/model"
)

// DeleteFailure is a per-session broker rejection with the broker's reason
// carried verbatim.
type DeleteFailure struct {
	RemoteSessionID string
	Reason          string
}

// ConnectionCount annotates one session with its number of active remote
// display connections.
type ConnectionCount struct {
	RemoteSessionID string
	Count           int
}

// Broker manages remote-display sessions on the display broker.
type Broker interface {
	// DeleteSessions submits one batch teardown call. Succeeded carries the
	// remote session ids the broker accepted; Failed carries per-item
	// rejections. The returned error is reserved for whole-call failures.
	DeleteSessions(ctx context.Context, sessions []model.Session) (succeeded []string, failed []DeleteFailure, err error)

	// ActiveConnectionCounts annotates the given sessions with their current
	// connection counts in one batch query.
	ActiveConnectionCounts(ctx context.Context, sessions []model.Session) ([]ConnectionCount, error)

	// DescribeSession reports whether the broker still knows the remote
	// session. Deletion-confirmation handlers poll this.
	DescribeSession(ctx context.Context, remoteSessionID string) (exists bool, err error)
}
