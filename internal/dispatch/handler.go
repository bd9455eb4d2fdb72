// SPDX-License-Identifier: MIT

// Package dispatch consumes the shared event queue on a pool of workers and
// routes typed events to registered handlers while preserving intra-group
// ordering under failure.
package dispatch

import (
	"context"

	"github.com/driftlab/vdeskd/internal/model"
)

// Outcome classifies a handler invocation. Genuine faults travel on the
// error return instead; an outcome only applies when the error is nil.
type Outcome int

const (
	// Handled means the event is done and may be acknowledged.
	Handled Outcome = iota

	// RetryLater means a precondition is not met yet. The message is left
	// in flight for natural redelivery; this is expected, not a failure.
	RetryLater

	// Drop means the event must be acknowledged without side effects, e.g.
	// because its claimed source failed a trust check.
	Drop
)

func (o Outcome) String() string {
	switch o {
	case Handled:
		return "handled"
	case RetryLater:
		return "retry_later"
	case Drop:
		return "drop"
	default:
		return "unknown"
	}
}

// Handler processes one decoded event. Implementations must be idempotent:
// an event left unacknowledged is delivered again.
type Handler interface {
	Handle(ctx context.Context, ev model.Event) (Outcome, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, ev model.Event) (Outcome, error)

func (f HandlerFunc) Handle(ctx context.Context, ev model.Event) (Outcome, error) {
	return f(ctx, ev)
}

// Registry maps event types to their handlers. It is built once at startup
// and shared read-only across workers.
type Registry map[model.EventType]Handler
