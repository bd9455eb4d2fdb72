// SPDX-License-Identifier: MIT

package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	vlog "github.com/driftlab/vdeskd/internal/log"
	"github.com/driftlab/vdeskd/internal/metrics"
	"github.com/driftlab/vdeskd/internal/model"
	"github.com/driftlab/vdeskd/internal/queue"
)

// Engine runs N worker loops over a shared queue. Workers share nothing
// mutable beyond the queue itself; the registry is read-only and each batch
// keeps its own group suppression set.
type Engine struct {
	Queue    queue.Queue
	Registry Registry

	Workers   int
	BatchSize int
	WaitTime  time.Duration

	// TrustedSenders restricts which transport sender identities are
	// accepted. Empty means all senders are trusted.
	TrustedSenders []string
}

// Run blocks until ctx is cancelled or the queue becomes unusable. Handler
// failures never stop the loop; only transport errors propagate.
func (e *Engine) Run(ctx context.Context) error {
	if e.Workers <= 0 {
		return fmt.Errorf("dispatch: Workers must be > 0, got %d", e.Workers)
	}
	if e.BatchSize <= 0 {
		return fmt.Errorf("dispatch: BatchSize must be > 0, got %d", e.BatchSize)
	}
	if e.WaitTime <= 0 {
		return fmt.Errorf("dispatch: WaitTime must be > 0, got %v", e.WaitTime)
	}
	if len(e.Registry) == 0 {
		return errors.New("dispatch: registry is empty")
	}

	trusted := make(map[string]struct{}, len(e.TrustedSenders))
	for _, s := range e.TrustedSenders {
		trusted[s] = struct{}{}
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < e.Workers; i++ {
		logger := vlog.WithComponent("dispatch").With().Int(vlog.FieldWorker, i).Logger()
		g.Go(func() error {
			return e.workerLoop(ctx, logger, trusted)
		})
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (e *Engine) workerLoop(ctx context.Context, logger zerolog.Logger, trusted map[string]struct{}) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.pollOnce(ctx, logger, trusted); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			// Queue or store unreachable is resource exhaustion; surface it.
			return fmt.Errorf("dispatch: poll failed: %w", err)
		}
	}
}

// pollOnce receives one batch and walks it in receive order. Messages are
// acknowledged in one batched delete at the end.
func (e *Engine) pollOnce(ctx context.Context, logger zerolog.Logger, trusted map[string]struct{}) error {
	msgs, err := e.Queue.Receive(ctx, e.BatchSize, e.WaitTime)
	if err != nil {
		return err
	}

	var acks []string
	suppressed := make(map[string]struct{})

	for _, msg := range msgs {
		switch e.walkMessage(ctx, logger, trusted, msg, suppressed) {
		case ackMessage:
			acks = append(acks, msg.ReceiptHandle)
		case retryMessage:
			// Expected retry condition: redeliver without blocking the group.
		case failMessage:
			// An unexpected failure blocks the group for the rest of this
			// batch so intra-group order survives redelivery.
			suppressed[msg.GroupID] = struct{}{}
		}
	}

	if len(acks) > 0 {
		if err := e.Queue.DeleteBatch(ctx, acks); err != nil {
			return err
		}
	}
	return nil
}

// disposition is what pollOnce does with a walked message.
type disposition int

const (
	// ackMessage marks the message for the batched delete.
	ackMessage disposition = iota
	// retryMessage leaves the message for redelivery without suppressing
	// its group.
	retryMessage
	// failMessage leaves the message for redelivery and suppresses its
	// group for the remainder of the batch.
	failMessage
)

// walkMessage processes one message and decides its disposition.
func (e *Engine) walkMessage(ctx context.Context, logger zerolog.Logger, trusted map[string]struct{}, msg queue.Message, suppressed map[string]struct{}) disposition {
	logger = logger.With().Str(vlog.FieldMessageID, msg.ID).Str(vlog.FieldGroupID, msg.GroupID).Logger()

	if queue.Digest(msg.Body) != msg.BodyDigest {
		logger.Error().Msg("invalid body digest, dropping message")
		metrics.IncEventDropped("digest_mismatch")
		return ackMessage
	}

	if len(trusted) > 0 {
		if _, ok := trusted[msg.SenderID]; !ok {
			logger.Info().Str(vlog.FieldSenderID, msg.SenderID).Msg("untrusted sender, dropping message")
			metrics.IncEventDropped("untrusted_sender")
			return ackMessage
		}
	}

	var ev model.Event
	if err := json.Unmarshal(msg.Body, &ev); err != nil || ev.Type == "" {
		logger.Error().Err(err).Msg("malformed event body, dropping message")
		metrics.IncEventDropped("malformed")
		return ackMessage
	}

	handler, ok := e.Registry[ev.Type]
	if !ok {
		logger.Error().Str(vlog.FieldEventType, string(ev.Type)).Msg("unrecognized event type, dropping message")
		metrics.IncEventDropped("unknown_type")
		return ackMessage
	}

	if _, blocked := suppressed[msg.GroupID]; blocked {
		logger.Debug().Str(vlog.FieldEventType, string(ev.Type)).Msg("group suppressed for this batch, leaving message for redelivery")
		metrics.GroupSuppressedTotal.Inc()
		return failMessage
	}

	outcome, err := handler.Handle(ctx, ev)
	if err != nil {
		logger.Error().Err(err).Str(vlog.FieldEventType, string(ev.Type)).Msg("handler failed, leaving message for redelivery")
		metrics.IncEventHandled(string(ev.Type), "error")
		return failMessage
	}

	metrics.IncEventHandled(string(ev.Type), outcome.String())
	switch outcome {
	case Handled:
		logger.Debug().Str(vlog.FieldEventType, string(ev.Type)).Msg("event handled")
		return ackMessage
	case Drop:
		logger.Info().Str(vlog.FieldEventType, string(ev.Type)).Msg("handler dropped event without side effects")
		return ackMessage
	case RetryLater:
		logger.Info().Str(vlog.FieldEventType, string(ev.Type)).Msg("handler precondition not met yet, leaving message for redelivery")
		return retryMessage
	default:
		logger.Error().Str(vlog.FieldEventType, string(ev.Type)).Msgf("unknown handler outcome %d, leaving message for redelivery", outcome)
		return failMessage
	}
}
