// SPDX-License-Identifier: MIT

package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryQueue is an in-memory Queue used for unit tests and local
// prototyping. It mirrors the Redis queue's semantics: FIFO delivery,
// visibility-timeout redelivery, batched acknowledgment.
type MemoryQueue struct {
	mu       sync.Mutex
	pending  []*memMessage
	inflight map[string]*memMessage

	// Visibility bounds redelivery, Sender stamps published messages.
	Visibility time.Duration
	Sender     string
}

type memMessage struct {
	msg         Message
	redeliverAt time.Time
}

// NewMemoryQueue returns an empty in-memory queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		inflight:   make(map[string]*memMessage),
		Visibility: 30 * time.Second,
		Sender:     "memory",
	}
}

func (q *MemoryQueue) Publish(ctx context.Context, groupID string, body []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := uuid.NewString()
	q.pending = append(q.pending, &memMessage{msg: Message{
		ID:            id,
		ReceiptHandle: id,
		GroupID:       groupID,
		SenderID:      q.Sender,
		Body:          append([]byte(nil), body...),
		BodyDigest:    Digest(body),
	}})
	return nil
}

// Inject enqueues a fully formed message, letting tests plant corrupt
// digests or foreign sender identities.
func (q *MemoryQueue) Inject(msg Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.ReceiptHandle == "" {
		msg.ReceiptHandle = msg.ID
	}
	q.pending = append(q.pending, &memMessage{msg: msg})
}

func (q *MemoryQueue) Receive(ctx context.Context, max int, wait time.Duration) ([]Message, error) {
	deadline := time.Now().Add(wait)
	for {
		if msgs := q.tryReceive(max); len(msgs) > 0 {
			return msgs, nil
		}
		if !time.Now().Before(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (q *MemoryQueue) tryReceive(max int) []Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	for id, m := range q.inflight {
		if !m.redeliverAt.After(now) {
			delete(q.inflight, id)
			q.pending = append([]*memMessage{m}, q.pending...)
		}
	}

	n := min(max, len(q.pending))
	if n == 0 {
		return nil
	}
	batch := q.pending[:n]
	q.pending = q.pending[n:]

	msgs := make([]Message, 0, n)
	for _, m := range batch {
		m.redeliverAt = now.Add(q.Visibility)
		q.inflight[m.msg.ID] = m
		msgs = append(msgs, m.msg)
	}
	return msgs
}

func (q *MemoryQueue) DeleteBatch(ctx context.Context, receipts []string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range receipts {
		delete(q.inflight, id)
	}
	return nil
}

// Len reports how many messages are deliverable right now.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// InFlight reports how many received messages await acknowledgment.
func (q *MemoryQueue) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inflight)
}

var _ Queue = (*MemoryQueue)(nil)
