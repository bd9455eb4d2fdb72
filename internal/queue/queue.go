// SPDX-License-Identifier: MIT

// Package queue defines the at-least-once event queue contract the dispatch
// engine consumes, with Redis-backed and in-memory implementations.
//
// The contract is deliberately narrow: long-poll receive, batched delete,
// publish. Ordering within a message group is best-effort; redelivery is
// driven by a visibility timeout.
package queue

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Message is one received queue entry. ReceiptHandle acknowledges it;
// BodyDigest is the transport-level integrity digest of Body.
type Message struct {
	ID            string
	ReceiptHandle string
	GroupID       string
	SenderID      string
	Body          []byte
	BodyDigest    string
}

// Queue is the transport contract required by the dispatch engine.
type Queue interface {
	// Receive long-polls for up to max messages, waiting at most wait.
	// Received messages stay invisible to other consumers until either
	// deleted or their visibility timeout lapses.
	Receive(ctx context.Context, max int, wait time.Duration) ([]Message, error)

	// DeleteBatch acknowledges the given receipt handles in one call.
	DeleteBatch(ctx context.Context, receipts []string) error

	// Publish enqueues body under the given ordering group.
	Publish(ctx context.Context, groupID string, body []byte) error
}

// Digest computes the body integrity digest carried alongside each message.
func Digest(body []byte) string {
	sum := md5.Sum(body)
	return hex.EncodeToString(sum[:])
}
