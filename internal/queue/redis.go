// SPDX-License-Identifier: MIT

package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	vlog "github.com/driftlab/vdeskd/internal/log"
)

// RedisConfig holds Redis queue connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Name prefixes every key the queue touches.
	Name string

	// Visibility bounds how long a received message stays invisible before
	// it is redelivered.
	Visibility time.Duration

	// Sender is the identity stamped on published messages.
	Sender string
}

// RedisQueue implements Queue on Redis: a pending list holds deliverable
// message ids in FIFO order, an in-flight sorted set holds received ids
// scored by their redelivery deadline, and a hash per message holds the
// payload and its attributes.
type RedisQueue struct {
	client     *redis.Client
	name       string
	visibility time.Duration
	sender     string
	logger     zerolog.Logger

	// pollEvery is the receive re-check interval while long-polling.
	pollEvery time.Duration
}

// NewRedisQueue connects to Redis and verifies connectivity.
func NewRedisQueue(cfg RedisConfig) (*RedisQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("queue: redis connection failed: %w", err)
	}

	return NewRedisQueueWithClient(client, cfg), nil
}

// NewRedisQueueWithClient wraps an existing client; tests hand in a client
// pointed at miniredis.
func NewRedisQueueWithClient(client *redis.Client, cfg RedisConfig) *RedisQueue {
	name := cfg.Name
	if name == "" {
		name = "vdeskd:events"
	}
	visibility := cfg.Visibility
	if visibility <= 0 {
		visibility = 30 * time.Second
	}
	return &RedisQueue{
		client:     client,
		name:       name,
		visibility: visibility,
		sender:     cfg.Sender,
		logger:     vlog.WithComponent("redis-queue"),
		pollEvery:  250 * time.Millisecond,
	}
}

func (q *RedisQueue) pendingKey() string  { return q.name + ":pending" }
func (q *RedisQueue) inflightKey() string { return q.name + ":inflight" }
func (q *RedisQueue) msgKey(id string) string {
	return q.name + ":msg:" + id
}

func (q *RedisQueue) Publish(ctx context.Context, groupID string, body []byte) error {
	id := uuid.NewString()
	fields := map[string]any{
		"body":   string(body),
		"group":  groupID,
		"sender": q.sender,
		"digest": Digest(body),
	}
	if err := q.client.HSet(ctx, q.msgKey(id), fields).Err(); err != nil {
		return fmt.Errorf("queue: publish %s: %w", id, err)
	}
	if err := q.client.RPush(ctx, q.pendingKey(), id).Err(); err != nil {
		return fmt.Errorf("queue: publish %s: %w", id, err)
	}
	return nil
}

func (q *RedisQueue) Receive(ctx context.Context, max int, wait time.Duration) ([]Message, error) {
	deadline := time.Now().Add(wait)
	for {
		if err := q.redeliverExpired(ctx); err != nil {
			return nil, err
		}

		ids, err := q.client.LPopCount(ctx, q.pendingKey(), max).Result()
		if err != nil && err != redis.Nil {
			return nil, fmt.Errorf("queue: receive: %w", err)
		}
		if len(ids) > 0 {
			return q.claim(ctx, ids)
		}

		if !time.Now().Before(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(q.pollEvery):
		}
	}
}

// claim moves received ids into the in-flight set and materialises them.
func (q *RedisQueue) claim(ctx context.Context, ids []string) ([]Message, error) {
	redeliverAt := float64(time.Now().Add(q.visibility).UnixMilli())
	msgs := make([]Message, 0, len(ids))
	for _, id := range ids {
		if err := q.client.ZAdd(ctx, q.inflightKey(), redis.Z{Score: redeliverAt, Member: id}).Err(); err != nil {
			return nil, fmt.Errorf("queue: claim %s: %w", id, err)
		}
		fields, err := q.client.HGetAll(ctx, q.msgKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("queue: claim %s: %w", id, err)
		}
		if len(fields) == 0 {
			// Payload vanished (deleted concurrently); drop the claim.
			_ = q.client.ZRem(ctx, q.inflightKey(), id).Err()
			continue
		}
		msgs = append(msgs, Message{
			ID:            id,
			ReceiptHandle: id,
			GroupID:       fields["group"],
			SenderID:      fields["sender"],
			Body:          []byte(fields["body"]),
			BodyDigest:    fields["digest"],
		})
	}
	return msgs, nil
}

// redeliverExpired moves in-flight messages whose visibility timeout lapsed
// back to the front of the pending list.
func (q *RedisQueue) redeliverExpired(ctx context.Context) error {
	now := fmt.Sprintf("%d", time.Now().UnixMilli())
	ids, err := q.client.ZRangeByScore(ctx, q.inflightKey(), &redis.ZRangeBy{Min: "-inf", Max: now}).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("queue: redeliver scan: %w", err)
	}
	for _, id := range ids {
		removed, err := q.client.ZRem(ctx, q.inflightKey(), id).Result()
		if err != nil {
			return fmt.Errorf("queue: redeliver %s: %w", id, err)
		}
		if removed == 0 {
			// Another worker claimed the redelivery.
			continue
		}
		if err := q.client.LPush(ctx, q.pendingKey(), id).Err(); err != nil {
			return fmt.Errorf("queue: redeliver %s: %w", id, err)
		}
		q.logger.Info().Str(vlog.FieldMessageID, id).Msg("message visibility expired, redelivering")
	}
	return nil
}

func (q *RedisQueue) DeleteBatch(ctx context.Context, receipts []string) error {
	if len(receipts) == 0 {
		return nil
	}
	pipe := q.client.Pipeline()
	for _, id := range receipts {
		pipe.ZRem(ctx, q.inflightKey(), id)
		pipe.Del(ctx, q.msgKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("queue: delete batch: %w", err)
	}
	return nil
}

var _ Queue = (*RedisQueue)(nil)
