// SPDX-License-Identifier: MIT

package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftlab/vdeskd/internal/model"
	"github.com/driftlab/vdeskd/internal/queue"
)

func receiveOne(t *testing.T, q *queue.MemoryQueue) (queue.Message, model.Event) {
	t.Helper()
	msgs, err := q.Receive(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	var ev model.Event
	require.NoError(t, json.Unmarshal(msgs[0].Body, &ev))
	return msgs[0], ev
}

func TestPublish_GroupDefaultsToSessionID(t *testing.T) {
	q := queue.NewMemoryQueue()
	p := &Publisher{Queue: q}

	require.NoError(t, p.Publish(context.Background(), model.Event{
		Type:      model.EventScheduledStop,
		SessionID: "s1",
		Owner:     "alice",
	}))

	msg, ev := receiveOne(t, q)
	assert.Equal(t, "s1", msg.GroupID)
	assert.Equal(t, "s1", ev.GroupID)
	assert.Equal(t, model.EventScheduledStop, ev.Type)
}

func TestPublish_ClusterGroupWithoutSession(t *testing.T) {
	q := queue.NewMemoryQueue()
	p := &Publisher{Queue: q}

	require.NoError(t, p.ScheduledTick(context.Background(), "12:30"))

	msg, ev := receiveOne(t, q)
	assert.Equal(t, model.ClusterEventGroup, msg.GroupID)
	assert.Equal(t, model.EventScheduledTick, ev.Type)
	assert.Equal(t, "12:30", ev.Time)
}

func TestHelperEvents(t *testing.T) {
	q := queue.NewMemoryQueue()
	p := &Publisher{Queue: q}
	ctx := context.Background()

	require.NoError(t, p.ValidateSessionDeletion(ctx, "s1", "alice"))
	_, ev := receiveOne(t, q)
	assert.Equal(t, model.EventValidateSessionDeletion, ev.Type)
	assert.Equal(t, "alice", ev.Owner)

	require.NoError(t, p.ScheduledResume(ctx, "s1", "alice"))
	_, ev = receiveOne(t, q)
	assert.Equal(t, model.EventScheduledResume, ev.Type)

	require.NoError(t, p.SessionTerminate(ctx, "s1", "alice", true))
	_, ev = receiveOne(t, q)
	assert.Equal(t, model.EventSessionTerminate, ev.Type)
	assert.True(t, ev.Force)
}
