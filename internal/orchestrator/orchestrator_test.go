// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftlab/vdeskd/internal/config"
	"github.com/driftlab/vdeskd/internal/events"
	"github.com/driftlab/vdeskd/internal/model"
	"github.com/driftlab/vdeskd/internal/ports"
	"github.com/driftlab/vdeskd/internal/queue"
	"github.com/driftlab/vdeskd/internal/schedule"
	"github.com/driftlab/vdeskd/internal/store"
	"github.com/driftlab/vdeskd/internal/store/storetest"
)

type fakeProvisioner struct {
	mu sync.Mutex

	provisionErr error
	startErr     error

	started    []model.Server
	stopped    []model.Server
	hibernated []model.Server
	rebooted   []model.Server
	terminated []model.Server
}

func (f *fakeProvisioner) Provision(_ context.Context, spec ports.ProvisionSpec) (*model.Server, error) {
	if f.provisionErr != nil {
		return nil, f.provisionErr
	}
	return &model.Server{InstanceID: "i-" + spec.SessionID}, nil
}

func (f *fakeProvisioner) Start(_ context.Context, servers []model.Server) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, servers...)
	return nil
}

func (f *fakeProvisioner) Stop(_ context.Context, servers []model.Server) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, servers...)
	return nil
}

func (f *fakeProvisioner) Hibernate(_ context.Context, servers []model.Server) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hibernated = append(f.hibernated, servers...)
	return nil
}

func (f *fakeProvisioner) Reboot(_ context.Context, servers []model.Server) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rebooted = append(f.rebooted, servers...)
	return nil
}

func (f *fakeProvisioner) Terminate(_ context.Context, servers []model.Server) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminated = append(f.terminated, servers...)
	return nil
}

type fakeBroker struct {
	deleteErr error
	countsErr error

	// rejections maps remote session ids to per-item failure reasons.
	rejections map[string]string
	counts     map[string]int
	remotes    map[string]bool

	// omitted remote ids are left out of broker responses entirely.
	omitted map[string]bool

	deleted     []string
	countsCalls int
}

func (f *fakeBroker) DeleteSessions(_ context.Context, sessions []model.Session) ([]string, []ports.DeleteFailure, error) {
	if f.deleteErr != nil {
		return nil, nil, f.deleteErr
	}
	var succeeded []string
	var failed []ports.DeleteFailure
	for _, sess := range sessions {
		if f.omitted[sess.RemoteSessionID] {
			continue
		}
		if reason, ok := f.rejections[sess.RemoteSessionID]; ok {
			failed = append(failed, ports.DeleteFailure{RemoteSessionID: sess.RemoteSessionID, Reason: reason})
			continue
		}
		succeeded = append(succeeded, sess.RemoteSessionID)
		f.deleted = append(f.deleted, sess.RemoteSessionID)
	}
	return succeeded, failed, nil
}

func (f *fakeBroker) ActiveConnectionCounts(_ context.Context, sessions []model.Session) ([]ports.ConnectionCount, error) {
	f.countsCalls++
	if f.countsErr != nil {
		return nil, f.countsErr
	}
	counts := make([]ports.ConnectionCount, 0, len(sessions))
	for _, sess := range sessions {
		if f.omitted[sess.RemoteSessionID] {
			continue
		}
		counts = append(counts, ports.ConnectionCount{
			RemoteSessionID: sess.RemoteSessionID,
			Count:           f.counts[sess.RemoteSessionID],
		})
	}
	return counts, nil
}

func (f *fakeBroker) DescribeSession(_ context.Context, remoteSessionID string) (bool, error) {
	return f.remotes[remoteSessionID], nil
}

type testRig struct {
	orc    *Orchestrator
	mem    *storetest.Memory
	prov   *fakeProvisioner
	broker *fakeBroker
	queue  *queue.MemoryQueue
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	mem := storetest.NewMemory()
	prov := &fakeProvisioner{}
	broker := &fakeBroker{
		rejections: map[string]string{},
		counts:     map[string]int{},
		remotes:    map[string]bool{},
		omitted:    map[string]bool{},
	}
	q := queue.NewMemoryQueue()
	pub := &events.Publisher{Queue: q}
	eng, err := schedule.NewEngine(mem.Bundle().Schedules, config.SessionsConfig{
		WorkingHours: config.WindowConfig{StartUpTime: "09:00", ShutDownTime: "17:00"},
		DefaultSchedule: map[string]config.DayScheduleConfig{
			"monday": {Type: "WORKING_HOURS"},
		},
	})
	require.NoError(t, err)
	return &testRig{
		orc:    New(mem.Bundle(), prov, broker, pub, eng),
		mem:    mem,
		prov:   prov,
		broker: broker,
		queue:  q,
	}
}

func (r *testRig) seed(t *testing.T, sess model.Session) model.Session {
	t.Helper()
	require.NoError(t, r.mem.Create(context.Background(), &sess))
	return sess
}

func (r *testRig) state(t *testing.T, id string) model.SessionState {
	t.Helper()
	sess, err := r.mem.Get(context.Background(), id)
	require.NoError(t, err)
	return sess.State
}

func (r *testRig) publishedEvents(t *testing.T) []model.Event {
	t.Helper()
	ctx := context.Background()
	var out []model.Event
	for r.queue.Len() > 0 {
		msgs, err := r.queue.Receive(ctx, 10, 0)
		require.NoError(t, err)
		for _, m := range msgs {
			var ev model.Event
			require.NoError(t, json.Unmarshal(m.Body, &ev))
			out = append(out, ev)
		}
	}
	return out
}

func ref(sess model.Session) model.SessionRef {
	return model.SessionRef{ID: sess.ID, Owner: sess.Owner}
}

// deadQueue rejects every publish, for exercising event delivery failures.
type deadQueue struct{}

func (deadQueue) Publish(context.Context, string, []byte) error {
	return errors.New("queue unavailable")
}

func (deadQueue) Receive(context.Context, int, time.Duration) ([]queue.Message, error) {
	return nil, nil
}

func (deadQueue) DeleteBatch(context.Context, []string) error { return nil }

func TestStopSessions_MixedBatch(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	ready := rig.seed(t, model.Session{
		ID: "s-ready", Owner: "alice", State: model.StateReady,
		Server: &model.Server{InstanceID: "i-1"}, RemoteSessionID: "r-1",
	})
	provisioning := rig.seed(t, model.Session{ID: "s-prov", Owner: "bob", State: model.StateProvisioning})

	results := rig.orc.StopSessions(ctx, []model.SessionRef{
		ref(ready),
		ref(provisioning),
		{ID: "s-missing", Owner: "carol"},
	})

	require.Len(t, results, 3)

	assert.False(t, results[0].Failed())
	assert.Equal(t, model.StateStopping, results[0].Session.State)
	assert.Equal(t, model.StateStopping, rig.state(t, "s-ready"))

	assert.True(t, results[1].Failed())
	assert.Equal(t, "session is in PROVISIONING state, cannot stop; wait for it to be READY", results[1].FailureReason)
	assert.Equal(t, model.StateProvisioning, rig.state(t, "s-prov"), "precondition failure must not change state")

	assert.True(t, results[2].Failed())
	assert.Equal(t, "invalid session id s-missing for user carol, nothing to stop", results[2].FailureReason)
	assert.Equal(t, "s-missing", results[2].Session.ID)

	evs := rig.publishedEvents(t)
	require.Len(t, evs, 1)
	assert.Equal(t, model.EventValidateSessionDeletion, evs[0].Type)
	assert.Equal(t, "s-ready", evs[0].SessionID)
	assert.Equal(t, "s-ready", evs[0].GroupID)

	assert.Equal(t, []string{"r-1"}, rig.broker.deleted)
}

func TestStopSessions_DirectStop(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	plain := rig.seed(t, model.Session{
		ID: "s-plain", Owner: "alice", State: model.StateReady,
		Server: &model.Server{InstanceID: "i-plain"},
	})
	hib := rig.seed(t, model.Session{
		ID: "s-hib", Owner: "bob", State: model.StateReady,
		Server: &model.Server{InstanceID: "i-hib"}, HibernationCapable: true,
	})

	results := rig.orc.StopSessions(ctx, []model.SessionRef{ref(plain), ref(hib)})
	require.Empty(t, results.Failed())

	assert.Equal(t, model.StateStopping, rig.state(t, "s-plain"))
	assert.Equal(t, model.StateStopping, rig.state(t, "s-hib"))

	require.Len(t, rig.prov.stopped, 1)
	assert.Equal(t, "i-plain", rig.prov.stopped[0].InstanceID)
	require.Len(t, rig.prov.hibernated, 1)
	assert.Equal(t, "i-hib", rig.prov.hibernated[0].InstanceID)

	// Direct stops never involve the broker, so no validation event.
	assert.Empty(t, rig.publishedEvents(t))
}

func TestStopSessions_BrokerFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("whole-call error fails every broker item", func(t *testing.T) {
		rig := newTestRig(t)
		rig.broker.deleteErr = errors.New("broker unreachable")
		a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateReady, RemoteSessionID: "r-a", Server: &model.Server{InstanceID: "i-a"}})
		direct := rig.seed(t, model.Session{ID: "d", Owner: "u", State: model.StateReady, Server: &model.Server{InstanceID: "i-d"}})

		results := rig.orc.StopSessions(ctx, []model.SessionRef{ref(a), ref(direct)})
		assert.Equal(t, "broker unreachable", results[0].FailureReason)
		assert.Equal(t, model.StateReady, rig.state(t, "a"))
		assert.False(t, results[1].Failed(), "direct item is unaffected by the broker outage")
	})

	t.Run("per-item rejection reason is carried verbatim", func(t *testing.T) {
		rig := newTestRig(t)
		rig.broker.rejections["r-b"] = "session is being updated, try again later"
		a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateReady, RemoteSessionID: "r-a", Server: &model.Server{InstanceID: "i-a"}})
		b := rig.seed(t, model.Session{ID: "b", Owner: "u", State: model.StateReady, RemoteSessionID: "r-b", Server: &model.Server{InstanceID: "i-b"}})

		results := rig.orc.StopSessions(ctx, []model.SessionRef{ref(a), ref(b)})
		assert.False(t, results[0].Failed())
		assert.Equal(t, "session is being updated, try again later", results[1].FailureReason)
		assert.Equal(t, model.StateReady, rig.state(t, "b"))
	})

	t.Run("item the broker response omits fails", func(t *testing.T) {
		rig := newTestRig(t)
		rig.broker.omitted["r-a"] = true
		a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateReady, RemoteSessionID: "r-a", Server: &model.Server{InstanceID: "i-a"}})
		b := rig.seed(t, model.Session{ID: "b", Owner: "u", State: model.StateReady, RemoteSessionID: "r-b", Server: &model.Server{InstanceID: "i-b"}})

		results := rig.orc.StopSessions(ctx, []model.SessionRef{ref(a), ref(b)})
		require.True(t, results[0].Failed())
		assert.Equal(t, "broker returned no result for session a", results[0].FailureReason)
		assert.Equal(t, model.StateReady, rig.state(t, "a"))
		assert.False(t, results[1].Failed())
		assert.Equal(t, model.StateStopping, rig.state(t, "b"))
	})

	t.Run("confirmation publish failure fails the item untransitioned", func(t *testing.T) {
		rig := newTestRig(t)
		rig.orc.Events = &events.Publisher{Queue: deadQueue{}}
		a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateReady, RemoteSessionID: "r-a", Server: &model.Server{InstanceID: "i-a"}})

		results := rig.orc.StopSessions(ctx, []model.SessionRef{ref(a)})
		require.True(t, results[0].Failed())
		assert.Contains(t, results[0].FailureReason, "queue unavailable")
		assert.Equal(t, model.StateReady, rig.state(t, "a"), "no teardown wait without a confirmation event queued")
	})
}

func TestResumeSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("stopped and idle-stopped sessions resume", func(t *testing.T) {
		rig := newTestRig(t)
		a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateStopped, Server: &model.Server{InstanceID: "i-a"}})
		b := rig.seed(t, model.Session{ID: "b", Owner: "u", State: model.StateStoppedIdle, Server: &model.Server{InstanceID: "i-b"}})

		results := rig.orc.ResumeSessions(ctx, []model.SessionRef{ref(a), ref(b)})
		require.Empty(t, results.Failed())
		assert.Equal(t, model.StateResuming, rig.state(t, "a"))
		assert.Equal(t, model.StateResuming, rig.state(t, "b"))
		assert.Len(t, rig.prov.started, 2, "one batched start call covers the batch")
	})

	t.Run("non-stopped session fails its precondition", func(t *testing.T) {
		rig := newTestRig(t)
		a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateReady, Server: &model.Server{InstanceID: "i-a"}})

		results := rig.orc.ResumeSessions(ctx, []model.SessionRef{ref(a)})
		require.True(t, results[0].Failed())
		assert.Equal(t, "session is in READY state, cannot resume a session that is not stopped", results[0].FailureReason)
	})

	t.Run("missing server record fails the item", func(t *testing.T) {
		rig := newTestRig(t)
		a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateStopped})

		results := rig.orc.ResumeSessions(ctx, []model.SessionRef{ref(a)})
		assert.Equal(t, "session has no server record, cannot resume", results[0].FailureReason)
	})

	t.Run("global start failure fails all eligible items", func(t *testing.T) {
		rig := newTestRig(t)
		rig.prov.startErr = errors.New("insufficient capacity")
		a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateStopped, Server: &model.Server{InstanceID: "i-a"}})
		b := rig.seed(t, model.Session{ID: "b", Owner: "u", State: model.StateStopped, Server: &model.Server{InstanceID: "i-b"}})

		results := rig.orc.ResumeSessions(ctx, []model.SessionRef{ref(a), ref(b)})
		for _, r := range results {
			assert.Equal(t, "insufficient capacity", r.FailureReason)
		}
		assert.Equal(t, model.StateStopped, rig.state(t, "a"))
		assert.Equal(t, model.StateStopped, rig.state(t, "b"))
	})
}

func TestRebootSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("idle ready and error sessions reboot", func(t *testing.T) {
		rig := newTestRig(t)
		a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateReady, RemoteSessionID: "r-a", Server: &model.Server{InstanceID: "i-a"}})
		b := rig.seed(t, model.Session{ID: "b", Owner: "u", State: model.StateError, RemoteSessionID: "r-b", Server: &model.Server{InstanceID: "i-b"}})

		results := rig.orc.RebootSessions(ctx, []model.SessionRef{ref(a), ref(b)})
		require.Empty(t, results.Failed())
		assert.Equal(t, model.StateResuming, rig.state(t, "a"))
		assert.Equal(t, model.StateResuming, rig.state(t, "b"))
		assert.Len(t, rig.prov.rebooted, 2)
	})

	t.Run("active connections reject the item", func(t *testing.T) {
		rig := newTestRig(t)
		rig.broker.counts["r-a"] = 2
		a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateReady, RemoteSessionID: "r-a", Server: &model.Server{InstanceID: "i-a"}})

		results := rig.orc.RebootSessions(ctx, []model.SessionRef{ref(a)})
		require.True(t, results[0].Failed())
		assert.Equal(t, "there are 2 active connection(s) for session a, terminate them first", results[0].FailureReason)
		assert.Equal(t, model.StateReady, rig.state(t, "a"))
		assert.Empty(t, rig.prov.rebooted)
	})

	t.Run("force bypasses the connection check", func(t *testing.T) {
		rig := newTestRig(t)
		rig.broker.counts["r-a"] = 2
		a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateReady, RemoteSessionID: "r-a", Server: &model.Server{InstanceID: "i-a"}})

		results := rig.orc.RebootSessions(ctx, []model.SessionRef{{ID: a.ID, Owner: a.Owner, Force: true}})
		require.Empty(t, results.Failed())
		assert.Equal(t, model.StateResuming, rig.state(t, "a"))
		assert.Zero(t, rig.broker.countsCalls, "forced reboots never query the broker")
	})

	t.Run("stopped session fails its precondition", func(t *testing.T) {
		rig := newTestRig(t)
		a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateStopped, Server: &model.Server{InstanceID: "i-a"}})

		results := rig.orc.RebootSessions(ctx, []model.SessionRef{ref(a)})
		require.True(t, results[0].Failed())
		assert.Contains(t, results[0].FailureReason, "cannot reboot")
	})

	t.Run("every errored session without a remote id gets its own result", func(t *testing.T) {
		rig := newTestRig(t)
		a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateError, Server: &model.Server{InstanceID: "i-a"}})
		b := rig.seed(t, model.Session{ID: "b", Owner: "u", State: model.StateError, Server: &model.Server{InstanceID: "i-b"}})

		results := rig.orc.RebootSessions(ctx, []model.SessionRef{ref(a), ref(b)})
		require.Len(t, results.Succeeded(), 2)
		assert.Equal(t, model.StateResuming, rig.state(t, "a"))
		assert.Equal(t, model.StateResuming, rig.state(t, "b"))
		assert.Zero(t, rig.broker.countsCalls, "sessions without remote sessions skip the connection check")
	})

	t.Run("item missing from the connection counts fails", func(t *testing.T) {
		rig := newTestRig(t)
		rig.broker.omitted["r-a"] = true
		a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateReady, RemoteSessionID: "r-a", Server: &model.Server{InstanceID: "i-a"}})
		b := rig.seed(t, model.Session{ID: "b", Owner: "u", State: model.StateReady, RemoteSessionID: "r-b", Server: &model.Server{InstanceID: "i-b"}})

		results := rig.orc.RebootSessions(ctx, []model.SessionRef{ref(a), ref(b)})
		require.True(t, results[0].Failed())
		assert.Equal(t, "broker returned no connection count for session a", results[0].FailureReason)
		assert.Equal(t, model.StateReady, rig.state(t, "a"))
		require.False(t, results[1].Failed())
		assert.Equal(t, model.StateResuming, rig.state(t, "b"))
	})
}

func TestTerminateSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("session without remote id is removed directly", func(t *testing.T) {
		rig := newTestRig(t)
		a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateProvisioning, Server: &model.Server{InstanceID: "i-a"}})
		require.NoError(t, rig.mem.Bundle().Permissions.Create(ctx, &model.SessionPermission{SessionID: "a", Actor: "bob", Profile: "viewer"}))

		results := rig.orc.TerminateSessions(ctx, []model.SessionRef{ref(a)})
		require.Empty(t, results.Failed())
		assert.Equal(t, model.StateDeleted, results[0].Session.State)

		_, err := rig.mem.Get(ctx, "a")
		assert.ErrorIs(t, err, store.ErrNotFound)
		perms, err := rig.mem.Bundle().Permissions.ListForSession(ctx, "a")
		require.NoError(t, err)
		assert.Empty(t, perms)
		require.Len(t, rig.prov.terminated, 1)
		assert.Equal(t, "i-a", rig.prov.terminated[0].InstanceID)
	})

	t.Run("stopped session with remote id is removed directly", func(t *testing.T) {
		rig := newTestRig(t)
		a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateStopped, RemoteSessionID: "r-a", Server: &model.Server{InstanceID: "i-a"}})

		results := rig.orc.TerminateSessions(ctx, []model.SessionRef{ref(a)})
		require.Empty(t, results.Failed())
		assert.Equal(t, model.StateDeleted, results[0].Session.State)
		assert.Empty(t, rig.broker.deleted, "stopped sessions bypass the broker")
	})

	t.Run("live session goes through the broker", func(t *testing.T) {
		rig := newTestRig(t)
		a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateReady, RemoteSessionID: "r-a", Server: &model.Server{InstanceID: "i-a"}})

		results := rig.orc.TerminateSessions(ctx, []model.SessionRef{ref(a)})
		require.Empty(t, results.Failed())
		assert.Equal(t, model.StateDeleting, rig.state(t, "a"), "record survives until teardown is confirmed")

		evs := rig.publishedEvents(t)
		require.Len(t, evs, 1)
		assert.Equal(t, model.EventValidateSessionDeletion, evs[0].Type)
	})

	t.Run("unknown session fails without blocking the batch", func(t *testing.T) {
		rig := newTestRig(t)
		a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateStopped, Server: &model.Server{InstanceID: "i-a"}})

		results := rig.orc.TerminateSessions(ctx, []model.SessionRef{
			{ID: "ghost", Owner: "u"},
			ref(a),
		})
		assert.Equal(t, "invalid session id ghost for user u, nothing to terminate", results[0].FailureReason)
		assert.False(t, results[1].Failed())
	})
}

func TestCreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("persists a provisioning session with its default week", func(t *testing.T) {
		rig := newTestRig(t)
		result := rig.orc.CreateSession(ctx, model.Session{Owner: "alice", DisplayName: "dev box"})
		require.False(t, result.Failed())

		sess := result.Session
		assert.NotEmpty(t, sess.ID)
		assert.Equal(t, model.StateProvisioning, sess.State)
		require.NotNil(t, sess.Server)

		stored, err := rig.mem.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StateProvisioning, stored.State)

		monday, err := rig.mem.Bundle().Schedules.Get(ctx, sess.ID, model.Monday)
		require.NoError(t, err)
		assert.Equal(t, model.ScheduleWorkingHours, monday.Type)
	})

	t.Run("provisioning failure persists nothing", func(t *testing.T) {
		rig := newTestRig(t)
		rig.prov.provisionErr = errors.New("quota exceeded")

		result := rig.orc.CreateSession(ctx, model.Session{Owner: "alice", DisplayName: "dev box"})
		require.True(t, result.Failed())
		assert.Equal(t, "quota exceeded", result.FailureReason)

		_, err := rig.mem.Get(ctx, result.Session.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestUpdateSchedule(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	a := rig.seed(t, model.Session{ID: "a", Owner: "u", State: model.StateReady})

	desired := &model.WeekSchedule{}
	desired.SetDay(model.Friday, &model.DaySchedule{Day: model.Friday, Type: model.ScheduleStopAllDay})

	result := rig.orc.UpdateSchedule(ctx, ref(a), desired)
	require.False(t, result.Failed())

	friday, err := rig.mem.Bundle().Schedules.Get(ctx, "a", model.Friday)
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleStopAllDay, friday.Type)
}
