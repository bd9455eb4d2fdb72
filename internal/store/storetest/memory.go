// SPDX-License-Identifier: MIT

// Package storetest provides in-memory store implementations for tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/driftlab/vdeskd/internal/model"
	"github.com/driftlab/vdeskd/internal/store"
)

// Memory implements every store contract in memory. Safe for concurrent use.
type Memory struct {
	mu          sync.Mutex
	sessions    map[string]model.Session
	schedules   map[string]model.DaySchedule // keyed by schedule id
	permissions map[string][]model.SessionPermission
	nextID      int

	// ScheduleWrites counts schedule create/delete calls, letting tests
	// assert that reconciliation avoids redundant writes.
	ScheduleWrites int
}

// NewMemory returns an empty in-memory store bundle.
func NewMemory() *Memory {
	return &Memory{
		sessions:    make(map[string]model.Session),
		schedules:   make(map[string]model.DaySchedule),
		permissions: make(map[string][]model.SessionPermission),
	}
}

// Bundle returns the store contracts backed by this instance.
func (m *Memory) Bundle() store.Stores {
	return store.Stores{Sessions: m, Schedules: (*memSchedules)(m), Permissions: (*memPermissions)(m)}
}

func (m *Memory) Get(ctx context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := s
	return &cp, nil
}

func (m *Memory) Create(ctx context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	now := time.Now()
	if s.CreatedOn.IsZero() {
		s.CreatedOn = now
	}
	s.UpdatedOn = now
	m.sessions[s.ID] = *s
	return nil
}

func (m *Memory) Update(ctx context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; !ok {
		return store.ErrNotFound
	}
	s.UpdatedOn = time.Now()
	m.sessions[s.ID] = *s
	return nil
}

func (m *Memory) UpdateIf(ctx context.Context, s *model.Session, expect model.SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.sessions[s.ID]
	if !ok {
		return store.ErrNotFound
	}
	if cur.State != expect {
		return store.ErrStateConflict
	}
	s.UpdatedOn = time.Now()
	m.sessions[s.ID] = *s
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

type memSchedules Memory

func (m *memSchedules) Get(ctx context.Context, sessionID string, day model.DayOfWeek) (*model.DaySchedule, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	for _, ds := range mm.schedules {
		if ds.SessionID == sessionID && ds.Day == day {
			cp := ds
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memSchedules) Week(ctx context.Context, sessionID string) (*model.WeekSchedule, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	week := &model.WeekSchedule{}
	for _, ds := range mm.schedules {
		if ds.SessionID == sessionID {
			cp := ds
			week.SetDay(ds.Day, &cp)
		}
	}
	return week, nil
}

func (m *memSchedules) ListDay(ctx context.Context, day model.DayOfWeek) ([]model.DaySchedule, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	var out []model.DaySchedule
	for _, ds := range mm.schedules {
		if ds.Day == day {
			out = append(out, ds)
		}
	}
	return out, nil
}

func (m *memSchedules) Create(ctx context.Context, ds *model.DaySchedule) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.nextID++
	if ds.ID == "" {
		ds.ID = fmt.Sprintf("sched-%d", mm.nextID)
	}
	mm.schedules[ds.ID] = *ds
	mm.ScheduleWrites++
	return nil
}

func (m *memSchedules) Delete(ctx context.Context, ds *model.DaySchedule) error {
	if ds == nil || ds.ID == "" {
		return nil
	}
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	delete(mm.schedules, ds.ID)
	mm.ScheduleWrites++
	return nil
}

func (m *memSchedules) DeleteForSession(ctx context.Context, sessionID string) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	for id, ds := range mm.schedules {
		if ds.SessionID == sessionID {
			delete(mm.schedules, id)
			mm.ScheduleWrites++
		}
	}
	return nil
}

type memPermissions Memory

func (m *memPermissions) Create(ctx context.Context, p *model.SessionPermission) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.permissions[p.SessionID] = append(mm.permissions[p.SessionID], *p)
	return nil
}

func (m *memPermissions) ListForSession(ctx context.Context, sessionID string) ([]model.SessionPermission, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return append([]model.SessionPermission(nil), mm.permissions[sessionID]...), nil
}

func (m *memPermissions) DeleteForSession(ctx context.Context, sessionID string) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	delete(mm.permissions, sessionID)
	return nil
}

var (
	_ store.SessionStore    = (*Memory)(nil)
	_ store.ScheduleStore   = (*memSchedules)(nil)
	_ store.PermissionStore = (*memPermissions)(nil)
)
