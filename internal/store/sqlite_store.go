// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go driver

	"github.com/driftlab/vdeskd/internal/model"
)

const schemaVersion = 1

// SqliteStore implements SessionStore, ScheduleStore and PermissionStore on a
// single SQLite database.
type SqliteStore struct {
	DB *sql.DB
}

// NewSqliteStore opens (and migrates) the database at dbPath.
func NewSqliteStore(dbPath string) (*SqliteStore, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	s := &SqliteStore{DB: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session store: migration failed: %w", err)
	}
	return s, nil
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}

// openDB opens the connection pool. WAL and busy_timeout ride in the DSN so
// every pooled connection carries them. The controller is a single
// low-concurrency writer, so the pool stays small.
func openDB(dbPath string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		dbPath, (5 * time.Second).Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("session store: open %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session store: ping: %w", err)
	}
	return db, nil
}

// Bundle returns the store contracts backed by this database.
func (s *SqliteStore) Bundle() Stores {
	return Stores{
		Sessions:    s,
		Schedules:   (*sqliteSchedules)(s),
		Permissions: (*sqlitePermissions)(s),
	}
}

func (s *SqliteStore) migrate() error {
	var currentVersion int
	if err := s.DB.QueryRow("PRAGMA user_version").Scan(&currentVersion); err != nil {
		return err
	}
	if currentVersion >= schemaVersion {
		return nil
	}

	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		display_name TEXT,
		state TEXT NOT NULL,
		server_json TEXT,
		remote_session_id TEXT,
		hibernation_capable INTEGER NOT NULL DEFAULT 0,
		failure_reason TEXT,
		created_at_ms INTEGER NOT NULL,
		updated_at_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_owner ON sessions(owner);
	CREATE INDEX IF NOT EXISTS idx_sessions_state ON sessions(state);

	CREATE TABLE IF NOT EXISTS schedules (
		schedule_id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		owner TEXT NOT NULL,
		day_of_week TEXT NOT NULL,
		schedule_type TEXT NOT NULL,
		start_up_time TEXT,
		shut_down_time TEXT,
		UNIQUE(session_id, day_of_week)
	);

	CREATE INDEX IF NOT EXISTS idx_schedules_day ON schedules(day_of_week);

	CREATE TABLE IF NOT EXISTS permissions (
		session_id TEXT NOT NULL,
		actor TEXT NOT NULL,
		profile TEXT NOT NULL,
		PRIMARY KEY (session_id, actor)
	);
	`
	if _, err := tx.Exec(schema); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

// --- Session CRUD ---

const sessionColumns = "session_id, owner, display_name, state, server_json, remote_session_id, hibernation_capable, failure_reason, created_at_ms, updated_at_ms"

func (s *SqliteStore) Get(ctx context.Context, id string) (*model.Session, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE session_id = ?", id)
	return scanSession(row)
}

func scanSession(row *sql.Row) (*model.Session, error) {
	var (
		sess       model.Session
		serverJSON sql.NullString
		display    sql.NullString
		remoteID   sql.NullString
		failure    sql.NullString
		hibernate  int
		createdMs  int64
		updatedMs  int64
	)
	err := row.Scan(&sess.ID, &sess.Owner, &display, &sess.State, &serverJSON, &remoteID, &hibernate, &failure, &createdMs, &updatedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sess.DisplayName = display.String
	sess.RemoteSessionID = remoteID.String
	sess.FailureReason = failure.String
	sess.HibernationCapable = hibernate != 0
	sess.CreatedOn = time.UnixMilli(createdMs)
	sess.UpdatedOn = time.UnixMilli(updatedMs)
	if serverJSON.Valid && serverJSON.String != "" {
		var srv model.Server
		if err := json.Unmarshal([]byte(serverJSON.String), &srv); err != nil {
			return nil, fmt.Errorf("session %s: corrupt server projection: %w", sess.ID, err)
		}
		sess.Server = &srv
	}
	return &sess, nil
}

func serverJSON(srv *model.Server) (any, error) {
	if srv == nil {
		return nil, nil
	}
	raw, err := json.Marshal(srv)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (s *SqliteStore) Create(ctx context.Context, sess *model.Session) error {
	now := time.Now()
	if sess.CreatedOn.IsZero() {
		sess.CreatedOn = now
	}
	sess.UpdatedOn = now

	srv, err := serverJSON(sess.Server)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx,
		"INSERT INTO sessions ("+sessionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		sess.ID, sess.Owner, sess.DisplayName, sess.State, srv, sess.RemoteSessionID,
		boolInt(sess.HibernationCapable), sess.FailureReason,
		sess.CreatedOn.UnixMilli(), sess.UpdatedOn.UnixMilli())
	return err
}

func (s *SqliteStore) Update(ctx context.Context, sess *model.Session) error {
	res, err := s.updateWhere(ctx, sess, "session_id = ?", sess.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SqliteStore) UpdateIf(ctx context.Context, sess *model.Session, expect model.SessionState) error {
	res, err := s.updateWhere(ctx, sess, "session_id = ? AND state = ?", sess.ID, string(expect))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish a vanished record from a lost precondition race.
		if _, getErr := s.Get(ctx, sess.ID); errors.Is(getErr, ErrNotFound) {
			return ErrNotFound
		}
		return ErrStateConflict
	}
	return nil
}

func (s *SqliteStore) updateWhere(ctx context.Context, sess *model.Session, where string, args ...any) (sql.Result, error) {
	sess.UpdatedOn = time.Now()
	srv, err := serverJSON(sess.Server)
	if err != nil {
		return nil, err
	}
	query := "UPDATE sessions SET owner = ?, display_name = ?, state = ?, server_json = ?, remote_session_id = ?, hibernation_capable = ?, failure_reason = ?, updated_at_ms = ? WHERE " + where
	full := append([]any{
		sess.Owner, sess.DisplayName, sess.State, srv, sess.RemoteSessionID,
		boolInt(sess.HibernationCapable), sess.FailureReason, sess.UpdatedOn.UnixMilli(),
	}, args...)
	return s.DB.ExecContext(ctx, query, full...)
}

func (s *SqliteStore) Delete(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM sessions WHERE session_id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// --- Schedule CRUD ---

const scheduleColumns = "schedule_id, session_id, owner, day_of_week, schedule_type, start_up_time, shut_down_time"

func (s *SqliteStore) GetSchedule(ctx context.Context, sessionID string, day model.DayOfWeek) (*model.DaySchedule, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT "+scheduleColumns+" FROM schedules WHERE session_id = ? AND day_of_week = ?",
		sessionID, string(day))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanSchedule(rows)
}

func scanSchedule(rows *sql.Rows) (*model.DaySchedule, error) {
	var (
		ds       model.DaySchedule
		start    sql.NullString
		shutdown sql.NullString
	)
	if err := rows.Scan(&ds.ID, &ds.SessionID, &ds.Owner, &ds.Day, &ds.Type, &start, &shutdown); err != nil {
		return nil, err
	}
	ds.StartUpTime = start.String
	ds.ShutDownTime = shutdown.String
	return &ds, nil
}

func (s *SqliteStore) Week(ctx context.Context, sessionID string) (*model.WeekSchedule, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT "+scheduleColumns+" FROM schedules WHERE session_id = ?", sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	week := &model.WeekSchedule{}
	for rows.Next() {
		ds, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		week.SetDay(ds.Day, ds)
	}
	return week, rows.Err()
}

func (s *SqliteStore) ListDay(ctx context.Context, day model.DayOfWeek) ([]model.DaySchedule, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT "+scheduleColumns+" FROM schedules WHERE day_of_week = ?", string(day))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.DaySchedule
	for rows.Next() {
		ds, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ds)
	}
	return out, rows.Err()
}

func (s *SqliteStore) CreateSchedule(ctx context.Context, ds *model.DaySchedule) error {
	if ds.ID == "" {
		ds.ID = uuid.NewString()
	}
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO schedules ("+scheduleColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		ds.ID, ds.SessionID, ds.Owner, string(ds.Day), string(ds.Type), ds.StartUpTime, ds.ShutDownTime)
	return err
}

func (s *SqliteStore) DeleteSchedule(ctx context.Context, ds *model.DaySchedule) error {
	if ds == nil || ds.ID == "" {
		return nil
	}
	_, err := s.DB.ExecContext(ctx, "DELETE FROM schedules WHERE schedule_id = ?", ds.ID)
	return err
}

func (s *SqliteStore) DeleteSchedulesForSession(ctx context.Context, sessionID string) error {
	_, err := s.DB.ExecContext(ctx, "DELETE FROM schedules WHERE session_id = ?", sessionID)
	return err
}

// --- Permission CRUD ---

func (s *SqliteStore) CreatePermission(ctx context.Context, p *model.SessionPermission) error {
	_, err := s.DB.ExecContext(ctx,
		"INSERT OR REPLACE INTO permissions (session_id, actor, profile) VALUES (?, ?, ?)",
		p.SessionID, p.Actor, p.Profile)
	return err
}

func (s *SqliteStore) ListPermissionsForSession(ctx context.Context, sessionID string) ([]model.SessionPermission, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT session_id, actor, profile FROM permissions WHERE session_id = ?", sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.SessionPermission
	for rows.Next() {
		var p model.SessionPermission
		if err := rows.Scan(&p.SessionID, &p.Actor, &p.Profile); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SqliteStore) DeletePermissionsForSession(ctx context.Context, sessionID string) error {
	_, err := s.DB.ExecContext(ctx, "DELETE FROM permissions WHERE session_id = ?", sessionID)
	return err
}
