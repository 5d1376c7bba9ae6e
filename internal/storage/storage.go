package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// SQLStore implements Store over database/sql for both the local SQLite
// file and hosted Postgres.
type SQLStore struct {
	db          *sql.DB
	driver      string
	localUserID string
	now         func() time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

// NewStore opens (or creates) a local SQLite database whose rows default to
// the "local" owner.
func NewStore(dbPath string) (*SQLStore, error) {
	return Open("sqlite", dbPath, "local")
}

// OpenConfig opens the store described by cfg.
func OpenConfig(cfg *Config) (*SQLStore, error) {
	return Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.LocalUserID)
}

// Open connects to the database, creates the schema if needed and seeds the
// default agency templates into an empty table.
func Open(driver, dsn, localUserID string) (*SQLStore, error) {
	switch driver {
	case "sqlite":
		dsn = sqliteDSN(dsn)
	case "pgx":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ddl(driver, stmt)); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	s := &SQLStore{db: db, driver: driver, localUserID: localUserID, now: time.Now}
	if _, err := s.SeedDefaultTemplates(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed agency templates: %w", err)
	}
	return s, nil
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_time_format=sqlite&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ping verifies the connection is usable.
func (s *SQLStore) Ping() error {
	return s.db.Ping()
}

// Driver reports the database/sql driver name in use.
func (s *SQLStore) Driver() string {
	return s.driver
}

// SetClock replaces the time source used for created/updated stamps.
func (s *SQLStore) SetClock(now func() time.Time) {
	s.now = now
}

func (s *SQLStore) stamp() time.Time {
	return normalize(s.now())
}

// normalize stores every instant in UTC at microsecond precision so that
// SQLite text comparisons and Postgres timestamps agree.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func (s *SQLStore) exec(query string, args ...any) (sql.Result, error) {
	return s.db.Exec(rebind(s.driver, query), args...)
}

func (s *SQLStore) query(query string, args ...any) (*sql.Rows, error) {
	return s.db.Query(rebind(s.driver, query), args...)
}

func (s *SQLStore) queryRow(query string, args ...any) *sql.Row {
	return s.db.QueryRow(rebind(s.driver, query), args...)
}

func (s *SQLStore) owner(userID string) (string, error) {
	if userID != "" {
		return userID, nil
	}
	if s.localUserID != "" {
		return s.localUserID, nil
	}
	return "", ErrUserIDRequired
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return normalize(*t)
}

func encodeList(v []string) string {
	if v == nil {
		v = []string{}
	}
	data, _ := json.Marshal(v)
	return string(data)
}

func decodeList(raw string) []string {
	out := []string{}
	if raw == "" {
		return out
	}
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}

func optionalID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

// Streams

const streamColumns = `id, user_id, server_id, item_name, creator_name, creator_id, agency_name,
	due_date, status, priority, stream_type, notes, created_at, completed_at`

func scanStream(row rowScanner) (*Stream, error) {
	var st Stream
	var serverID, creatorID, agency, notes sql.NullString
	var completed sql.NullTime
	err := row.Scan(&st.ID, &st.UserID, &serverID, &st.ItemName, &st.CreatorName, &creatorID, &agency,
		&st.DueDate, &st.Status, &st.Priority, &st.StreamType, &notes, &st.CreatedAt, &completed)
	if err != nil {
		return nil, err
	}
	st.ServerID = serverID.String
	st.CreatorID = creatorID.String
	st.AgencyName = agency.String
	st.Notes = notes.String
	if completed.Valid {
		t := completed.Time
		st.CompletedAt = &t
	}
	return &st, nil
}

func collectStreams(rows *sql.Rows) ([]Stream, error) {
	defer rows.Close()
	var streams []Stream
	for rows.Next() {
		st, err := scanStream(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stream: %w", err)
		}
		streams = append(streams, *st)
	}
	return streams, rows.Err()
}

// validateStream applies the column defaults and rejects out-of-domain values.
func (s *SQLStore) validateStream(st *Stream) error {
	owner, err := s.owner(st.UserID)
	if err != nil {
		return err
	}
	st.UserID = owner
	if st.ItemName == "" || st.CreatorName == "" {
		return fmt.Errorf("%w: item name and creator name are required", ErrInvalidValue)
	}
	if st.DueDate.IsZero() {
		return fmt.Errorf("%w: due date is required", ErrInvalidValue)
	}
	if st.Status, err = ParseStreamStatus(string(st.Status)); err != nil {
		return err
	}
	if st.Status == StatusOverdue {
		return fmt.Errorf("%w: overdue is derived and cannot be stored", ErrInvalidValue)
	}
	if st.Priority, err = ParsePriority(string(st.Priority)); err != nil {
		return err
	}
	if st.StreamType, err = ParseStreamType(string(st.StreamType)); err != nil {
		return err
	}
	return nil
}

const insertStream = `INSERT INTO streams (user_id, server_id, item_name, creator_name, creator_id, agency_name,
	due_date, status, priority, stream_type, notes, created_at, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id`

func streamArgs(st *Stream) []any {
	return []any{
		st.UserID, nullString(st.ServerID), st.ItemName, st.CreatorName, nullString(st.CreatorID),
		nullString(st.AgencyName), normalize(st.DueDate), string(st.Status), string(st.Priority),
		string(st.StreamType), nullString(st.Notes), normalize(st.CreatedAt), nullTime(st.CompletedAt),
	}
}

// CreateStream inserts a stream with defaults applied and returns the stored row.
func (s *SQLStore) CreateStream(st *Stream) (*Stream, error) {
	in := *st
	if err := s.validateStream(&in); err != nil {
		return nil, err
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = s.stamp()
	}
	if err := s.queryRow(insertStream, streamArgs(&in)...).Scan(&in.ID); err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}
	return s.GetStream(in.ID)
}

// GetStream returns one stream by id, or ErrNotFound.
func (s *SQLStore) GetStream(id int64) (*Stream, error) {
	st, err := scanStream(s.queryRow("SELECT "+streamColumns+" FROM streams WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stream: %w", err)
	}
	return st, nil
}

// ListStreams returns all of a user's streams, newest first.
func (s *SQLStore) ListStreams(userID string) ([]Stream, error) {
	owner, err := s.owner(userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.query("SELECT "+streamColumns+" FROM streams WHERE user_id = ? ORDER BY created_at DESC, id DESC", owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list streams: %w", err)
	}
	return collectStreams(rows)
}

// GetActiveStreams returns the user's active streams, newest first,
// optionally restricted to one server.
func (s *SQLStore) GetActiveStreams(userID, serverID string) ([]Stream, error) {
	return s.GetStreamsByStatus(userID, serverID, StatusActive, time.Time{})
}

// GetStreamsByStatus filters a user's streams by status. StatusOverdue
// selects active streams whose due date is at or before now.
func (s *SQLStore) GetStreamsByStatus(userID, serverID string, status StreamStatus, now time.Time) ([]Stream, error) {
	owner, err := s.owner(userID)
	if err != nil {
		return nil, err
	}
	q := "SELECT " + streamColumns + " FROM streams WHERE user_id = ? AND status = ?"
	args := []any{owner}
	switch status {
	case StatusOverdue:
		q += " AND due_date <= ?"
		args = append(args, string(StatusActive), normalize(now))
	case StatusActive, StatusCompleted:
		args = append(args, string(status))
	default:
		return nil, fmt.Errorf("%w: status %q", ErrInvalidValue, status)
	}
	if serverID != "" {
		q += " AND server_id = ?"
		args = append(args, serverID)
	}
	q += " ORDER BY created_at DESC, id DESC"

	rows, err := s.query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get streams: %w", err)
	}
	return collectStreams(rows)
}

// GetOverdueStreams returns every active stream, across all users, whose
// due date is at or before now.
func (s *SQLStore) GetOverdueStreams(now time.Time) ([]Stream, error) {
	rows, err := s.query(
		"SELECT "+streamColumns+" FROM streams WHERE status = ? AND due_date <= ? ORDER BY due_date",
		string(StatusActive), normalize(now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get overdue streams: %w", err)
	}
	return collectStreams(rows)
}

// CompleteStream marks a stream completed and stamps completed_at. It does
// not check the prior status, so repeating it only moves completed_at.
func (s *SQLStore) CompleteStream(id int64) (*Stream, error) {
	res, err := s.exec(
		"UPDATE streams SET status = ?, completed_at = ? WHERE id = ?",
		string(StatusCompleted), s.stamp(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to complete stream: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return s.GetStream(id)
}

// UpdateStream applies the non-nil fields of u and reports whether a row changed.
func (s *SQLStore) UpdateStream(id int64, u StreamUpdate) (bool, error) {
	var sets []string
	var args []any
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if u.ItemName != nil {
		if *u.ItemName == "" {
			return false, fmt.Errorf("%w: item name cannot be empty", ErrInvalidValue)
		}
		add("item_name", *u.ItemName)
	}
	if u.CreatorName != nil {
		if *u.CreatorName == "" {
			return false, fmt.Errorf("%w: creator name cannot be empty", ErrInvalidValue)
		}
		add("creator_name", *u.CreatorName)
	}
	if u.CreatorID != nil {
		add("creator_id", nullString(*u.CreatorID))
	}
	if u.AgencyName != nil {
		add("agency_name", nullString(*u.AgencyName))
	}
	if u.DueDate != nil {
		add("due_date", normalize(*u.DueDate))
	}
	if u.Status != nil {
		status, err := ParseStreamStatus(string(*u.Status))
		if err != nil {
			return false, err
		}
		switch status {
		case StatusOverdue:
			return false, fmt.Errorf("%w: overdue is derived and cannot be stored", ErrInvalidValue)
		case StatusCompleted:
			add("completed_at", s.stamp())
		case StatusActive:
			add("completed_at", nil)
		}
		add("status", string(status))
	}
	if u.Priority != nil {
		p, err := ParsePriority(string(*u.Priority))
		if err != nil {
			return false, err
		}
		add("priority", string(p))
	}
	if u.StreamType != nil {
		st, err := ParseStreamType(string(*u.StreamType))
		if err != nil {
			return false, err
		}
		add("stream_type", string(st))
	}
	if u.Notes != nil {
		add("notes", nullString(*u.Notes))
	}
	if len(sets) == 0 {
		return false, nil
	}

	args = append(args, id)
	res, err := s.exec("UPDATE streams SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return false, fmt.Errorf("failed to update stream: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteStream removes a stream and reports whether it existed.
func (s *SQLStore) DeleteStream(id int64) (bool, error) {
	res, err := s.exec("DELETE FROM streams WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete stream: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ImportStreams inserts all streams in one transaction. Any invalid row or
// failed insert rolls back the whole batch. Imported rows get fresh ids.
func (s *SQLStore) ImportStreams(streams []Stream) (int, error) {
	return s.ImportSnapshot("", streams, nil)
}

// ImportSnapshot inserts streams and upserts settings for userID in one
// transaction, so a bad setting leaves no imported streams behind.
func (s *SQLStore) ImportSnapshot(userID string, streams []Stream, settings map[string]json.RawMessage) (int, error) {
	rows := make([]Stream, len(streams))
	for i := range streams {
		rows[i] = streams[i]
		if err := s.validateStream(&rows[i]); err != nil {
			return 0, fmt.Errorf("stream %d: %w", i, err)
		}
		if rows[i].CreatedAt.IsZero() {
			rows[i].CreatedAt = s.stamp()
		}
	}
	var owner string
	if len(settings) > 0 {
		var err error
		if owner, err = s.owner(userID); err != nil {
			return 0, err
		}
		for k, v := range settings {
			if !json.Valid(v) {
				return 0, fmt.Errorf("%w: setting %q is not valid JSON", ErrInvalidValue, k)
			}
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	stmt := rebind(s.driver, `INSERT INTO streams (user_id, server_id, item_name, creator_name, creator_id, agency_name,
	due_date, status, priority, stream_type, notes, created_at, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for i := range rows {
		if _, err := tx.Exec(stmt, streamArgs(&rows[i])...); err != nil {
			return 0, fmt.Errorf("failed to import stream %d: %w", i, err)
		}
	}

	upsert := rebind(s.driver, `INSERT INTO user_settings (user_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, key) DO UPDATE SET
		  value = excluded.value,
		  updated_at = excluded.updated_at`)
	now := s.stamp()
	for k, v := range settings {
		if _, err := tx.Exec(upsert, owner, k, string(v), now); err != nil {
			return 0, fmt.Errorf("failed to import setting %q: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return len(rows), nil
}

// GetStreamStats counts a user's streams by state. Streams created in the
// seven days before now count as recent.
func (s *SQLStore) GetStreamStats(userID string, now time.Time) (*StreamStats, error) {
	owner, err := s.owner(userID)
	if err != nil {
		return nil, err
	}
	var st StreamStats
	err = s.queryRow(`SELECT
		COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'active' AND due_date <= ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0)
		FROM streams WHERE user_id = ?`,
		normalize(now), normalize(now.AddDate(0, 0, -7)), owner,
	).Scan(&st.Active, &st.Completed, &st.Overdue, &st.CreatedRecent)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream stats: %w", err)
	}
	return &st, nil
}
