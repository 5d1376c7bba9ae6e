package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Schedules

const scheduleColumns = `id, user_id, server_id, week_start, week_end,
	monday, tuesday, wednesday, thursday, friday, saturday, sunday, created_at, updated_at`

func scanSchedule(row rowScanner) (*Schedule, error) {
	var sc Schedule
	var serverID sql.NullString
	raw := make([]string, 7)
	err := row.Scan(&sc.ID, &sc.UserID, &serverID, &sc.WeekStart, &sc.WeekEnd,
		&raw[0], &raw[1], &raw[2], &raw[3], &raw[4], &raw[5], &raw[6], &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sc.ServerID = serverID.String
	for i, slot := range sc.Days.Slots() {
		*slot = decodeList(raw[i])
	}
	return &sc, nil
}

func dayArgs(days WeekDays) []any {
	args := make([]any, 0, 7)
	for _, slot := range days.Slots() {
		args = append(args, encodeList(*slot))
	}
	return args
}

// CreateSchedule inserts a weekly schedule. Nothing prevents two rows for
// the same user and week; callers check GetCurrentWeekSchedule first.
func (s *SQLStore) CreateSchedule(sc *Schedule) (*Schedule, error) {
	owner, err := s.owner(sc.UserID)
	if err != nil {
		return nil, err
	}
	now := s.stamp()
	args := []any{owner, nullString(sc.ServerID), normalize(sc.WeekStart), normalize(sc.WeekEnd)}
	args = append(args, dayArgs(sc.Days)...)
	args = append(args, now, now)

	var id int64
	err = s.queryRow(`INSERT INTO schedules (user_id, server_id, week_start, week_end,
		monday, tuesday, wednesday, thursday, friday, saturday, sunday, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`, args...).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}
	return s.getSchedule(id)
}

// UpdateSchedule replaces the day lists of an existing schedule.
func (s *SQLStore) UpdateSchedule(id int64, days WeekDays) error {
	args := dayArgs(days)
	args = append(args, s.stamp(), id)
	res, err := s.exec(`UPDATE schedules SET monday = ?, tuesday = ?, wednesday = ?, thursday = ?,
		friday = ?, saturday = ?, sunday = ?, updated_at = ? WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) getSchedule(id int64) (*Schedule, error) {
	sc, err := scanSchedule(s.queryRow("SELECT "+scheduleColumns+" FROM schedules WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return sc, nil
}

// GetCurrentWeekSchedule returns the user's schedule whose week_start equals
// weekStart exactly, or nil when there is none. With duplicates the oldest
// row wins.
func (s *SQLStore) GetCurrentWeekSchedule(userID string, weekStart time.Time) (*Schedule, error) {
	sc, err := scanSchedule(s.queryRow(
		"SELECT "+scheduleColumns+" FROM schedules WHERE user_id = ? AND week_start = ? ORDER BY id LIMIT 1",
		userID, normalize(weekStart),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get week schedule: %w", err)
	}
	return sc, nil
}

// ListSchedules returns a user's schedules, latest week first.
func (s *SQLStore) ListSchedules(userID string) ([]Schedule, error) {
	rows, err := s.query("SELECT "+scheduleColumns+" FROM schedules WHERE user_id = ? ORDER BY week_start DESC, id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var out []Schedule
	for rows.Next() {
		sc, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		out = append(out, *sc)
	}
	return out, rows.Err()
}

// Reminders

const reminderColumns = `id, user_id, server_id, stream_id, reminder_type, reminder_text,
	scheduled_for, is_active, created_at`

func scanReminder(row rowScanner) (*Reminder, error) {
	var r Reminder
	var serverID sql.NullString
	var streamID sql.NullInt64
	err := row.Scan(&r.ID, &r.UserID, &serverID, &streamID, &r.ReminderType, &r.ReminderText,
		&r.ScheduledFor, &r.IsActive, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.ServerID = serverID.String
	r.StreamID = optionalID(streamID)
	return &r, nil
}

func collectReminders(rows *sql.Rows) ([]Reminder, error) {
	defer rows.Close()
	var out []Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// CreateReminder inserts a reminder exactly as given, including IsActive.
func (s *SQLStore) CreateReminder(r *Reminder) (*Reminder, error) {
	owner, err := s.owner(r.UserID)
	if err != nil {
		return nil, err
	}
	typ, err := ParseReminderType(string(r.ReminderType))
	if err != nil {
		return nil, err
	}
	if r.ScheduledFor.IsZero() {
		return nil, fmt.Errorf("%w: scheduled time is required", ErrInvalidValue)
	}

	var id int64
	err = s.queryRow(`INSERT INTO reminders (user_id, server_id, stream_id, reminder_type, reminder_text,
		scheduled_for, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		owner, nullString(r.ServerID), r.StreamID, string(typ), r.ReminderText,
		normalize(r.ScheduledFor), r.IsActive, s.stamp(),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	out, err := scanReminder(s.queryRow("SELECT "+reminderColumns+" FROM reminders WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("failed to read reminder: %w", err)
	}
	return out, nil
}

// GetActiveReminders returns every active reminder, across all users, that
// is due at or before now.
func (s *SQLStore) GetActiveReminders(now time.Time) ([]Reminder, error) {
	rows, err := s.query(
		"SELECT "+reminderColumns+" FROM reminders WHERE is_active = ? AND scheduled_for <= ? ORDER BY scheduled_for, id",
		true, normalize(now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get active reminders: %w", err)
	}
	return collectReminders(rows)
}

// DeactivateReminder flips is_active from true to false. It reports false
// when the reminder was already inactive, so at most one caller claims it.
func (s *SQLStore) DeactivateReminder(id int64) (bool, error) {
	res, err := s.exec("UPDATE reminders SET is_active = ? WHERE id = ? AND is_active = ?", false, id, true)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate reminder: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListReminders returns a user's reminders, soonest first.
func (s *SQLStore) ListReminders(userID string) ([]Reminder, error) {
	rows, err := s.query("SELECT "+reminderColumns+" FROM reminders WHERE user_id = ? ORDER BY scheduled_for, id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return collectReminders(rows)
}
