package storage

import (
	"strconv"
	"strings"
)

// schemaStatements is the single schema definition. It is written in the
// SQLite dialect and rewritten by ddl for Postgres.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS streams (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    server_id TEXT,
    item_name TEXT NOT NULL,
    creator_name TEXT NOT NULL,
    creator_id TEXT,
    agency_name TEXT,
    due_date DATETIME NOT NULL,
    status TEXT NOT NULL DEFAULT 'active',
    priority TEXT NOT NULL DEFAULT 'medium',
    stream_type TEXT NOT NULL DEFAULT 'showcase',
    notes TEXT,
    created_at DATETIME NOT NULL,
    completed_at DATETIME
)`,
	`CREATE INDEX IF NOT EXISTS idx_streams_user_status ON streams(user_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_streams_due ON streams(status, due_date)`,

	`CREATE TABLE IF NOT EXISTS schedules (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    server_id TEXT,
    week_start DATETIME NOT NULL,
    week_end DATETIME NOT NULL,
    monday TEXT NOT NULL DEFAULT '[]',
    tuesday TEXT NOT NULL DEFAULT '[]',
    wednesday TEXT NOT NULL DEFAULT '[]',
    thursday TEXT NOT NULL DEFAULT '[]',
    friday TEXT NOT NULL DEFAULT '[]',
    saturday TEXT NOT NULL DEFAULT '[]',
    sunday TEXT NOT NULL DEFAULT '[]',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_user_week ON schedules(user_id, week_start)`,

	`CREATE TABLE IF NOT EXISTS captions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    stream_id INTEGER REFERENCES streams(id) ON DELETE SET NULL,
    platform TEXT NOT NULL,
    caption_text TEXT NOT NULL,
    agency_format TEXT,
    tags TEXT NOT NULL DEFAULT '[]',
    created_at DATETIME NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS reviews (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    stream_id INTEGER REFERENCES streams(id) ON DELETE SET NULL,
    item_name TEXT NOT NULL,
    item_id TEXT,
    review_text TEXT NOT NULL,
    rating INTEGER,
    created_at DATETIME NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_user ON reviews(user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS user_profiles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL UNIQUE,
    imvu_name TEXT,
    instagram_handle TEXT,
    preferred_agencies TEXT NOT NULL DEFAULT '[]',
    caption_style TEXT NOT NULL DEFAULT 'elegant',
    timezone TEXT,
    reminder_settings TEXT NOT NULL DEFAULT '{}',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS reminders (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    server_id TEXT,
    stream_id INTEGER REFERENCES streams(id) ON DELETE CASCADE,
    reminder_type TEXT NOT NULL,
    reminder_text TEXT NOT NULL,
    scheduled_for DATETIME NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at DATETIME NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(is_active, scheduled_for)`,

	`CREATE TABLE IF NOT EXISTS agency_templates (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    agency_name TEXT NOT NULL UNIQUE,
    imvu_caption_format TEXT,
    instagram_caption_format TEXT,
    required_tags TEXT NOT NULL DEFAULT '[]',
    optional_tags TEXT NOT NULL DEFAULT '[]',
    request_format TEXT,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS user_settings (
    user_id TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    updated_at DATETIME NOT NULL,
    PRIMARY KEY (user_id, key)
)`,
}

// ddl returns stmt in the given driver's dialect.
func ddl(driver, stmt string) string {
	if driver != "pgx" {
		return stmt
	}
	r := strings.NewReplacer(
		"INTEGER PRIMARY KEY AUTOINCREMENT", "BIGSERIAL PRIMARY KEY",
		"INTEGER REFERENCES", "BIGINT REFERENCES",
		"DATETIME", "TIMESTAMPTZ",
	)
	return r.Replace(stmt)
}

// rebind rewrites ? placeholders to $n for Postgres. Queries in this package
// never carry a literal question mark.
func rebind(driver, query string) string {
	if driver != "pgx" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
