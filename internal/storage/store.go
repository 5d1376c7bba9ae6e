package storage

import (
	"encoding/json"
	"time"
)

// Store defines the storage interface for aurelius's data layer. Every
// method is a single statement except ImportStreams and ImportSnapshot,
// which each run in one transaction.
type Store interface {
	Close() error
	Ping() error
	Driver() string

	// Streams
	CreateStream(s *Stream) (*Stream, error)
	GetStream(id int64) (*Stream, error)
	ListStreams(userID string) ([]Stream, error)
	GetActiveStreams(userID, serverID string) ([]Stream, error)
	GetStreamsByStatus(userID, serverID string, status StreamStatus, now time.Time) ([]Stream, error)
	GetOverdueStreams(now time.Time) ([]Stream, error)
	CompleteStream(id int64) (*Stream, error)
	UpdateStream(id int64, u StreamUpdate) (bool, error)
	DeleteStream(id int64) (bool, error)
	ImportStreams(streams []Stream) (int, error)
	ImportSnapshot(userID string, streams []Stream, settings map[string]json.RawMessage) (int, error)
	GetStreamStats(userID string, now time.Time) (*StreamStats, error)

	// Schedules
	CreateSchedule(s *Schedule) (*Schedule, error)
	UpdateSchedule(id int64, days WeekDays) error
	GetCurrentWeekSchedule(userID string, weekStart time.Time) (*Schedule, error)
	ListSchedules(userID string) ([]Schedule, error)

	// Captions
	SaveCaption(c *Caption) (*Caption, error)
	GetCaptionsByStream(streamID int64) ([]Caption, error)
	ListCaptions(userID string) ([]Caption, error)

	// Reviews
	SaveReview(r *Review) (*Review, error)
	GetReviewsByStream(streamID int64) ([]Review, error)
	GetUserReviews(userID string, limit int) ([]Review, error)

	// Profiles
	CreateOrUpdateProfile(p *UserProfile) (*UserProfile, error)
	GetUserProfile(userID string) (*UserProfile, error)

	// Reminders
	CreateReminder(r *Reminder) (*Reminder, error)
	GetActiveReminders(now time.Time) ([]Reminder, error)
	DeactivateReminder(id int64) (bool, error)
	ListReminders(userID string) ([]Reminder, error)

	// Agency templates
	GetAgencyTemplate(name string) (*AgencyTemplate, error)
	GetAllAgencyTemplates() ([]AgencyTemplate, error)
	SeedDefaultTemplates() (bool, error)

	// Settings
	GetSettings(userID string) (map[string]json.RawMessage, error)
	SetSettings(userID string, settings map[string]json.RawMessage) error
}

var _ Store = (*SQLStore)(nil)
