package storage

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a lookup by id matches no row.
	ErrNotFound = errors.New("not found")
	// ErrUserIDRequired is returned by the hosted store when a write names no owner.
	ErrUserIDRequired = errors.New("user id is required")
	// ErrInvalidValue wraps every rejected enum or range value.
	ErrInvalidValue = errors.New("invalid value")
)

type StreamStatus string

const (
	StatusActive    StreamStatus = "active"
	StatusCompleted StreamStatus = "completed"
	// StatusOverdue is only ever derived from active rows past their due
	// date. It is accepted as a filter and never written.
	StatusOverdue StreamStatus = "overdue"
)

// ParseStreamStatus validates s. An empty string yields StatusActive.
func ParseStreamStatus(s string) (StreamStatus, error) {
	switch StreamStatus(s) {
	case "":
		return StatusActive, nil
	case StatusActive, StatusCompleted, StatusOverdue:
		return StreamStatus(s), nil
	}
	return "", fmt.Errorf("%w: status %q", ErrInvalidValue, s)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority validates s. An empty string yields PriorityMedium.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), nil
	}
	return "", fmt.Errorf("%w: priority %q", ErrInvalidValue, s)
}

type StreamType string

const (
	StreamShowcase  StreamType = "showcase"
	StreamSponsored StreamType = "sponsored"
	StreamOpen      StreamType = "open"
)

// ParseStreamType validates s. An empty string yields StreamShowcase.
func ParseStreamType(s string) (StreamType, error) {
	switch StreamType(s) {
	case "":
		return StreamShowcase, nil
	case StreamShowcase, StreamSponsored, StreamOpen:
		return StreamType(s), nil
	}
	return "", fmt.Errorf("%w: stream type %q", ErrInvalidValue, s)
}

type Platform string

const (
	PlatformIMVU      Platform = "imvu"
	PlatformInstagram Platform = "instagram"
)

func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformIMVU, PlatformInstagram:
		return Platform(s), nil
	}
	return "", fmt.Errorf("%w: platform %q", ErrInvalidValue, s)
}

type CaptionStyle string

const (
	StyleElegant      CaptionStyle = "elegant"
	StyleCasual       CaptionStyle = "casual"
	StyleProfessional CaptionStyle = "professional"
	StyleCreative     CaptionStyle = "creative"
)

// ParseCaptionStyle validates s. An empty string yields StyleElegant.
func ParseCaptionStyle(s string) (CaptionStyle, error) {
	switch CaptionStyle(s) {
	case "":
		return StyleElegant, nil
	case StyleElegant, StyleCasual, StyleProfessional, StyleCreative:
		return CaptionStyle(s), nil
	}
	return "", fmt.Errorf("%w: caption style %q", ErrInvalidValue, s)
}

type ReminderType string

const (
	ReminderDueDate ReminderType = "due_date"
	ReminderCustom  ReminderType = "custom"
	ReminderWeekly  ReminderType = "weekly"
)

func ParseReminderType(s string) (ReminderType, error) {
	switch ReminderType(s) {
	case ReminderDueDate, ReminderCustom, ReminderWeekly:
		return ReminderType(s), nil
	}
	return "", fmt.Errorf("%w: reminder type %q", ErrInvalidValue, s)
}

// ValidateRating checks the 1-5 review scale.
func ValidateRating(r int) error {
	if r < 1 || r > 5 {
		return fmt.Errorf("%w: rating %d outside 1-5", ErrInvalidValue, r)
	}
	return nil
}

type Stream struct {
	ID          int64        `json:"id"`
	UserID      string       `json:"user_id"`
	ServerID    string       `json:"server_id,omitempty"`
	ItemName    string       `json:"item_name"`
	CreatorName string       `json:"creator_name"`
	CreatorID   string       `json:"creator_id,omitempty"`
	AgencyName  string       `json:"agency_name,omitempty"`
	DueDate     time.Time    `json:"due_date"`
	Status      StreamStatus `json:"status"`
	Priority    Priority     `json:"priority"`
	StreamType  StreamType   `json:"stream_type"`
	Notes       string       `json:"notes,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// StreamUpdate carries the fields a partial stream update may change.
// Nil fields are left untouched.
type StreamUpdate struct {
	ItemName    *string       `json:"item_name,omitempty"`
	CreatorName *string       `json:"creator_name,omitempty"`
	CreatorID   *string       `json:"creator_id,omitempty"`
	AgencyName  *string       `json:"agency_name,omitempty"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	Status      *StreamStatus `json:"status,omitempty"`
	Priority    *Priority     `json:"priority,omitempty"`
	StreamType  *StreamType   `json:"stream_type,omitempty"`
	Notes       *string       `json:"notes,omitempty"`
}

// StreamStats summarizes one user's streams for the dashboard.
type StreamStats struct {
	Active        int `json:"active"`
	Completed     int `json:"completed"`
	Overdue       int `json:"overdue"`
	CreatedRecent int `json:"created_this_week"`
}

// WeekDays holds the per-day entries of a weekly schedule.
type WeekDays struct {
	Monday    []string `json:"monday"`
	Tuesday   []string `json:"tuesday"`
	Wednesday []string `json:"wednesday"`
	Thursday  []string `json:"thursday"`
	Friday    []string `json:"friday"`
	Saturday  []string `json:"saturday"`
	Sunday    []string `json:"sunday"`
}

// Slots returns the days in Monday-first order.
func (w *WeekDays) Slots() []*[]string {
	return []*[]string{&w.Monday, &w.Tuesday, &w.Wednesday, &w.Thursday, &w.Friday, &w.Saturday, &w.Sunday}
}

type Schedule struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	ServerID  string    `json:"server_id,omitempty"`
	WeekStart time.Time `json:"week_start"`
	WeekEnd   time.Time `json:"week_end"`
	Days      WeekDays  `json:"days"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Caption struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	StreamID     *int64    `json:"stream_id,omitempty"`
	Platform     Platform  `json:"platform"`
	CaptionText  string    `json:"caption_text"`
	AgencyFormat string    `json:"agency_format,omitempty"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"created_at"`
}

type Review struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	StreamID   *int64    `json:"stream_id,omitempty"`
	ItemName   string    `json:"item_name"`
	ItemID     string    `json:"item_id,omitempty"`
	ReviewText string    `json:"review_text"`
	Rating     *int      `json:"rating,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReminderSettings struct {
	StreamReminders bool `json:"streamReminders"`
	WeeklyReminders bool `json:"weeklyReminders"`
	DailyCheckIns   bool `json:"dailyCheckIns"`
}

// DefaultReminderSettings is applied to new profiles.
func DefaultReminderSettings() ReminderSettings {
	return ReminderSettings{StreamReminders: true, WeeklyReminders: true}
}

type UserProfile struct {
	ID                int64            `json:"id"`
	UserID            string           `json:"user_id"`
	IMVUName          string           `json:"imvu_name,omitempty"`
	InstagramHandle   string           `json:"instagram_handle,omitempty"`
	PreferredAgencies []string         `json:"preferred_agencies"`
	CaptionStyle      CaptionStyle     `json:"caption_style"`
	Timezone          string           `json:"timezone,omitempty"`
	ReminderSettings  ReminderSettings `json:"reminder_settings"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

type Reminder struct {
	ID           int64        `json:"id"`
	UserID       string       `json:"user_id"`
	ServerID     string       `json:"server_id,omitempty"`
	StreamID     *int64       `json:"stream_id,omitempty"`
	ReminderType ReminderType `json:"reminder_type"`
	ReminderText string       `json:"reminder_text"`
	ScheduledFor time.Time    `json:"scheduled_for"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
}

type AgencyTemplate struct {
	ID                     int64     `json:"id"`
	AgencyName             string    `json:"agency_name"`
	IMVUCaptionFormat      string    `json:"imvu_caption_format,omitempty"`
	InstagramCaptionFormat string    `json:"instagram_caption_format,omitempty"`
	RequiredTags           []string  `json:"required_tags"`
	OptionalTags           []string  `json:"optional_tags"`
	RequestFormat          string    `json:"request_format,omitempty"`
	IsActive               bool      `json:"is_active"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}
