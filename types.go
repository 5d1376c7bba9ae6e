package aurelius

import (
	"encoding/json"
	"time"

	"github.com/aurelius-bot/aurelius/internal/storage"
)

// Records shared with the storage layer.
type (
	Stream           = storage.Stream
	StreamUpdate     = storage.StreamUpdate
	StreamStats      = storage.StreamStats
	Schedule         = storage.Schedule
	WeekDays         = storage.WeekDays
	Caption          = storage.Caption
	Review           = storage.Review
	UserProfile      = storage.UserProfile
	ReminderSettings = storage.ReminderSettings
	Reminder         = storage.Reminder
	AgencyTemplate   = storage.AgencyTemplate
)

// NewStream is the input for registering a stream. DueDays counts from now.
type NewStream struct {
	UserID      string `json:"user_id"`
	ServerID    string `json:"server_id,omitempty"`
	ItemName    string `json:"item_name"`
	CreatorName string `json:"creator_name"`
	CreatorID   string `json:"creator_id,omitempty"`
	AgencyName  string `json:"agency_name,omitempty"`
	DueDays     int    `json:"due_days"`
	Priority    string `json:"priority,omitempty"`
	StreamType  string `json:"stream_type,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// CaptionInput carries the fields of both caption platforms. Fields that
// do not apply to the chosen platform are ignored.
type CaptionInput struct {
	UserID           string
	Platform         string
	ItemName         string
	CreatorName      string
	ItemID           string
	ManufacturerID   string
	AgencyName       string
	ShopLink         string
	CreatorInstagram string
	AgencyInstagram  string
	AdditionalTags   string
}

// Generated is text produced by the AI backend or a template.
type Generated struct {
	Text string `json:"text"`
	// AI is true when the language model wrote the text.
	AI bool `json:"ai"`
	// Template is the agency template used, nil when none matched.
	Template *AgencyTemplate `json:"template,omitempty"`
}

// ReviewInput describes the item being reviewed.
type ReviewInput struct {
	UserID          string
	ItemName        string
	ItemID          string
	CreatorName     string
	ItemType        string
	ColorScheme     string
	Style           string
	SpecialFeatures string
	Rating          int
}

// RequestInput describes a stream request for an agency.
type RequestInput struct {
	AgencyName      string
	ItemName        string
	CreatorName     string
	IMVULink        string
	InstagramHandle string
}

// ProfileInput is the full set of profile fields accepted at setup.
type ProfileInput struct {
	UserID            string
	IMVUName          string
	InstagramHandle   string
	Timezone          string
	PreferredAgencies string
	CaptionStyle      string
}

// Snapshot is the export/import document.
type Snapshot struct {
	Streams    []Stream                   `json:"streams"`
	Settings   map[string]json.RawMessage `json:"settings"`
	ExportDate time.Time                  `json:"exportDate"`
}

// ImportResult counts what an import wrote.
type ImportResult struct {
	Streams  int `json:"streams"`
	Settings int `json:"settings"`
}
