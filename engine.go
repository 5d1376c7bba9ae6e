package aurelius

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aurelius-bot/aurelius/internal/ai"
	"github.com/aurelius-bot/aurelius/internal/storage"
	"github.com/aurelius-bot/aurelius/internal/templates"
)

// Errors returned by Engine operations.
var (
	ErrNotFound     = storage.ErrNotFound
	ErrInvalidValue = storage.ErrInvalidValue
)

const (
	MinDueDays = 1
	MaxDueDays = 7

	defaultReviewLimit = 5
	maxReviewLimit     = 10
)

// Engine is the public API shared by the bot, the CLI, the dashboard and
// the desktop channels. It wraps the store and the AI assistant.
type Engine struct {
	store  storage.Store
	ai     *ai.Assistant
	config *storage.Config
	loc    *time.Location
	now    func() time.Time
}

// NewEngine opens the configured database and creates the AI assistant.
// A missing Gemini key leaves the assistant unready; every generator then
// falls back to templates.
func NewEngine(cfg *storage.Config) (*Engine, error) {
	if cfg == nil {
		cfg = storage.DefaultConfig()
	}
	store, err := storage.OpenConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	e := NewEngineWithStore(store, cfg)
	e.initAI()
	return e, nil
}

// NewEngineWithStore builds an engine around an existing store. The AI
// assistant is created but not initialized.
func NewEngineWithStore(store storage.Store, cfg *storage.Config) *Engine {
	if cfg == nil {
		cfg = storage.DefaultConfig()
	}
	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		log.Printf("aurelius: unknown timezone %q, using UTC", cfg.Schedule.Timezone)
		loc = time.UTC
	}
	return &Engine{
		store:  store,
		ai:     ai.NewAssistant(cfg),
		config: cfg,
		loc:    loc,
		now:    time.Now,
	}
}

func (e *Engine) initAI() {
	if e.config.AI.Provider != "ollama" && e.config.AI.APIKey == "" {
		log.Printf("aurelius: no Gemini API key found, AI features will use fallback templates")
		return
	}
	if err := e.ai.Initialize(e.config.AI.APIKey); err != nil {
		log.Printf("aurelius: AI initialization failed: %v", err)
		return
	}
	log.Printf("aurelius: AI assistant ready (%s)", e.config.AI.Provider)
}

// Store exposes the underlying store for the scheduler and diagnostics.
func (e *Engine) Store() storage.Store { return e.store }

// Assistant exposes the AI assistant.
func (e *Engine) Assistant() *ai.Assistant { return e.ai }

func (e *Engine) Config() *storage.Config { return e.config }

// Location is the zone used for week boundaries and reminder times.
func (e *Engine) Location() *time.Location { return e.loc }

// SetClock overrides the time source.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// Now returns the current time in the engine's location.
func (e *Engine) Now() time.Time { return e.now().In(e.loc) }

// Close releases the database.
func (e *Engine) Close() error {
	return e.store.Close()
}

// --- streams ---

// CreateStream registers a stream due DueDays from now. When the owner's
// profile has stream reminders enabled (the default without a profile), a
// due-date reminder is scheduled one day before the due date.
func (e *Engine) CreateStream(in NewStream) (*Stream, error) {
	if in.DueDays < MinDueDays || in.DueDays > MaxDueDays {
		return nil, fmt.Errorf("%w: due days must be between %d and %d", ErrInvalidValue, MinDueDays, MaxDueDays)
	}
	priority, err := storage.ParsePriority(in.Priority)
	if err != nil {
		return nil, err
	}
	streamType, err := storage.ParseStreamType(in.StreamType)
	if err != nil {
		return nil, err
	}

	now := e.Now()
	st, err := e.store.CreateStream(&Stream{
		UserID:      in.UserID,
		ServerID:    in.ServerID,
		ItemName:    strings.TrimSpace(in.ItemName),
		CreatorName: strings.TrimSpace(in.CreatorName),
		CreatorID:   in.CreatorID,
		AgencyName:  in.AgencyName,
		DueDate:     now.AddDate(0, 0, in.DueDays),
		Status:      storage.StatusActive,
		Priority:    priority,
		StreamType:  streamType,
		Notes:       in.Notes,
	})
	if err != nil {
		return nil, err
	}

	if e.wantsStreamReminders(st.UserID) {
		_, err := e.store.CreateReminder(&Reminder{
			UserID:       st.UserID,
			ServerID:     st.ServerID,
			StreamID:     &st.ID,
			ReminderType: storage.ReminderDueDate,
			ReminderText: fmt.Sprintf("Your stream for **%s** by **%s** is due tomorrow!", st.ItemName, st.CreatorName),
			ScheduledFor: st.DueDate.AddDate(0, 0, -1),
			IsActive:     true,
		})
		if err != nil {
			log.Printf("aurelius: due-date reminder for stream %d: %v", st.ID, err)
		}
	}
	return st, nil
}

// AddStream stores a stream with an explicit due date, as the dashboard
// and desktop surfaces send it. Enum fields default like CreateStream; no
// reminder is scheduled.
func (e *Engine) AddStream(st Stream) (*Stream, error) {
	st.ID = 0
	st.ItemName = strings.TrimSpace(st.ItemName)
	st.CreatorName = strings.TrimSpace(st.CreatorName)
	st.CompletedAt = nil
	st.CreatedAt = time.Time{}
	return e.store.CreateStream(&st)
}

func (e *Engine) wantsStreamReminders(userID string) bool {
	p, err := e.store.GetUserProfile(userID)
	if err != nil {
		log.Printf("aurelius: profile lookup for %s: %v", userID, err)
		return true
	}
	return p == nil || p.ReminderSettings.StreamReminders
}

// StreamFor returns a stream only if it belongs to userID.
func (e *Engine) StreamFor(userID string, id int64) (*Stream, error) {
	st, err := e.store.GetStream(id)
	if err != nil {
		return nil, err
	}
	if userID != "" && st.UserID != userID {
		return nil, ErrNotFound
	}
	return st, nil
}

// CompleteStream marks a stream completed. A non-empty userID restricts it
// to the caller's own streams. Completing twice re-stamps completed_at.
func (e *Engine) CompleteStream(userID string, id int64) (*Stream, error) {
	if _, err := e.StreamFor(userID, id); err != nil {
		return nil, err
	}
	return e.store.CompleteStream(id)
}

// ListStreams returns a user's streams with the given status. An empty
// status means active; overdue selects active streams already past due.
func (e *Engine) ListStreams(userID, serverID, status string) ([]Stream, storage.StreamStatus, error) {
	s, err := storage.ParseStreamStatus(status)
	if err != nil {
		return nil, "", err
	}
	streams, err := e.store.GetStreamsByStatus(userID, serverID, s, e.now())
	return streams, s, err
}

// AllStreams returns every stream the user owns.
func (e *Engine) AllStreams(userID string) ([]Stream, error) {
	return e.store.ListStreams(userID)
}

// UpdateStream applies a partial update. It reports false when no row matched.
func (e *Engine) UpdateStream(id int64, u StreamUpdate) (bool, error) {
	return e.store.UpdateStream(id, u)
}

func (e *Engine) DeleteStream(id int64) (bool, error) {
	return e.store.DeleteStream(id)
}

// Stats returns the dashboard counters for a user.
func (e *Engine) Stats(userID string) (*StreamStats, error) {
	return e.store.GetStreamStats(userID, e.now())
}

// DaysLeft returns whole days until due, rounded up. Past-due streams
// yield zero or less.
func DaysLeft(due, now time.Time) int {
	d := due.Sub(now)
	days := int(d / (24 * time.Hour))
	if d > 0 && d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// Urgency maps days left to the list marker.
func Urgency(daysLeft int) string {
	switch {
	case daysLeft <= 1:
		return "🔴"
	case daysLeft <= 3:
		return "🟡"
	}
	return "🟢"
}

// --- schedules ---

// SaveWeeklySchedule stores the current week's plan, updating the existing
// row for this week if there is one. The bool reports an update.
func (e *Engine) SaveWeeklySchedule(userID, serverID string, days WeekDays) (*Schedule, bool, error) {
	start := WeekStart(e.Now())
	existing, err := e.store.GetCurrentWeekSchedule(userID, start)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if err := e.store.UpdateSchedule(existing.ID, days); err != nil {
			return nil, false, err
		}
		sc, err := e.store.GetCurrentWeekSchedule(userID, start)
		return sc, true, err
	}
	sc, err := e.store.CreateSchedule(&Schedule{
		UserID:    userID,
		ServerID:  serverID,
		WeekStart: start,
		WeekEnd:   WeekEnd(start),
		Days:      days,
	})
	return sc, false, err
}

// ParseWeekDays splits comma-separated activities per day name.
func ParseWeekDays(byDay map[string]string) WeekDays {
	var days WeekDays
	for i, slot := range days.Slots() {
		*slot = templates.SplitList(byDay[Weekdays[i]])
	}
	return days
}

// ViewSchedule returns the schedule offset weeks from the current one,
// along with that week's start. The schedule is nil when none exists.
func (e *Engine) ViewSchedule(userID string, offset int) (*Schedule, time.Time, error) {
	if offset < -4 || offset > 4 {
		return nil, time.Time{}, fmt.Errorf("%w: week offset must be between -4 and 4", ErrInvalidValue)
	}
	start := WeekStart(e.Now()).AddDate(0, 0, 7*offset)
	sc, err := e.store.GetCurrentWeekSchedule(userID, start)
	return sc, start, err
}

// CreateWeeklyReminder schedules a reminder for the next day at clock
// (HH:MM). It repeats weekly once fired.
func (e *Engine) CreateWeeklyReminder(userID, serverID, day, clock, message string) (*Reminder, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return nil, err
	}
	next, err := NextOccurrence(e.Now(), day, hour, minute)
	if err != nil {
		return nil, err
	}
	return e.store.CreateReminder(&Reminder{
		UserID:       userID,
		ServerID:     serverID,
		ReminderType: storage.ReminderWeekly,
		ReminderText: message,
		ScheduledFor: next,
		IsActive:     true,
	})
}

// --- captions ---

// AgencyTemplate returns the active template with exactly this name, or nil.
func (e *Engine) AgencyTemplate(name string) (*AgencyTemplate, error) {
	return e.store.GetAgencyTemplate(name)
}

func (e *Engine) AgencyTemplates() ([]AgencyTemplate, error) {
	return e.store.GetAllAgencyTemplates()
}

// GenerateCaption writes an IMVU or Instagram caption. The AI backend is
// tried first when ready; on failure or when unready the agency template
// is used, then the built-in default. Every caption is saved.
func (e *Engine) GenerateCaption(ctx context.Context, in CaptionInput) (*Generated, error) {
	platform, err := storage.ParsePlatform(in.Platform)
	if err != nil {
		return nil, err
	}
	tmpl, err := e.store.GetAgencyTemplate(in.AgencyName)
	if err != nil {
		return nil, err
	}
	out := &Generated{Template: tmpl}

	if e.ai.Ready() {
		item := ai.ItemData{
			ItemName:         in.ItemName,
			CreatorName:      in.CreatorName,
			ItemID:           in.ItemID,
			ManufacturerID:   in.ManufacturerID,
			AgencyName:       in.AgencyName,
			CreatorInstagram: in.CreatorInstagram,
		}
		prefs := ai.Preferences{CaptionStyle: e.captionStyle(in.UserID), AdditionalTags: in.AdditionalTags}
		var text string
		if platform == storage.PlatformInstagram {
			text, err = e.ai.GenerateInstagramCaption(ctx, item, prefs)
		} else {
			text, err = e.ai.GenerateIMVUCaption(ctx, item, prefs)
		}
		if err == nil {
			out.Text, out.AI = text, true
		} else {
			log.Printf("aurelius: %s caption: %v, falling back to template", platform, err)
		}
	}

	if !out.AI {
		out.Text = captionFromTemplate(platform, in, tmpl)
	}

	_, err = e.store.SaveCaption(&Caption{
		UserID:       in.UserID,
		Platform:     platform,
		CaptionText:  out.Text,
		AgencyFormat: in.AgencyName,
		Tags:         templates.SplitList(in.AdditionalTags),
	})
	if err != nil {
		log.Printf("aurelius: save caption: %v", err)
	}
	return out, nil
}

func captionFromTemplate(platform storage.Platform, in CaptionInput, tmpl *AgencyTemplate) string {
	if platform == storage.PlatformInstagram {
		c := templates.InstagramCaption{
			ItemName:         in.ItemName,
			CreatorName:      in.CreatorName,
			CreatorInstagram: in.CreatorInstagram,
			AgencyInstagram:  in.AgencyInstagram,
			ItemID:           in.ItemID,
			ExtraTags:        in.AdditionalTags,
		}
		if tmpl != nil && tmpl.InstagramCaptionFormat != "" {
			return c.FromTemplate(tmpl.InstagramCaptionFormat, tmpl.RequiredTags)
		}
		return c.Default()
	}

	c := templates.IMVUCaption{
		ItemName:       in.ItemName,
		CreatorName:    in.CreatorName,
		ItemID:         in.ItemID,
		ManufacturerID: in.ManufacturerID,
		ShopLink:       in.ShopLink,
		ExtraTags:      in.AdditionalTags,
	}
	if tmpl != nil && tmpl.IMVUCaptionFormat != "" {
		return c.FromTemplate(tmpl.IMVUCaptionFormat)
	}
	return c.Default()
}

func (e *Engine) captionStyle(userID string) string {
	if p, err := e.store.GetUserProfile(userID); err == nil && p != nil && p.CaptionStyle != "" {
		return string(p.CaptionStyle)
	}
	return string(storage.StyleElegant)
}

// --- reviews ---

// GenerateReview writes and saves an item review. Style defaults to casual.
func (e *Engine) GenerateReview(ctx context.Context, in ReviewInput) (*Generated, *Review, error) {
	if err := storage.ValidateRating(in.Rating); err != nil {
		return nil, nil, err
	}
	if in.Style == "" {
		in.Style = "casual"
	}

	out := &Generated{}
	if e.ai.Ready() {
		text, err := e.ai.GenerateItemReview(ctx, ai.ItemData{
			ItemName:        in.ItemName,
			CreatorName:     in.CreatorName,
			ItemID:          in.ItemID,
			ItemType:        in.ItemType,
			ColorScheme:     in.ColorScheme,
			Style:           in.Style,
			SpecialFeatures: in.SpecialFeatures,
			Rating:          in.Rating,
		})
		if err == nil {
			out.Text, out.AI = text, true
		} else {
			log.Printf("aurelius: item review: %v, falling back to template", err)
		}
	}
	if !out.AI {
		out.Text = templates.ItemReview{
			ItemName:        in.ItemName,
			ItemType:        in.ItemType,
			Style:           in.Style,
			ColorScheme:     in.ColorScheme,
			SpecialFeatures: in.SpecialFeatures,
			Rating:          in.Rating,
			CreatorName:     in.CreatorName,
		}.Detailed()
	}

	rating := in.Rating
	saved, err := e.store.SaveReview(&Review{
		UserID:     in.UserID,
		ItemName:   in.ItemName,
		ItemID:     in.ItemID,
		ReviewText: out.Text,
		Rating:     &rating,
	})
	if err != nil {
		return nil, nil, err
	}
	return out, saved, nil
}

// ReviewHistory returns the user's latest reviews. limit is clamped to
// 1-10; zero means 5.
func (e *Engine) ReviewHistory(userID string, limit int) ([]Review, error) {
	switch {
	case limit <= 0:
		limit = defaultReviewLimit
	case limit > maxReviewLimit:
		limit = maxReviewLimit
	}
	return e.store.GetUserReviews(userID, limit)
}

// --- requests ---

// GenerateRequest writes a stream request message for an agency.
func (e *Engine) GenerateRequest(ctx context.Context, in RequestInput) (*Generated, error) {
	tmpl, err := e.store.GetAgencyTemplate(in.AgencyName)
	if err != nil {
		return nil, err
	}
	out := &Generated{Template: tmpl}

	if e.ai.Ready() {
		text, err := e.ai.GenerateRequestFormat(ctx, ai.ItemData{
			ItemName:        in.ItemName,
			CreatorName:     in.CreatorName,
			IMVULink:        in.IMVULink,
			InstagramHandle: in.InstagramHandle,
		}, in.AgencyName)
		if err == nil {
			out.Text, out.AI = text, true
			return out, nil
		}
		log.Printf("aurelius: request format: %v, falling back to template", err)
	}

	req := templates.StreamRequest{
		ItemName:        in.ItemName,
		CreatorName:     in.CreatorName,
		IMVULink:        in.IMVULink,
		InstagramHandle: in.InstagramHandle,
	}
	if tmpl != nil && tmpl.RequestFormat != "" {
		out.Text = req.FromTemplate(tmpl.RequestFormat)
	} else {
		out.Text = req.Default()
	}
	return out, nil
}

// --- profiles ---

// ProfileFields lists the fields UpdateProfileField accepts.
var ProfileFields = []string{"imvu_name", "instagram_handle", "timezone", "preferred_agencies", "caption_style"}

func atHandle(h string) string {
	if strings.HasPrefix(h, "@") {
		return h
	}
	return "@" + h
}

// SetupProfile creates or replaces the caller's profile. Reminder settings
// are reset to their defaults.
func (e *Engine) SetupProfile(in ProfileInput) (*UserProfile, error) {
	style, err := storage.ParseCaptionStyle(in.CaptionStyle)
	if err != nil {
		return nil, err
	}
	return e.store.CreateOrUpdateProfile(&UserProfile{
		UserID:            in.UserID,
		IMVUName:          in.IMVUName,
		InstagramHandle:   atHandle(in.InstagramHandle),
		Timezone:          in.Timezone,
		PreferredAgencies: templates.SplitList(in.PreferredAgencies),
		CaptionStyle:      style,
		ReminderSettings:  storage.DefaultReminderSettings(),
	})
}

// Profile returns the user's profile, or nil when none exists.
func (e *Engine) Profile(userID string) (*UserProfile, error) {
	return e.store.GetUserProfile(userID)
}

// UpdateProfileField changes one profile field. It returns ErrNotFound
// when the user has no profile yet.
func (e *Engine) UpdateProfileField(userID, field, value string) (*UserProfile, error) {
	p, err := e.store.GetUserProfile(userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	switch field {
	case "imvu_name":
		p.IMVUName = value
	case "instagram_handle":
		p.InstagramHandle = atHandle(value)
	case "timezone":
		p.Timezone = value
	case "preferred_agencies":
		p.PreferredAgencies = templates.SplitList(value)
	case "caption_style":
		style, err := storage.ParseCaptionStyle(value)
		if err != nil {
			return nil, err
		}
		p.CaptionStyle = style
	default:
		return nil, fmt.Errorf("%w: profile field %q", ErrInvalidValue, field)
	}
	return e.store.CreateOrUpdateProfile(p)
}

// --- settings, export and import ---

func (e *Engine) Settings(userID string) (map[string]json.RawMessage, error) {
	return e.store.GetSettings(userID)
}

func (e *Engine) SetSettings(userID string, settings map[string]json.RawMessage) error {
	return e.store.SetSettings(userID, settings)
}

// Export snapshots a user's streams and settings.
func (e *Engine) Export(userID string) (*Snapshot, error) {
	streams, err := e.store.ListStreams(userID)
	if err != nil {
		return nil, fmt.Errorf("export streams: %w", err)
	}
	settings, err := e.store.GetSettings(userID)
	if err != nil {
		return nil, fmt.Errorf("export settings: %w", err)
	}
	if streams == nil {
		streams = []Stream{}
	}
	return &Snapshot{Streams: streams, Settings: settings, ExportDate: e.now().UTC()}, nil
}

// Import adds a snapshot's streams to userID's account and merges its
// settings. Streams and settings are imported all-or-nothing; streams get
// fresh ids.
func (e *Engine) Import(userID string, snap *Snapshot) (*ImportResult, error) {
	if snap == nil {
		return nil, errors.New("import: empty snapshot")
	}
	streams := make([]Stream, len(snap.Streams))
	for i, st := range snap.Streams {
		st.ID = 0
		st.UserID = userID
		streams[i] = st
	}
	n, err := e.store.ImportSnapshot(userID, streams, snap.Settings)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	return &ImportResult{Streams: n, Settings: len(snap.Settings)}, nil
}
