package bot

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/aurelius-bot/aurelius"
	"github.com/aurelius-bot/aurelius/internal/notify"
	"github.com/aurelius-bot/aurelius/internal/storage"
)

// Monday 2026-10-19 10:00 UTC.
var testNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

type fakeResponder struct {
	deferred bool
	replies  []Reply
	err      error
}

func (f *fakeResponder) Defer() error {
	f.deferred = true
	return nil
}

func (f *fakeResponder) Reply(r Reply) error {
	f.replies = append(f.replies, r)
	return f.err
}

func (f *fakeResponder) last(t *testing.T) (*discordgo.MessageEmbed, bool) {
	t.Helper()
	if len(f.replies) == 0 {
		t.Fatal("no reply sent")
	}
	r := f.replies[len(f.replies)-1]
	if len(r.Embeds) != 1 {
		t.Fatalf("expected one embed, got %d", len(r.Embeds))
	}
	return r.Embeds[0], r.Ephemeral
}

func newTestHandler(t *testing.T) (*Handler, *notify.Recorder) {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	engine := aurelius.NewEngineWithStore(store, storage.DefaultConfig())
	engine.SetClock(func() time.Time { return testNow })
	t.Cleanup(func() { engine.Close() })

	rec := &notify.Recorder{}
	return NewHandler(engine, rec), rec
}

func run(t *testing.T, h *Handler, req Request) *fakeResponder {
	t.Helper()
	if req.UserID == "" {
		req.UserID = "u1"
	}
	if req.Options == nil {
		req.Options = map[string]any{}
	}
	resp := &fakeResponder{}
	if err := h.Handle(context.Background(), req, resp); err != nil {
		t.Fatalf("Handle(/%s %s): %v", req.Command, req.Subcommand, err)
	}
	return resp
}

func field(e *discordgo.MessageEmbed, name string) *discordgo.MessageEmbedField {
	for _, f := range e.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func TestStreamCreateRepliesAndSendsDM(t *testing.T) {
	h, rec := newTestHandler(t)

	resp := run(t, h, Request{Command: "stream", Subcommand: "create", Options: map[string]any{
		"item_name":    "Silk Gown",
		"creator_name": "Mira",
		"due_days":     int64(2),
		"notes":        "bring the blue set",
	}})

	e, eph := resp.last(t)
	if eph {
		t.Error("success reply should be public")
	}
	if e.Title != "◆ Stream Registered Successfully" {
		t.Errorf("title = %q", e.Title)
	}
	if !strings.Contains(e.Description, "**Agency:** Not specified") {
		t.Errorf("description missing agency default: %s", e.Description)
	}
	if field(e, "Notes") == nil {
		t.Error("notes field missing")
	}
	if !strings.HasPrefix(e.Footer.Text, SymbolFooter+" ") {
		t.Errorf("footer = %q", e.Footer.Text)
	}

	sent := rec.Messages()
	if len(sent) != 1 || sent[0].UserID != "u1" || sent[0].Message.Title != "Stream Registration Confirmed" {
		t.Fatalf("unexpected DMs: %+v", sent)
	}
}

func TestStreamCreateSurvivesDMFailure(t *testing.T) {
	h, rec := newTestHandler(t)
	rec.Fail = func(string) error { return errors.New("dms closed") }

	resp := run(t, h, Request{Command: "stream", Subcommand: "create", Options: map[string]any{
		"item_name": "Silk Gown", "creator_name": "Mira", "due_days": int64(2),
	}})
	if e, _ := resp.last(t); e.Color != ColorSuccess {
		t.Errorf("DM failure should not change the reply, got color %x", e.Color)
	}
}

func TestStreamCreateRejectsBadDueDays(t *testing.T) {
	h, _ := newTestHandler(t)
	resp := run(t, h, Request{Command: "stream", Subcommand: "create", Options: map[string]any{
		"item_name": "Silk Gown", "creator_name": "Mira", "due_days": int64(9),
	}})
	e, eph := resp.last(t)
	if !eph || e.Color != ColorError {
		t.Errorf("expected ephemeral error, got %q eph=%v", e.Title, eph)
	}
}

func TestStreamCompleteNotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	// A stream owned by someone else is not visible.
	st, err := h.engine.CreateStream(aurelius.NewStream{UserID: "u2", ItemName: "Boots", CreatorName: "Kai", DueDays: 1})
	if err != nil {
		t.Fatalf("CreateStream: %v", err)
	}

	resp := run(t, h, Request{Command: "stream", Subcommand: "complete", Options: map[string]any{"stream_id": st.ID}})
	e, eph := resp.last(t)
	if e.Title != "◆ Stream Not Found" || !eph {
		t.Errorf("got %q eph=%v", e.Title, eph)
	}
}

func TestStreamListUrgency(t *testing.T) {
	h, _ := newTestHandler(t)
	for _, days := range []int{1, 3, 6} {
		if _, err := h.engine.CreateStream(aurelius.NewStream{UserID: "u1", ItemName: "Item", CreatorName: "C", DueDays: days}); err != nil {
			t.Fatalf("CreateStream: %v", err)
		}
	}

	resp := run(t, h, Request{Command: "stream", Subcommand: "list"})
	e, _ := resp.last(t)
	if e.Title != "◆ Your Active Streams" {
		t.Errorf("title = %q", e.Title)
	}
	if len(e.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(e.Fields))
	}
	// Newest first.
	marks := []string{"🟢", "🟡", "🔴"}
	for i, f := range e.Fields {
		if !strings.HasPrefix(f.Name, marks[i]) {
			t.Errorf("field %d = %q, want prefix %s", i, f.Name, marks[i])
		}
	}
}

func TestStreamListEmpty(t *testing.T) {
	h, _ := newTestHandler(t)
	resp := run(t, h, Request{Command: "stream", Subcommand: "list", Options: map[string]any{"status": "completed"}})
	e, _ := resp.last(t)
	if e.Title != "◆ No Streams Found" || !strings.Contains(e.Description, "completed streams") {
		t.Errorf("got %q: %s", e.Title, e.Description)
	}
}

func TestCaptionFallsBackToTemplate(t *testing.T) {
	h, _ := newTestHandler(t)
	resp := run(t, h, Request{Command: "caption", Subcommand: "imvu", Options: map[string]any{
		"item_name": "Silk Gown", "creator_name": "Mira", "item_id": "123",
		"manufacturer_id": "456", "agency_name": "Nonexistent",
	}})
	if resp.deferred {
		t.Error("template captions should not defer")
	}
	e, _ := resp.last(t)
	if e.Title != "◆ IMVU Caption Generated" {
		t.Errorf("title = %q", e.Title)
	}
	if !strings.Contains(e.Description, "Silk Gown") {
		t.Errorf("caption missing item: %s", e.Description)
	}
}

func TestCaptionTemplateNotFoundListsAgencies(t *testing.T) {
	h, _ := newTestHandler(t)
	resp := run(t, h, Request{Command: "caption", Subcommand: "template", Options: map[string]any{"agency_name": "Nope"}})
	e, eph := resp.last(t)
	if !eph || e.Color != ColorWarning {
		t.Errorf("expected ephemeral warning, got %q", e.Title)
	}
	if !strings.Contains(e.Description, "Available agencies:") {
		t.Errorf("description = %s", e.Description)
	}
}

func TestRequestTemplateDefault(t *testing.T) {
	h, _ := newTestHandler(t)
	resp := run(t, h, Request{Command: "request", Subcommand: "template", Options: map[string]any{"agency_name": "Nope"}})
	e, _ := resp.last(t)
	if field(e, "Default Request Format") == nil {
		t.Errorf("missing default format field: %+v", e.Fields)
	}
}

func TestScheduleWeeklyAndView(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := run(t, h, Request{Command: "schedule", Subcommand: "weekly", Options: map[string]any{
		"monday": "stream, review", "friday": "photo shoot",
	}})
	e, _ := resp.last(t)
	f := field(e, "Your Schedule")
	if f == nil || f.Value != "**Monday:** stream, review\n**Friday:** photo shoot" {
		t.Fatalf("schedule field = %+v", f)
	}

	resp = run(t, h, Request{Command: "schedule", Subcommand: "view"})
	e, _ = resp.last(t)
	if e.Title != "◆ Weekly Schedule - 10/19/2026" {
		t.Errorf("title = %q", e.Title)
	}
	if f := field(e, "Monday"); f == nil || f.Value != "• stream\n• review" {
		t.Errorf("monday = %+v", f)
	}

	resp = run(t, h, Request{Command: "schedule", Subcommand: "view", Options: map[string]any{"week_offset": int64(1)}})
	if e, _ := resp.last(t); e.Title != "◆ No Schedule Found" {
		t.Errorf("next week title = %q", e.Title)
	}
}

func TestScheduleReminderInvalidTime(t *testing.T) {
	h, _ := newTestHandler(t)
	resp := run(t, h, Request{Command: "schedule", Subcommand: "reminder", Options: map[string]any{
		"day": "friday", "time": "25:99", "message": "post",
	}})
	e, eph := resp.last(t)
	if e.Title != "◆ Invalid Time Format" || !eph {
		t.Errorf("got %q eph=%v", e.Title, eph)
	}
}

func TestScheduleReminderSet(t *testing.T) {
	h, _ := newTestHandler(t)
	resp := run(t, h, Request{Command: "schedule", Subcommand: "reminder", Options: map[string]any{
		"day": "friday", "time": "18:30", "message": "post the shoot",
	}})
	e, _ := resp.last(t)
	if !strings.Contains(e.Description, "**Friday at 18:30**") || !strings.Contains(e.Description, "10/23/2026, 6:30:00 PM") {
		t.Errorf("description = %s", e.Description)
	}
}

func TestReviewGenerateAndHistory(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := run(t, h, Request{Command: "review", Subcommand: "generate", Options: map[string]any{
		"item_name": "Silk Gown", "item_id": "123", "creator_name": "Mira",
		"item_type": "dress", "color_scheme": "ivory", "rating": int64(4),
	}})
	e, _ := resp.last(t)
	if f := field(e, "Rating"); f == nil || f.Value != "⭐⭐⭐⭐" {
		t.Errorf("rating field = %+v", f)
	}
	if f := field(e, "Style"); f == nil || f.Value != "Casual" {
		t.Errorf("style field = %+v", f)
	}

	resp = run(t, h, Request{Command: "review", Subcommand: "history"})
	e, _ = resp.last(t)
	if e.Title != "◆ Review History" || len(e.Fields) != 1 {
		t.Fatalf("history = %q with %d fields", e.Title, len(e.Fields))
	}
	if !strings.Contains(e.Fields[0].Name, "Silk Gown") {
		t.Errorf("history field = %q", e.Fields[0].Name)
	}
}

func TestReviewGenerateRejectsBadRating(t *testing.T) {
	h, _ := newTestHandler(t)
	resp := run(t, h, Request{Command: "review", Subcommand: "generate", Options: map[string]any{
		"item_name": "Silk Gown", "creator_name": "Mira", "item_type": "dress", "rating": int64(0),
	}})
	if _, eph := resp.last(t); !eph {
		t.Error("expected ephemeral error")
	}
}

func TestReviewTemplateFallsBackToOutfit(t *testing.T) {
	h, _ := newTestHandler(t)
	resp := run(t, h, Request{Command: "review", Subcommand: "template", Options: map[string]any{"item_type": "shoes"}})
	e, _ := resp.last(t)
	if e.Title != "◆ Outfit Review Template" {
		t.Errorf("title = %q", e.Title)
	}
	if !strings.Contains(e.Description, "review template for shoes items") {
		t.Errorf("description = %s", e.Description)
	}
}

func TestProfileFlow(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := run(t, h, Request{Command: "profile", Subcommand: "update", Options: map[string]any{"field": "timezone", "value": "EST"}})
	if e, _ := resp.last(t); e.Title != "◆ No Profile Found" || e.Color != ColorWarning {
		t.Errorf("update without profile = %q", e.Title)
	}

	resp = run(t, h, Request{Command: "profile", Subcommand: "setup", Options: map[string]any{
		"imvu_name": "Lumi", "instagram_handle": "lumi.models", "timezone": "UTC",
		"preferred_agencies": "Ladies & Babes, Glow",
	}})
	e, _ := resp.last(t)
	if f := field(e, "Instagram"); f == nil || f.Value != "@lumi.models" {
		t.Errorf("instagram = %+v", f)
	}
	if f := field(e, "Preferred Agencies"); f == nil || f.Value != "• Ladies & Babes\n• Glow" {
		t.Errorf("agencies = %+v", f)
	}

	resp = run(t, h, Request{Command: "profile", Subcommand: "update", Options: map[string]any{"field": "imvu_name", "value": "Lumina"}})
	e, _ = resp.last(t)
	if e.Description != "Your imvu name has been updated successfully!" {
		t.Errorf("description = %q", e.Description)
	}
	if f := field(e, "Updated Field"); f == nil || f.Value != "Imvu name: Lumina" {
		t.Errorf("updated field = %+v", f)
	}

	resp = run(t, h, Request{Command: "profile", Subcommand: "view"})
	e, _ = resp.last(t)
	if f := field(e, "IMVU Name"); f == nil || f.Value != "Lumina" {
		t.Errorf("view name = %+v", f)
	}
	if f := field(e, "Active Reminders"); f == nil || f.Value != "• Stream reminders\n• Weekly reminders" {
		t.Errorf("reminders = %+v", f)
	}
}

func TestHelpCategories(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		category string
		title    string
		fields   int
	}{
		{"", "◆ Aurelius Help Center", 6},
		{"all", "◆ Aurelius Help Center", 6},
		{"stream", "◈ Stream Management Help", 5},
		{"caption", "◈ Caption Generation Help", 4},
		{"review", "◈ Review Writing Help", 4},
	}
	for _, tt := range tests {
		e := h.HelpEmbed(tt.category)
		if e.Title != tt.title || len(e.Fields) != tt.fields {
			t.Errorf("%q: got %q with %d fields", tt.category, e.Title, len(e.Fields))
		}
		if last := e.Fields[len(e.Fields)-1]; last.Name != "Need More Help?" {
			t.Errorf("%q: last field %q", tt.category, last.Name)
		}
	}
}

func TestUnknownCommandGetsGenericError(t *testing.T) {
	h, _ := newTestHandler(t)
	b := &Bot{handler: h}
	resp := &fakeResponder{}
	b.dispatch(context.Background(), Request{Command: "dance", UserID: "u1"}, resp)

	e, eph := resp.last(t)
	if e.Title != "◆ Something went wrong" || !eph {
		t.Errorf("got %q eph=%v", e.Title, eph)
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	b := &Bot{handler: &Handler{}}
	resp := &fakeResponder{}
	// A nil engine panics inside the handler.
	b.dispatch(context.Background(), Request{Command: "profile", Subcommand: "view", UserID: "u1"}, resp)
	if len(resp.replies) != 1 || !resp.replies[0].Ephemeral {
		t.Fatalf("expected one ephemeral error reply, got %+v", resp.replies)
	}
}

func TestIsGreeting(t *testing.T) {
	for content, want := range map[string]bool{
		"Hello Aurelius": true,
		"hi!":            true,
		"good morning":   false,
	} {
		if got := IsGreeting(content); got != want {
			t.Errorf("IsGreeting(%q) = %v, want %v", content, got, want)
		}
	}
}

func TestCommandsDefinition(t *testing.T) {
	cmds := Commands()
	var names []string
	for _, c := range cmds {
		names = append(names, c.Name)
	}
	if got := strings.Join(names, ","); got != "stream,caption,schedule,review,request,profile,help" {
		t.Fatalf("commands = %s", got)
	}

	create := cmds[0].Options[0]
	for _, o := range create.Options {
		if o.Name != "due_days" {
			continue
		}
		if !o.Required || o.MinValue == nil || *o.MinValue != 1 || o.MaxValue != 7 {
			t.Errorf("due_days bounds = %v..%v", o.MinValue, o.MaxValue)
		}
		return
	}
	t.Error("due_days option missing")
}

func TestReplyRouting(t *testing.T) {
	tests := []struct {
		name                         string
		replied, deferred, ephemeral bool
		want                         replyRoute
	}{
		{"first public reply", false, false, false, routeRespond},
		{"first ephemeral reply", false, false, true, routeRespond},
		{"deferred public reply edits placeholder", false, true, false, routeEdit},
		{"deferred ephemeral reply drops placeholder", false, true, true, routeReplacePlaceholder},
		{"second reply", true, false, false, routeFollowup},
		{"second reply after defer", true, true, true, routeFollowup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := routeFor(tt.replied, tt.deferred, tt.ephemeral); got != tt.want {
				t.Errorf("routeFor(%v, %v, %v) = %d, want %d", tt.replied, tt.deferred, tt.ephemeral, got, tt.want)
			}
		})
	}
}

