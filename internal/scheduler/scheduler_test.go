package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aurelius-bot/aurelius/internal/notify"
	"github.com/aurelius-bot/aurelius/internal/storage"
)

func newTestStore(t *testing.T) *storage.SQLStore {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSweepOverdueContinuesPastNotifyFailure(t *testing.T) {
	store := newTestStore(t)
	past := time.Now().Add(-2 * time.Hour)

	for _, user := range []string{"blocked", "open"} {
		if _, err := store.CreateStream(&storage.Stream{UserID: user, ItemName: "Gown", CreatorName: "Mira", DueDate: past}); err != nil {
			t.Fatalf("CreateStream failed: %v", err)
		}
	}
	if _, err := store.CreateStream(&storage.Stream{UserID: "open", ItemName: "Later", CreatorName: "Mira", DueDate: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("CreateStream failed: %v", err)
	}

	rec := &notify.Recorder{Fail: func(userID string) error {
		if userID == "blocked" {
			return errors.New("DMs disabled")
		}
		return nil
	}}
	s := New(store, rec, Options{})

	res, err := s.SweepOverdue(context.Background())
	if err != nil {
		t.Fatalf("SweepOverdue failed: %v", err)
	}
	if res.Found != 2 || res.Updated != 2 || res.Notified != 1 || res.Failed != 1 {
		t.Errorf("unexpected result: %+v", res)
	}

	sent := rec.Messages()
	if len(sent) != 2 {
		t.Fatalf("expected one attempt per user, got %d", len(sent))
	}
	if sent[0].Message.Title != "Stream Reminder" || !strings.Contains(sent[0].Message.Body, "**Gown** by **Mira** is now overdue") {
		t.Errorf("unexpected message: %+v", sent[0].Message)
	}

	for _, user := range []string{"blocked", "open"} {
		done, _ := store.GetStreamsByStatus(user, "", storage.StatusCompleted, time.Now())
		if len(done) != 1 {
			t.Errorf("user %s: expected overdue stream completed, got %d", user, len(done))
		}
	}
	active, _ := store.GetActiveStreams("open", "")
	if len(active) != 1 || active[0].ItemName != "Later" {
		t.Errorf("future stream should stay active: %+v", active)
	}

	again, _ := s.SweepOverdue(context.Background())
	if again.Found != 0 {
		t.Errorf("second sweep should find nothing, got %d", again.Found)
	}
}

func TestSweepsSkipWhenNotReady(t *testing.T) {
	store := newTestStore(t)
	store.CreateStream(&storage.Stream{UserID: "u", ItemName: "A", CreatorName: "B", DueDate: time.Now().Add(-time.Hour)})

	rec := &notify.Recorder{}
	s := New(store, rec, Options{Ready: func() bool { return false }})

	res, err := s.SweepOverdue(context.Background())
	if err != nil || !res.Skipped {
		t.Fatalf("expected skipped sweep, got %+v, %v", res, err)
	}
	res, err = s.DispatchReminders(context.Background())
	if err != nil || !res.Skipped {
		t.Fatalf("expected skipped dispatch, got %+v, %v", res, err)
	}
	if len(rec.Messages()) != 0 {
		t.Error("no messages should be sent while not ready")
	}
}

func TestDispatchRemindersClaimsOnce(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	weekly, err := store.CreateReminder(&storage.Reminder{
		UserID: "u1", ReminderType: storage.ReminderWeekly, ReminderText: "Plan your streams",
		ScheduledFor: now.Add(-time.Hour), IsActive: true,
	})
	if err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}

	rec := &notify.Recorder{}
	s := New(store, rec, Options{Now: func() time.Time { return now }})

	res, err := s.DispatchReminders(context.Background())
	if err != nil {
		t.Fatalf("DispatchReminders failed: %v", err)
	}
	if res.Found != 1 || res.Updated != 1 || res.Notified != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
	sent := rec.Messages()
	if len(sent) != 1 || sent[0].Message.Title != "Daily Reminder" || sent[0].Message.Body != "Plan your streams" {
		t.Fatalf("unexpected messages: %+v", sent)
	}

	// Same instant: the fired row is inactive and the next occurrence is a week out.
	res, _ = s.DispatchReminders(context.Background())
	if res.Found != 0 {
		t.Errorf("reminder should not refire, found %d", res.Found)
	}

	all, _ := store.ListReminders("u1")
	if len(all) != 2 {
		t.Fatalf("expected original plus rescheduled reminder, got %d", len(all))
	}
	if all[0].ID != weekly.ID || all[0].IsActive {
		t.Errorf("original should be inactive: %+v", all[0])
	}
	if !all[1].IsActive || !all[1].ScheduledFor.Equal(weekly.ScheduledFor.AddDate(0, 0, 7)) {
		t.Errorf("next occurrence wrong: %+v", all[1])
	}
}

func TestWeeklyReminderCatchesUpInOneStep(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	behind := now.AddDate(0, 0, -21).Add(-time.Hour)

	if _, err := store.CreateReminder(&storage.Reminder{
		UserID: "u1", ReminderType: storage.ReminderWeekly, ReminderText: "Plan your streams",
		ScheduledFor: behind, IsActive: true,
	}); err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}

	rec := &notify.Recorder{}
	clock := now
	s := New(store, rec, Options{Now: func() time.Time { return clock }})

	for day := 0; day < 4; day++ {
		clock = now.AddDate(0, 0, day)
		if _, err := s.DispatchReminders(context.Background()); err != nil {
			t.Fatalf("DispatchReminders day %d failed: %v", day, err)
		}
	}

	if n := len(rec.Messages()); n != 1 {
		t.Errorf("expected one delivery across daily sweeps, got %d", n)
	}

	all, _ := store.ListReminders("u1")
	var active []storage.Reminder
	for _, r := range all {
		if r.IsActive {
			active = append(active, r)
		}
	}
	if len(active) != 1 {
		t.Fatalf("expected one pending occurrence, got %d", len(active))
	}
	if want := behind.AddDate(0, 0, 28); !active[0].ScheduledFor.Equal(want) {
		t.Errorf("next occurrence = %v, want %v", active[0].ScheduledFor, want)
	}
}

func TestDispatchRemindersSkipsCompletedStream(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	st, _ := store.CreateStream(&storage.Stream{UserID: "u1", ItemName: "A", CreatorName: "B", DueDate: now.Add(time.Hour)})
	store.CompleteStream(st.ID)
	store.CreateReminder(&storage.Reminder{
		UserID: "u1", StreamID: &st.ID, ReminderType: storage.ReminderDueDate,
		ReminderText: "due tomorrow", ScheduledFor: now.Add(-time.Minute), IsActive: true,
	})

	rec := &notify.Recorder{}
	res, err := New(store, rec, Options{}).DispatchReminders(context.Background())
	if err != nil {
		t.Fatalf("DispatchReminders failed: %v", err)
	}
	if res.Updated != 1 || len(rec.Messages()) != 0 {
		t.Errorf("completed stream reminder should be retired silently: %+v, %d sent", res, len(rec.Messages()))
	}
}

func TestDispatchRemindersReinsertMode(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	store.CreateReminder(&storage.Reminder{
		UserID: "u1", ReminderType: storage.ReminderCustom, ReminderText: "check in",
		ScheduledFor: now.Add(-time.Minute), IsActive: true,
	})

	rec := &notify.Recorder{}
	s := New(store, rec, Options{ReminderMode: ModeReinsert})

	for i := 0; i < 2; i++ {
		if _, err := s.DispatchReminders(context.Background()); err != nil {
			t.Fatalf("DispatchReminders failed: %v", err)
		}
	}

	if got := len(rec.Messages()); got != 2 {
		t.Errorf("legacy mode should refire the original row, sent %d", got)
	}
	all, _ := store.ListReminders("u1")
	inactive := 0
	for _, r := range all {
		if !r.IsActive {
			inactive++
		}
	}
	if len(all) != 3 || inactive != 2 {
		t.Errorf("expected original plus two inactive copies, got %d rows (%d inactive)", len(all), inactive)
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	store := newTestStore(t)
	s := New(store, &notify.Recorder{}, Options{OverdueSpec: "every hour"})
	if err := s.Start(context.Background()); err == nil {
		s.Stop()
		t.Fatal("expected invalid cron spec to fail")
	}

	ok := New(store, &notify.Recorder{}, Options{})
	if err := ok.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	ok.Stop()
}
