// Package scheduler runs the periodic overdue-stream sweep and the daily
// reminder dispatch.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aurelius-bot/aurelius/internal/notify"
	"github.com/aurelius-bot/aurelius/internal/storage"
)

const (
	// ModeUpdate claims a reminder with a conditional update before sending.
	ModeUpdate = "update"
	// ModeReinsert sends first and then writes an inactive copy. The
	// original row stays active and fires again on the next dispatch.
	ModeReinsert = "reinsert"
)

// Options tune a Scheduler. Zero values fall back to the defaults.
type Options struct {
	// Ready gates both jobs; a nil func is always ready.
	Ready        func() bool
	ReminderMode string
	Location     *time.Location
	OverdueSpec  string
	ReminderSpec string
	Now          func() time.Time
}

// Scheduler owns the cron triggers.
type Scheduler struct {
	store    storage.Store
	notifier notify.Notifier
	opts     Options
	cron     *cron.Cron
}

// Result summarizes one sweep.
type Result struct {
	Job      string `json:"job"`
	Skipped  bool   `json:"skipped,omitempty"`
	Found    int    `json:"found"`
	Updated  int    `json:"updated"`
	Notified int    `json:"notified"`
	Failed   int    `json:"failed"`
}

func New(store storage.Store, notifier notify.Notifier, opts Options) *Scheduler {
	if opts.ReminderMode == "" {
		opts.ReminderMode = ModeUpdate
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.OverdueSpec == "" {
		opts.OverdueSpec = "0 * * * *"
	}
	if opts.ReminderSpec == "" {
		opts.ReminderSpec = "0 9 * * *"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{store: store, notifier: notifier, opts: opts}
}

// Start registers both jobs and starts the cron loop in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(s.opts.Location),
		cron.WithChain(cron.Recover(cron.PrintfLogger(log.Default()))),
	)
	if _, err := c.AddFunc(s.opts.OverdueSpec, func() { s.SweepOverdue(ctx) }); err != nil {
		return fmt.Errorf("invalid overdue schedule %q: %w", s.opts.OverdueSpec, err)
	}
	if _, err := c.AddFunc(s.opts.ReminderSpec, func() { s.DispatchReminders(ctx) }); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", s.opts.ReminderSpec, err)
	}
	s.cron = c
	c.Start()
	log.Printf("scheduler: started (overdue=%q, reminders=%q, mode=%s)", s.opts.OverdueSpec, s.opts.ReminderSpec, s.opts.ReminderMode)
	return nil
}

// Stop halts the triggers and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	log.Printf("scheduler: stopped")
}

func (s *Scheduler) ready() bool {
	return s.opts.Ready == nil || s.opts.Ready()
}

// SweepOverdue completes every active stream past its due date and
// notifies its owner. A failure on one stream is logged and the sweep
// moves on.
func (s *Scheduler) SweepOverdue(ctx context.Context) (*Result, error) {
	res := &Result{Job: "overdue"}
	if !s.ready() {
		res.Skipped = true
		return res, nil
	}

	streams, err := s.store.GetOverdueStreams(s.opts.Now())
	if err != nil {
		log.Printf("scheduler: overdue lookup failed: %v", err)
		return res, err
	}
	res.Found = len(streams)

	for _, st := range streams {
		if _, err := s.store.CompleteStream(st.ID); err != nil {
			log.Printf("scheduler: complete stream %d: %v", st.ID, err)
			res.Failed++
			continue
		}
		res.Updated++

		err := s.notifier.Notify(ctx, st.UserID, notify.Message{
			Title: "Stream Reminder",
			Body:  fmt.Sprintf("Your stream for **%s** by **%s** is now overdue. Please complete it as soon as possible!", st.ItemName, st.CreatorName),
			Level: notify.LevelWarning,
		})
		if err != nil {
			log.Printf("scheduler: notify user %s about stream %d: %v", st.UserID, st.ID, err)
			res.Failed++
			continue
		}
		res.Notified++
	}

	if res.Found > 0 {
		log.Printf("scheduler: overdue sweep found %d, completed %d, notified %d", res.Found, res.Updated, res.Notified)
	}
	return res, nil
}

// DispatchReminders sends every active reminder that has come due and
// retires it according to the configured mode.
func (s *Scheduler) DispatchReminders(ctx context.Context) (*Result, error) {
	res := &Result{Job: "reminders"}
	if !s.ready() {
		res.Skipped = true
		return res, nil
	}

	now := s.opts.Now()
	reminders, err := s.store.GetActiveReminders(now)
	if err != nil {
		log.Printf("scheduler: reminder lookup failed: %v", err)
		return res, err
	}
	res.Found = len(reminders)

	for _, r := range reminders {
		if s.opts.ReminderMode == ModeReinsert {
			s.dispatchReinsert(ctx, r, res)
		} else {
			s.dispatchClaimed(ctx, r, now, res)
		}
	}

	if res.Found > 0 {
		log.Printf("scheduler: reminder dispatch found %d, retired %d, notified %d", res.Found, res.Updated, res.Notified)
	}
	return res, nil
}

func (s *Scheduler) dispatchClaimed(ctx context.Context, r storage.Reminder, now time.Time, res *Result) {
	claimed, err := s.store.DeactivateReminder(r.ID)
	if err != nil {
		log.Printf("scheduler: deactivate reminder %d: %v", r.ID, err)
		res.Failed++
		return
	}
	if !claimed {
		return
	}
	res.Updated++

	if s.streamFinished(r) {
		return
	}
	if err := s.send(ctx, r); err != nil {
		log.Printf("scheduler: notify user %s about reminder %d: %v", r.UserID, r.ID, err)
		res.Failed++
	} else {
		res.Notified++
	}

	if r.ReminderType == storage.ReminderWeekly {
		next := r
		next.ScheduledFor = nextWeekly(r.ScheduledFor, now)
		next.IsActive = true
		if _, err := s.store.CreateReminder(&next); err != nil {
			log.Printf("scheduler: reschedule weekly reminder %d: %v", r.ID, err)
		}
	}
}

func (s *Scheduler) dispatchReinsert(ctx context.Context, r storage.Reminder, res *Result) {
	if err := s.send(ctx, r); err != nil {
		log.Printf("scheduler: notify user %s about reminder %d: %v", r.UserID, r.ID, err)
		res.Failed++
		return
	}
	res.Notified++

	sent := r
	sent.IsActive = false
	if _, err := s.store.CreateReminder(&sent); err != nil {
		log.Printf("scheduler: record sent reminder %d: %v", r.ID, err)
		res.Failed++
		return
	}
	res.Updated++
}

// nextWeekly steps at forward a week at a time until it is after now, so a
// reminder that fell behind fires once rather than once per missed week.
func nextWeekly(at, now time.Time) time.Time {
	next := at.AddDate(0, 0, 7)
	for !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// streamFinished reports whether a stream-linked reminder no longer applies.
func (s *Scheduler) streamFinished(r storage.Reminder) bool {
	if r.StreamID == nil {
		return false
	}
	st, err := s.store.GetStream(*r.StreamID)
	if err != nil {
		return false
	}
	return st.Status == storage.StatusCompleted
}

func (s *Scheduler) send(ctx context.Context, r storage.Reminder) error {
	return s.notifier.Notify(ctx, r.UserID, notify.Message{
		Title: "Daily Reminder",
		Body:  r.ReminderText,
		Level: notify.LevelInfo,
	})
}
