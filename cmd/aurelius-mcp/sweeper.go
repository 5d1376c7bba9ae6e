package main

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/aurelius-bot/aurelius/internal/scheduler"
)

// sweeper runs the overdue sweep and reminder dispatch on a fixed
// interval. The desktop shell has no bot process to host the cron
// triggers, so this loop stands in for them.
type sweeper struct {
	sched    *scheduler.Scheduler
	interval time.Duration

	mu   sync.Mutex
	done chan struct{}
}

func newSweeper(sched *scheduler.Scheduler, interval time.Duration) *sweeper {
	return &sweeper{
		sched:    sched,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// start launches the background loop. It sweeps immediately, then on each
// tick of the configured interval.
func (s *sweeper) start(ctx context.Context) {
	go s.loop(ctx)
	log.Printf("sweeper: started (interval=%s)", s.interval)
}

func (s *sweeper) stop() {
	close(s.done)
	log.Printf("sweeper: stopped")
}

// sweep runs both jobs once. Also used by the sweep_now tool.
func (s *sweeper) sweep(ctx context.Context) ([]*scheduler.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	overdue, err1 := s.sched.SweepOverdue(ctx)
	reminders, err2 := s.sched.DispatchReminders(ctx)
	if err := errors.Join(err1, err2); err != nil {
		return nil, err
	}

	log.Printf("sweeper: %d overdue completed, %d reminders sent, %d failed",
		overdue.Updated, reminders.Notified, overdue.Failed+reminders.Failed)
	return []*scheduler.Result{overdue, reminders}, nil
}

func (s *sweeper) loop(ctx context.Context) {
	if _, err := s.sweep(ctx); err != nil {
		log.Printf("sweeper: initial sweep error: %v", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.sweep(ctx); err != nil {
				log.Printf("sweeper: sweep error: %v", err)
			}
		}
	}
}
