// aurelius-mcp serves the desktop data channels as MCP tools over stdio.
// It opens the configured database directly and acts as a single local
// user, so a desktop shell can list, edit and back up streams without the
// Discord bot running.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aurelius-bot/aurelius"
	"github.com/aurelius-bot/aurelius/internal/notify"
	"github.com/aurelius-bot/aurelius/internal/scheduler"
	"github.com/aurelius-bot/aurelius/internal/storage"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "config file path (.yaml or .toml)")
	userID := flag.String("user", "", "user the tools act as (default database.local_user_id)")
	sweepEvery := flag.Duration("sweep", 0, "run the overdue and reminder jobs on this interval (0 disables)")
	flag.Parse()

	// stdout carries the protocol.
	log.SetOutput(os.Stderr)

	cfg, err := storage.LoadConfig(*configPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		log.Fatalf("aurelius-mcp: %v", err)
	}
	if *userID == "" {
		*userID = cfg.Database.LocalUserID
	}

	engine, err := aurelius.NewEngine(cfg)
	if err != nil {
		log.Fatalf("aurelius-mcp: create engine: %v", err)
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sw *sweeper
	if *sweepEvery > 0 {
		sched := scheduler.New(engine.Store(), notify.NewConsoleNotifier(os.Stderr), scheduler.Options{
			ReminderMode: cfg.Schedule.ReminderMode,
			Location:     engine.Location(),
		})
		sw = newSweeper(sched, max(*sweepEvery, time.Minute))
		sw.start(ctx)
		defer sw.stop()
	}

	srv := newServer(engine, *userID, sw)
	if err := srv.run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("aurelius-mcp: %v", err)
	}
}
