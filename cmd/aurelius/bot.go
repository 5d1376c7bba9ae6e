package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"

	"github.com/aurelius-bot/aurelius/internal/bot"
	"github.com/aurelius-bot/aurelius/internal/scheduler"
)

func botCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Connect to Discord and run the assistant with its reminder scheduler",
		Long: `Runs the Discord bot, the hourly overdue sweep and the daily reminder
dispatch, plus a small health endpoint for hosting platforms.
Handles SIGINT/SIGTERM for graceful shutdown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			b, err := bot.New(engine, cfg.Discord.Token)
			if err != nil {
				return err
			}

			opts := schedulerOptions(engine)
			opts.Ready = b.Ready
			sched := scheduler.New(engine.Store(), b.Notifier(), opts)
			if err := sched.Start(ctx); err != nil {
				return err
			}
			defer sched.Stop()

			srv := &http.Server{
				Addr:              cfg.Discord.HealthAddr,
				Handler:           healthHandler(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				log.Printf("aurelius: health server listening on %s", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Printf("aurelius: health server: %v", err)
				}
			}()

			if err := b.Open(); err != nil {
				srv.Close()
				return err
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			log.Println("aurelius: received shutdown signal, exiting")

			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			srv.Shutdown(shutdownCtx)
			return b.Close()
		},
	}
}

type healthStatus struct {
	Status    string `json:"status"`
	Bot       string `json:"bot"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func healthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(healthStatus{
			Status:    "online",
			Bot:       bot.Name,
			Message:   bot.Name + " Discord Bot is running!",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	})
}

func deployCommandsCmd() *cobra.Command {
	var guildID string
	cmd := &cobra.Command{
		Use:   "deploy-commands",
		Short: "Register the slash commands with Discord",
		Long: `Overwrites the application's slash commands. With --guild (or
DISCORD_GUILD_ID) they are registered for that guild only and appear
immediately; otherwise they are global.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Discord.Token == "" {
				return fmt.Errorf("discord token is required (set DISCORD_TOKEN)")
			}
			if guildID == "" {
				guildID = cfg.Discord.GuildID
			}

			s, err := discordgo.New("Bot " + cfg.Discord.Token)
			if err != nil {
				return fmt.Errorf("failed to create discord session: %w", err)
			}

			fmt.Printf("Started refreshing %d application (/) commands.\n", len(bot.Commands()))
			cmds, err := bot.RegisterCommands(s, cfg.Discord.ApplicationID, guildID)
			if err != nil {
				return err
			}
			scope := "globally"
			if guildID != "" {
				scope = "for guild " + guildID
			}
			fmt.Printf("Successfully reloaded %d application (/) commands %s.\n", len(cmds), scope)
			return nil
		},
	}
	cmd.Flags().StringVarP(&guildID, "guild", "g", "", "register for one guild instead of globally")
	return cmd
}
