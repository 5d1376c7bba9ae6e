package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/aurelius-bot/aurelius"
	"github.com/aurelius-bot/aurelius/internal/notify"
	"github.com/aurelius-bot/aurelius/internal/output"
	"github.com/aurelius-bot/aurelius/internal/scheduler"
	"github.com/aurelius-bot/aurelius/internal/storage"
)

var (
	configPath   string
	cfg          *storage.Config
	outputFormat string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "aurelius",
		Short: "Aurelius - a Discord assistant for IMVU models",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path, .yaml or .toml (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "human", "output format: json, text, human")

	rootCmd.AddCommand(botCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(deployCommandsCmd())
	rootCmd.AddCommand(checkDBCmd())
	rootCmd.AddCommand(streamsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(initConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() error {
	if configPath == "" {
		configPath = "./config/config.yaml"
	}
	c, err := storage.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg = c
	return nil
}

func openEngine() (*aurelius.Engine, error) {
	engine, err := aurelius.NewEngine(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return engine, nil
}

func schedulerOptions(engine *aurelius.Engine) scheduler.Options {
	return scheduler.Options{
		ReminderMode: cfg.Schedule.ReminderMode,
		Location:     engine.Location(),
		OverdueSpec:  cfg.Schedule.OverdueSpec,
		ReminderSpec: cfg.Schedule.ReminderSpec,
	}
}

func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "sweep <overdue|reminders>",
		Short:     "Run one scheduler job now, printing notifications instead of sending them",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"overdue", "reminders"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			formatter := output.NewFormatter(output.Format(outputFormat))

			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			sched := scheduler.New(engine.Store(), notify.NewConsoleNotifier(os.Stderr), schedulerOptions(engine))

			var result *scheduler.Result
			switch args[0] {
			case "overdue":
				result, err = sched.SweepOverdue(ctx)
			case "reminders":
				result, err = sched.DispatchReminders(ctx)
			default:
				return fmt.Errorf("unknown job %q (want overdue or reminders)", args[0])
			}
			if err != nil {
				return err
			}
			if result.Failed > 0 {
				formatter.Warning("%d notifications failed", result.Failed)
			}
			return formatter.OutputSweepResult(result)
		},
	}
	return cmd
}

func checkDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-db",
		Short: "Test the database connection, seeded templates and write access",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(output.Format(outputFormat))

			store, err := storage.OpenConfig(cfg)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer store.Close()

			result := &output.CheckResult{Driver: store.Driver()}
			if err := store.Ping(); err != nil {
				result.Errors = append(result.Errors, "ping: "+err.Error())
				return formatter.OutputCheckResult(result)
			}
			result.Connected = true

			templates, err := store.GetAllAgencyTemplates()
			if err != nil {
				result.Errors = append(result.Errors, "templates: "+err.Error())
			}
			result.Templates = len(templates)
			for _, t := range templates {
				result.Agencies = append(result.Agencies, t.AgencyName)
			}

			if err := checkWrite(store); err != nil {
				result.Errors = append(result.Errors, err.Error())
			} else {
				result.WriteTest = true
			}
			return formatter.OutputCheckResult(result)
		},
	}
}

// checkWrite inserts and removes a throwaway stream.
func checkWrite(store storage.Store) error {
	st, err := store.CreateStream(&storage.Stream{
		UserID:      "check-db",
		ItemName:    "Test Item",
		CreatorName: "Test Creator",
		DueDate:     time.Now().AddDate(0, 0, 1),
	})
	if err != nil {
		return fmt.Errorf("insert test row: %w", err)
	}
	if _, err := store.DeleteStream(st.ID); err != nil {
		return fmt.Errorf("delete test row: %w", err)
	}
	return nil
}

func streamsCmd() *cobra.Command {
	var userID, status string
	var stats bool
	cmd := &cobra.Command{
		Use:   "streams",
		Short: "List a user's streams",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(output.Format(outputFormat))

			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			if stats {
				s, err := engine.Stats(userID)
				if err != nil {
					return fmt.Errorf("failed to get stats: %w", err)
				}
				return formatter.OutputStats(s)
			}

			var streams []aurelius.Stream
			if status == "" {
				streams, err = engine.AllStreams(userID)
			} else {
				streams, _, err = engine.ListStreams(userID, "", status)
			}
			if err != nil {
				return fmt.Errorf("failed to list streams: %w", err)
			}
			return formatter.OutputStreamList(streams, engine.Now())
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user ID (default: the configured local user)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "filter by status: active, completed, overdue")
	cmd.Flags().BoolVar(&stats, "stats", false, "show counters instead of the list")
	return cmd
}

func exportCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write a user's streams and settings as a JSON snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			snap, err := engine.Export(userID)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode snapshot: %w", err)
			}

			if len(args) == 0 {
				_, err = fmt.Println(string(data))
				return err
			}
			if err := os.WriteFile(args[0], data, 0644); err != nil {
				return fmt.Errorf("failed to write snapshot: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Exported %d streams to %s\n", len(snap.Streams), args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user ID (default: the configured local user)")
	return cmd
}

func importCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Add the streams and settings from a JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(output.Format(outputFormat))

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read snapshot: %w", err)
			}
			var snap aurelius.Snapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				return fmt.Errorf("failed to parse snapshot: %w", err)
			}

			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			result, err := engine.Import(userID, &snap)
			if err != nil {
				return err
			}
			return formatter.OutputImportResult(result)
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user ID (default: the configured local user)")
	return cmd
}

func initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Create a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := filepath.Dir(configPath)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}

			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("config file already exists: %s", configPath)
			}

			data, err := storage.DefaultConfig().Encode(configPath)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			if err := os.WriteFile(configPath, data, 0600); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			fmt.Printf("Created default config at %s\n", configPath)
			return nil
		},
	}
}
