package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aurelius-bot/aurelius"
	"github.com/aurelius-bot/aurelius/internal/scheduler"
	"github.com/aurelius-bot/aurelius/internal/storage"
)

type Format string

const (
	FormatJSON  Format = "json"
	FormatText  Format = "text"
	FormatHuman Format = "human"
)

type Formatter struct {
	format Format
	out    io.Writer
	err    io.Writer
}

// NewFormatter creates a new output formatter
func NewFormatter(format Format) *Formatter {
	return &Formatter{
		format: format,
		out:    os.Stdout,
		err:    os.Stderr,
	}
}

// NewFormatterWithWriters creates a formatter with custom output writers for testability
func NewFormatterWithWriters(format Format, out, errW io.Writer) *Formatter {
	return &Formatter{
		format: format,
		out:    out,
		err:    errW,
	}
}

// OutputSweepResult outputs the outcome of one scheduler job
func (f *Formatter) OutputSweepResult(result *scheduler.Result) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(result)
	case FormatText:
		fmt.Fprintf(f.out, "job=%s\n", result.Job)
		if result.Skipped {
			fmt.Fprintln(f.out, "skipped=true")
			return nil
		}
		fmt.Fprintf(f.out, "found=%d\n", result.Found)
		fmt.Fprintf(f.out, "updated=%d\n", result.Updated)
		fmt.Fprintf(f.out, "notified=%d\n", result.Notified)
		fmt.Fprintf(f.out, "failed=%d\n", result.Failed)
		return nil
	case FormatHuman:
		if result.Skipped {
			fmt.Fprintf(f.out, "%s sweep skipped\n", result.Job)
			return nil
		}
		fmt.Fprintf(f.out, "%s sweep: %d found, %d updated, %d notified\n",
			result.Job, result.Found, result.Updated, result.Notified)
		if result.Failed > 0 {
			fmt.Fprintf(f.out, "⚠️  %d notifications failed\n", result.Failed)
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputStreamList outputs a list of streams
func (f *Formatter) OutputStreamList(streams []storage.Stream, now time.Time) error {
	switch f.format {
	case FormatJSON:
		if streams == nil {
			streams = []storage.Stream{}
		}
		return json.NewEncoder(f.out).Encode(streams)
	case FormatText:
		for _, s := range streams {
			fmt.Fprintf(f.out, "id=%d\tstatus=%s\tdue=%s\tpriority=%s\titem=%s\tcreator=%s\n",
				s.ID, s.Status, s.DueDate.Format(time.RFC3339), s.Priority, s.ItemName, s.CreatorName)
		}
		return nil
	case FormatHuman:
		if len(streams) == 0 {
			fmt.Fprintln(f.out, "No streams")
			return nil
		}
		fmt.Fprintf(f.out, "Streams (%d):\n\n", len(streams))
		for _, s := range streams {
			mark := "✅"
			if s.Status == storage.StatusActive {
				mark = aurelius.Urgency(aurelius.DaysLeft(s.DueDate, now))
			}
			fmt.Fprintf(f.out, "%s %d: %s by %s\n", mark, s.ID, s.ItemName, s.CreatorName)
			fmt.Fprintf(f.out, "   Due: %s  Priority: %s  Type: %s\n", s.DueDate.Format("2006-01-02 15:04"), s.Priority, s.StreamType)
			if s.AgencyName != "" {
				fmt.Fprintf(f.out, "   Agency: %s\n", s.AgencyName)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputStats outputs the stream counters
func (f *Formatter) OutputStats(stats *storage.StreamStats) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(stats)
	case FormatText:
		fmt.Fprintf(f.out, "active=%d\ncompleted=%d\noverdue=%d\ncreated_this_week=%d\n",
			stats.Active, stats.Completed, stats.Overdue, stats.CreatedRecent)
		return nil
	case FormatHuman:
		fmt.Fprintf(f.out, "Active: %d  Completed: %d  Overdue: %d  New this week: %d\n",
			stats.Active, stats.Completed, stats.Overdue, stats.CreatedRecent)
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputImportResult outputs how much of a snapshot was imported
func (f *Formatter) OutputImportResult(result *aurelius.ImportResult) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(result)
	case FormatText:
		fmt.Fprintf(f.out, "streams=%d\nsettings=%d\n", result.Streams, result.Settings)
		return nil
	case FormatHuman:
		fmt.Fprintf(f.out, "Imported %d streams and %d settings\n", result.Streams, result.Settings)
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// CheckResult is the outcome of a database health check.
type CheckResult struct {
	Driver    string   `json:"driver"`
	Connected bool     `json:"connected"`
	Templates int      `json:"templates"`
	Agencies  []string `json:"agencies,omitempty"`
	WriteTest bool     `json:"write_test"`
	Errors    []string `json:"errors,omitempty"`
}

// OutputCheckResult outputs a database health check
func (f *Formatter) OutputCheckResult(result *CheckResult) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(result)
	case FormatText:
		fmt.Fprintf(f.out, "driver=%s\n", result.Driver)
		fmt.Fprintf(f.out, "connected=%t\n", result.Connected)
		fmt.Fprintf(f.out, "templates=%d\n", result.Templates)
		fmt.Fprintf(f.out, "write_test=%t\n", result.WriteTest)
		for _, e := range result.Errors {
			fmt.Fprintf(f.out, "error=%s\n", e)
		}
		return nil
	case FormatHuman:
		fmt.Fprintf(f.out, "%s Database connection (%s)\n", check(result.Connected), result.Driver)
		fmt.Fprintf(f.out, "%s Agency templates: %d\n", check(result.Templates > 0), result.Templates)
		for _, a := range result.Agencies {
			fmt.Fprintf(f.out, "   • %s\n", a)
		}
		fmt.Fprintf(f.out, "%s Insert/delete test\n", check(result.WriteTest))
		for _, e := range result.Errors {
			fmt.Fprintf(f.out, "   %s\n", truncate(e, 200))
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

func check(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

// Error outputs an error message to stderr
func (f *Formatter) Error(format string, args ...interface{}) {
	fmt.Fprintf(f.err, format+"\n", args...)
}

// Warning outputs a warning message to stderr
func (f *Formatter) Warning(format string, args ...interface{}) {
	fmt.Fprintf(f.err, "Warning: "+format+"\n", args...)
}

// truncate truncates a string to maxLen characters
func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
