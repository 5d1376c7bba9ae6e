package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/aurelius-bot/aurelius"
	"github.com/aurelius-bot/aurelius/internal/scheduler"
	"github.com/aurelius-bot/aurelius/internal/storage"
)

func TestOutputSweepResult_JSON(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatJSON, &out, &errBuf)

	result := &scheduler.Result{Job: "reminders", Found: 4, Updated: 4, Notified: 3, Failed: 1}
	if err := f.OutputSweepResult(result); err != nil {
		t.Fatalf("OutputSweepResult failed: %v", err)
	}

	var decoded scheduler.Result
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if decoded != *result {
		t.Errorf("decoded = %+v, want %+v", decoded, *result)
	}
}

func TestOutputSweepResult_Text(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatText, &out, &errBuf)

	if err := f.OutputSweepResult(&scheduler.Result{Job: "overdue", Found: 2, Updated: 2, Notified: 2}); err != nil {
		t.Fatalf("OutputSweepResult failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"job=overdue", "found=2", "updated=2", "notified=2", "failed=0"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %s in output: %s", want, got)
		}
	}
}

func TestOutputSweepResult_HumanSkipped(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatHuman, &out, &errBuf)

	if err := f.OutputSweepResult(&scheduler.Result{Job: "overdue", Skipped: true}); err != nil {
		t.Fatalf("OutputSweepResult failed: %v", err)
	}
	if got := out.String(); got != "overdue sweep skipped\n" {
		t.Errorf("output = %q", got)
	}
}

func TestOutputSweepResult_HumanFailures(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatHuman, &out, &errBuf)

	if err := f.OutputSweepResult(&scheduler.Result{Job: "reminders", Found: 3, Updated: 3, Notified: 1, Failed: 2}); err != nil {
		t.Fatalf("OutputSweepResult failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "3 found, 3 updated, 1 notified") {
		t.Errorf("missing counts in output: %s", got)
	}
	if !strings.Contains(got, "2 notifications failed") {
		t.Errorf("missing failure count in output: %s", got)
	}
}

func TestOutputStreamList_JSONEmpty(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatJSON, &out, &errBuf)

	if err := f.OutputStreamList(nil, time.Now()); err != nil {
		t.Fatalf("OutputStreamList failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "[]" {
		t.Errorf("expected empty JSON array, got %q", got)
	}
}

func TestOutputStreamList_Human(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatHuman, &out, &errBuf)

	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	streams := []storage.Stream{
		{ID: 1, ItemName: "Silk Gown", CreatorName: "Mira", DueDate: now.Add(12 * time.Hour), Status: storage.StatusActive, AgencyName: "Glow"},
		{ID: 2, ItemName: "Boots", CreatorName: "Kai", DueDate: now.AddDate(0, 0, 5), Status: storage.StatusActive},
		{ID: 3, ItemName: "Hat", CreatorName: "Ode", DueDate: now.AddDate(0, 0, -1), Status: storage.StatusCompleted},
	}
	if err := f.OutputStreamList(streams, now); err != nil {
		t.Fatalf("OutputStreamList failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Streams (3)", "🔴 1: Silk Gown by Mira", "🟢 2: Boots by Kai", "✅ 3: Hat by Ode", "Agency: Glow"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in output:\n%s", want, got)
		}
	}
}

func TestOutputStreamList_HumanEmpty(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatHuman, &out, &errBuf)

	if err := f.OutputStreamList(nil, time.Now()); err != nil {
		t.Fatalf("OutputStreamList failed: %v", err)
	}
	if !strings.Contains(out.String(), "No streams") {
		t.Errorf("expected 'No streams', got: %s", out.String())
	}
}

func TestOutputStats_Text(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatText, &out, &errBuf)

	if err := f.OutputStats(&storage.StreamStats{Active: 2, Completed: 5, Overdue: 1, CreatedRecent: 3}); err != nil {
		t.Fatalf("OutputStats failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"active=2", "completed=5", "overdue=1", "created_this_week=3"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %s in output: %s", want, got)
		}
	}
}

func TestOutputImportResult_Human(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatHuman, &out, &errBuf)

	if err := f.OutputImportResult(&aurelius.ImportResult{Streams: 4, Settings: 2}); err != nil {
		t.Fatalf("OutputImportResult failed: %v", err)
	}
	if got := out.String(); got != "Imported 4 streams and 2 settings\n" {
		t.Errorf("output = %q", got)
	}
}

func TestOutputCheckResult_Human(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatHuman, &out, &errBuf)

	result := &CheckResult{
		Driver:    "sqlite",
		Connected: true,
		Templates: 2,
		Agencies:  []string{"Ladies & Babes", "Glow"},
		WriteTest: false,
		Errors:    []string{"insert test row: read-only database"},
	}
	if err := f.OutputCheckResult(result); err != nil {
		t.Fatalf("OutputCheckResult failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"✅ Database connection (sqlite)", "✅ Agency templates: 2", "• Glow", "❌ Insert/delete test", "read-only database"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in output:\n%s", want, got)
		}
	}
}

func TestUnknownFormat(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(Format("xml"), &out, &errBuf)

	if err := f.OutputStats(&storage.StreamStats{}); err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("expected unknown format error, got %v", err)
	}
}

func TestWarning(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatHuman, &out, &errBuf)

	f.Warning("something went %s", "wrong")

	got := errBuf.String()
	if !strings.Contains(got, "Warning: something went wrong") {
		t.Errorf("expected warning on stderr, got: %q", got)
	}
	if out.Len() != 0 {
		t.Errorf("expected no stdout output, got: %q", out.String())
	}
}

func TestError(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatHuman, &out, &errBuf)

	f.Error("failed: %d", 42)

	got := errBuf.String()
	if !strings.Contains(got, "failed: 42") {
		t.Errorf("expected error on stderr, got: %q", got)
	}
	if out.Len() != 0 {
		t.Errorf("expected no stdout output, got: %q", out.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"over length", "hello world", 5, "hello..."},
		{"with whitespace", "  hello  ", 10, "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
