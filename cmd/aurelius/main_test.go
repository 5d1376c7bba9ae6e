package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aurelius-bot/aurelius/internal/storage"
)

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	healthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got healthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "online" || got.Bot != "Aurelius" || got.Message != "Aurelius Discord Bot is running!" {
		t.Errorf("unexpected body: %+v", got)
	}
}

func TestCheckWriteLeavesNoRows(t *testing.T) {
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	if err := checkWrite(store); err != nil {
		t.Fatalf("checkWrite: %v", err)
	}
	streams, err := store.ListStreams("check-db")
	if err != nil {
		t.Fatalf("ListStreams: %v", err)
	}
	if len(streams) != 0 {
		t.Errorf("write check left %d streams behind", len(streams))
	}
}

func TestLoadConfigToml(t *testing.T) {
	dir := t.TempDir()
	configPath = filepath.Join(dir, "config.toml")
	t.Cleanup(func() { configPath = "" })

	data := "[database]\ndriver = \"sqlite\"\ndsn = \"" + filepath.ToSlash(filepath.Join(dir, "a.db")) + "\"\n\n[schedule]\nreminder_mode = \"reinsert\"\n"
	if err := os.WriteFile(configPath, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
	if err := loadConfig(); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Schedule.ReminderMode != "reinsert" || !strings.HasSuffix(cfg.Database.DSN, "a.db") {
		t.Errorf("config not applied: %+v", cfg.Schedule)
	}
	if cfg.Schedule.OverdueSpec != "0 * * * *" {
		t.Errorf("defaults lost: %q", cfg.Schedule.OverdueSpec)
	}
}

func TestLoadConfigRejectsBadMode(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "config.yaml")
	t.Cleanup(func() { configPath = "" })

	if err := os.WriteFile(configPath, []byte("schedule:\n  reminder_mode: sometimes\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := loadConfig(); err == nil {
		t.Fatal("expected an invalid config error")
	}
}
