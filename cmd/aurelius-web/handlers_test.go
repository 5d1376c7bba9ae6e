package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aurelius-bot/aurelius"
	"github.com/aurelius-bot/aurelius/internal/storage"
)

type testFixtures struct {
	router http.Handler
	engine *aurelius.Engine
}

func newTestFixtures(t *testing.T, mode string) *testFixtures {
	t.Helper()
	cfg := storage.DefaultConfig()
	cfg.Database.DSN = filepath.Join(t.TempDir(), "test.db")
	cfg.Web.AuthMode = mode
	cfg.Web.JWTSecret = "test-secret"

	engine, err := aurelius.NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(func() { engine.Close() })

	auth, err := newAuthenticator(cfg)
	if err != nil {
		t.Fatalf("newAuthenticator: %v", err)
	}
	return &testFixtures{
		router: requestID(recovery(newRouter(engine, auth))),
		engine: engine,
	}
}

func (f *testFixtures) do(t *testing.T, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func signToken(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

func TestHealth(t *testing.T) {
	f := newTestFixtures(t, "local")
	w := f.do(t, "GET", "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	f := newTestFixtures(t, "local")
	w := f.do(t, "GET", "/healthz", "", "X-Request-ID", "abc-123")
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q", got)
	}
}

func TestStreamLifecycle(t *testing.T) {
	f := newTestFixtures(t, "local")

	due := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	w := f.do(t, "POST", "/api/streams",
		`{"item_name":"<b>Silk</b> Gown","creator_name":"Mira","agency_name":"Ladies & Babes","due_date":"`+due+`"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	created := decode[aurelius.Stream](t, w)
	if created.ItemName != "Silk Gown" {
		t.Errorf("markup not stripped: %q", created.ItemName)
	}
	if created.AgencyName != "Ladies & Babes" {
		t.Errorf("agency = %q", created.AgencyName)
	}
	if created.UserID != "local" || created.Status != storage.StatusActive || created.Priority != storage.PriorityMedium {
		t.Errorf("defaults not applied: %+v", created)
	}

	path := "/api/streams/" + strconv.FormatInt(created.ID, 10)
	w = f.do(t, "PATCH", path, `{"priority":"high","notes":"bring lights"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", w.Code, w.Body.String())
	}
	if got := decode[aurelius.Stream](t, w); got.Priority != storage.PriorityHigh || got.Notes != "bring lights" {
		t.Errorf("update not applied: %+v", got)
	}

	w = f.do(t, "POST", path+"/complete", "")
	if w.Code != http.StatusOK {
		t.Fatalf("complete status = %d", w.Code)
	}
	if got := decode[aurelius.Stream](t, w); got.Status != storage.StatusCompleted || got.CompletedAt == nil {
		t.Errorf("not completed: %+v", got)
	}

	w = f.do(t, "GET", "/api/streams?status=completed", "")
	if got := decode[[]aurelius.Stream](t, w); len(got) != 1 {
		t.Errorf("expected 1 completed stream, got %d", len(got))
	}

	if w = f.do(t, "DELETE", path, ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w = f.do(t, "GET", path, ""); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", w.Code)
	}
}

func TestCreateStreamWithDueDays(t *testing.T) {
	f := newTestFixtures(t, "local")
	w := f.do(t, "POST", "/api/streams", `{"item_name":"Boots","creator_name":"Kai","due_days":3}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	reminders, err := f.engine.Store().ListReminders("local")
	if err != nil {
		t.Fatalf("ListReminders: %v", err)
	}
	if len(reminders) != 1 {
		t.Errorf("expected a due-date reminder, got %d", len(reminders))
	}
}

func TestCreateStreamValidation(t *testing.T) {
	f := newTestFixtures(t, "local")

	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"item_name":`},
		{"missing creator", `{"item_name":"Boots","due_days":2}`},
		{"bad priority", `{"item_name":"Boots","creator_name":"Kai","due_days":2,"priority":"urgent"}`},
		{"due days out of range", `{"item_name":"Boots","creator_name":"Kai","due_days":8}`},
		{"stored overdue", `{"item_name":"Boots","creator_name":"Kai","status":"overdue","due_date":"2026-01-01T00:00:00Z"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := f.do(t, "POST", "/api/streams", tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestInvalidStreamID(t *testing.T) {
	f := newTestFixtures(t, "local")
	if w := f.do(t, "GET", "/api/streams/abc", ""); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	f := newTestFixtures(t, "local")

	if w := f.do(t, "PUT", "/api/settings", `{"theme":"dark","notifications":true}`); w.Code != http.StatusOK {
		t.Fatalf("put status = %d: %s", w.Code, w.Body.String())
	}
	got := decode[map[string]json.RawMessage](t, f.do(t, "GET", "/api/settings", ""))
	if string(got["theme"]) != `"dark"` || string(got["notifications"]) != "true" {
		t.Errorf("settings = %v", got)
	}
}

func TestExportImport(t *testing.T) {
	f := newTestFixtures(t, "local")
	f.do(t, "POST", "/api/streams", `{"item_name":"Boots","creator_name":"Kai","due_days":2}`)
	f.do(t, "PUT", "/api/settings", `{"theme":"dark"}`)

	w := f.do(t, "GET", "/api/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d", w.Code)
	}
	snap := decode[map[string]json.RawMessage](t, w)
	for _, key := range []string{"streams", "settings", "exportDate"} {
		if _, ok := snap[key]; !ok {
			t.Errorf("export missing %q", key)
		}
	}

	w = f.do(t, "POST", "/api/import", w.Body.String())
	if w.Code != http.StatusOK {
		t.Fatalf("import status = %d: %s", w.Code, w.Body.String())
	}
	res := decode[aurelius.ImportResult](t, w)
	if res.Streams != 1 || res.Settings != 1 {
		t.Errorf("import result = %+v", res)
	}

	streams := decode[[]aurelius.Stream](t, f.do(t, "GET", "/api/streams", ""))
	if len(streams) != 2 {
		t.Errorf("expected 2 streams after import, got %d", len(streams))
	}
}

func TestStats(t *testing.T) {
	f := newTestFixtures(t, "local")
	f.do(t, "POST", "/api/streams", `{"item_name":"Boots","creator_name":"Kai","due_days":2}`)

	stats := decode[aurelius.StreamStats](t, f.do(t, "GET", "/api/stats", ""))
	if stats.Active != 1 || stats.CreatedRecent != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestTemplates(t *testing.T) {
	f := newTestFixtures(t, "local")

	list := decode[[]aurelius.AgencyTemplate](t, f.do(t, "GET", "/api/templates", ""))
	if len(list) != 2 {
		t.Fatalf("expected 2 seeded templates, got %d", len(list))
	}
	w := f.do(t, "GET", "/api/templates/"+url.PathEscape(list[0].AgencyName), "")
	if w.Code != http.StatusOK {
		t.Errorf("get template status = %d", w.Code)
	}
	if w := f.do(t, "GET", "/api/templates/Nope", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing template status = %d", w.Code)
	}
}

func TestJWTAuth(t *testing.T) {
	f := newTestFixtures(t, "jwt")

	if w := f.do(t, "GET", "/api/streams", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d", w.Code)
	}
	if w := f.do(t, "GET", "/api/streams", "", "Authorization", "Bearer "+signToken(t, "wrong", "alice")); w.Code != http.StatusUnauthorized {
		t.Errorf("bad signature status = %d", w.Code)
	}
	if w := f.do(t, "GET", "/api/streams", "", "Authorization", signToken(t, "test-secret", "alice")); w.Code != http.StatusUnauthorized {
		t.Errorf("missing Bearer prefix status = %d", w.Code)
	}

	alice := "Bearer " + signToken(t, "test-secret", "alice")
	bob := "Bearer " + signToken(t, "test-secret", "bob")

	w := f.do(t, "POST", "/api/streams", `{"item_name":"Boots","creator_name":"Kai","due_days":2}`, "Authorization", alice)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	st := decode[aurelius.Stream](t, w)
	if st.UserID != "alice" {
		t.Errorf("owner = %q, want alice", st.UserID)
	}

	// Another user can neither see nor change it.
	path := "/api/streams/" + strconv.FormatInt(st.ID, 10)
	if w := f.do(t, "GET", path, "", "Authorization", bob); w.Code != http.StatusNotFound {
		t.Errorf("bob get status = %d", w.Code)
	}
	if w := f.do(t, "DELETE", path, "", "Authorization", bob); w.Code != http.StatusNotFound {
		t.Errorf("bob delete status = %d", w.Code)
	}
	if got := decode[[]aurelius.Stream](t, f.do(t, "GET", "/api/streams", "", "Authorization", bob)); len(got) != 0 {
		t.Errorf("bob sees %d streams", len(got))
	}
}

func TestNewAuthenticatorRejectsMissingSecret(t *testing.T) {
	cfg := storage.DefaultConfig()
	cfg.Web.AuthMode = "jwt"
	if _, err := newAuthenticator(cfg); err == nil {
		t.Error("expected an error without a secret")
	}
	cfg.Web.AuthMode = "open"
	if _, err := newAuthenticator(cfg); err == nil {
		t.Error("expected an error for an unknown mode")
	}
}
