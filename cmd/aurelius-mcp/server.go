package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aurelius-bot/aurelius"
	"github.com/aurelius-bot/aurelius/internal/storage"
)

const serverVersion = "0.1.0"

// server is the Aurelius MCP server. Every tool acts as userID.
type server struct {
	engine  *aurelius.Engine
	userID  string
	policy  *bluemonday.Policy
	sweeper *sweeper // non-nil when -sweep is enabled
}

func newServer(engine *aurelius.Engine, userID string, sw *sweeper) *server {
	return &server{
		engine:  engine,
		userID:  userID,
		policy:  bluemonday.StrictPolicy(),
		sweeper: sw,
	}
}

// run serves the tools over stdin/stdout until the client disconnects or
// ctx is cancelled.
func (s *server) run(ctx context.Context) error {
	log.Printf("aurelius-mcp starting (user=%s)", s.userID)
	return s.mcpServer().Run(ctx, &mcp.StdioTransport{})
}

func (s *server) mcpServer() *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "aurelius", Version: serverVersion}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "db_get_streams",
		Description: "List your streams, newest first. Overdue selects active streams already past their due date.",
	}, s.handleGetStreams)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "db_create_stream",
		Description: "Register a new stream with either an explicit due date or a number of days from now.",
	}, s.handleCreateStream)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "db_update_stream",
		Description: "Change fields of one of your streams. Omitted fields are left unchanged.",
	}, s.handleUpdateStream)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "db_delete_stream",
		Description: "Delete one of your streams.",
	}, s.handleDeleteStream)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "db_complete_stream",
		Description: "Mark one of your streams completed.",
	}, s.handleCompleteStream)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "db_get_stats",
		Description: "Counts of active, completed and overdue streams, plus streams created in the last week.",
	}, s.handleGetStats)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "db_get_settings",
		Description: "Get your saved dashboard settings as a JSON object.",
	}, s.handleGetSettings)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "db_set_settings",
		Description: "Save dashboard settings. Given keys replace stored values; other keys are kept.",
	}, s.handleSetSettings)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "db_export_data",
		Description: "Export your streams and settings as a snapshot document {streams, settings, exportDate}.",
	}, s.handleExportData)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "db_import_data",
		Description: "Import a snapshot produced by db_export_data. Streams are added with new IDs; settings are merged.",
	}, s.handleImportData)

	if s.sweeper != nil {
		mcp.AddTool(srv, &mcp.Tool{
			Name:        "sweep_now",
			Description: "Run the overdue sweep and reminder dispatch immediately instead of waiting for the next interval.",
		}, s.handleSweepNow)
	}
	return srv
}

// --- tool handlers ---

func (s *server) handleGetStreams(_ context.Context, _ *mcp.CallToolRequest, in streamsGetInput) (*mcp.CallToolResult, any, error) {
	status := ""
	if in.Status != nil {
		status = strings.TrimSpace(*in.Status)
	}

	var streams []aurelius.Stream
	var err error
	if status == "" || status == "all" {
		streams, err = s.engine.AllStreams(s.userID)
	} else {
		streams, _, err = s.engine.ListStreams(s.userID, "", status)
	}
	if err != nil {
		return mcpError("%v", err)
	}
	if streams == nil {
		streams = []aurelius.Stream{}
	}

	log.Printf("db_get_streams: status=%q %d streams", status, len(streams))
	return mcpJSON(streams)
}

func (s *server) handleCreateStream(_ context.Context, _ *mcp.CallToolRequest, in streamCreateInput) (*mcp.CallToolResult, any, error) {
	var created *aurelius.Stream
	var err error

	switch {
	case in.DueDays != nil:
		created, err = s.engine.CreateStream(aurelius.NewStream{
			UserID:      s.userID,
			ItemName:    s.clean(in.ItemName),
			CreatorName: s.clean(in.CreatorName),
			CreatorID:   s.cleanOpt(in.CreatorID),
			AgencyName:  s.cleanOpt(in.AgencyName),
			DueDays:     *in.DueDays,
			Priority:    deref(in.Priority),
			StreamType:  deref(in.StreamType),
			Notes:       s.cleanOpt(in.Notes),
		})
	case in.DueDate != nil:
		due, perr := parseDue(*in.DueDate, s.engine.Location())
		if perr != nil {
			return mcpError("%v", perr)
		}
		created, err = s.engine.AddStream(aurelius.Stream{
			UserID:      s.userID,
			ItemName:    s.clean(in.ItemName),
			CreatorName: s.clean(in.CreatorName),
			CreatorID:   s.cleanOpt(in.CreatorID),
			AgencyName:  s.cleanOpt(in.AgencyName),
			DueDate:     due,
			Priority:    storage.Priority(deref(in.Priority)),
			StreamType:  storage.StreamType(deref(in.StreamType)),
			Notes:       s.cleanOpt(in.Notes),
		})
	default:
		return mcpError("due_date or due_days is required")
	}
	if err != nil {
		return mcpError("%v", err)
	}

	log.Printf("db_create_stream: id=%d item=%q", created.ID, created.ItemName)
	return mcpJSON(created)
}

func (s *server) handleUpdateStream(_ context.Context, _ *mcp.CallToolRequest, in streamUpdateInput) (*mcp.CallToolResult, any, error) {
	if _, err := s.engine.StreamFor(s.userID, in.ID); err != nil {
		return streamError(in.ID, err)
	}

	u := aurelius.StreamUpdate{
		ItemName:    s.cleanPtr(in.ItemName),
		CreatorName: s.cleanPtr(in.CreatorName),
		CreatorID:   s.cleanPtr(in.CreatorID),
		AgencyName:  s.cleanPtr(in.AgencyName),
		Notes:       s.cleanPtr(in.Notes),
	}
	if in.DueDate != nil {
		due, err := parseDue(*in.DueDate, s.engine.Location())
		if err != nil {
			return mcpError("%v", err)
		}
		u.DueDate = &due
	}
	if in.Status != nil {
		v := storage.StreamStatus(*in.Status)
		u.Status = &v
	}
	if in.Priority != nil {
		v := storage.Priority(*in.Priority)
		u.Priority = &v
	}
	if in.StreamType != nil {
		v := storage.StreamType(*in.StreamType)
		u.StreamType = &v
	}

	if _, err := s.engine.UpdateStream(in.ID, u); err != nil {
		return mcpError("%v", err)
	}
	updated, err := s.engine.StreamFor(s.userID, in.ID)
	if err != nil {
		return streamError(in.ID, err)
	}

	log.Printf("db_update_stream: id=%d", in.ID)
	return mcpJSON(updated)
}

func (s *server) handleDeleteStream(_ context.Context, _ *mcp.CallToolRequest, in streamIDInput) (*mcp.CallToolResult, any, error) {
	if _, err := s.engine.StreamFor(s.userID, in.ID); err != nil {
		return streamError(in.ID, err)
	}
	if _, err := s.engine.DeleteStream(in.ID); err != nil {
		return mcpError("%v", err)
	}

	log.Printf("db_delete_stream: id=%d", in.ID)
	return mcpText("Stream %d deleted.", in.ID)
}

func (s *server) handleCompleteStream(_ context.Context, _ *mcp.CallToolRequest, in streamIDInput) (*mcp.CallToolResult, any, error) {
	st, err := s.engine.CompleteStream(s.userID, in.ID)
	if err != nil {
		return streamError(in.ID, err)
	}

	log.Printf("db_complete_stream: id=%d", in.ID)
	return mcpJSON(st)
}

func (s *server) handleGetStats(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	stats, err := s.engine.Stats(s.userID)
	if err != nil {
		return mcpError("%v", err)
	}
	return mcpJSON(stats)
}

func (s *server) handleGetSettings(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	settings, err := s.engine.Settings(s.userID)
	if err != nil {
		return mcpError("%v", err)
	}
	if settings == nil {
		settings = map[string]json.RawMessage{}
	}
	return mcpJSON(settings)
}

func (s *server) handleSetSettings(_ context.Context, _ *mcp.CallToolRequest, in settingsSetInput) (*mcp.CallToolResult, any, error) {
	if len(in.Settings) == 0 {
		return mcpError("settings must contain at least one key")
	}
	settings := make(map[string]json.RawMessage, len(in.Settings))
	for k, v := range in.Settings {
		b, err := json.Marshal(v)
		if err != nil {
			return mcpError("setting %q: %v", k, err)
		}
		settings[k] = b
	}
	if err := s.engine.SetSettings(s.userID, settings); err != nil {
		return mcpError("%v", err)
	}

	log.Printf("db_set_settings: %d keys", len(settings))
	return mcpText("Saved %d settings.", len(settings))
}

func (s *server) handleExportData(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	snap, err := s.engine.Export(s.userID)
	if err != nil {
		return mcpError("%v", err)
	}

	log.Printf("db_export_data: %d streams", len(snap.Streams))
	return mcpJSON(snap)
}

func (s *server) handleImportData(_ context.Context, _ *mcp.CallToolRequest, in importInput) (*mcp.CallToolResult, any, error) {
	var snap aurelius.Snapshot
	if err := json.Unmarshal([]byte(in.Data), &snap); err != nil {
		return mcpError("invalid snapshot: %v", err)
	}
	for i := range snap.Streams {
		st := &snap.Streams[i]
		st.ItemName = s.clean(st.ItemName)
		st.CreatorName = s.clean(st.CreatorName)
		st.CreatorID = s.clean(st.CreatorID)
		st.AgencyName = s.clean(st.AgencyName)
		st.Notes = s.clean(st.Notes)
	}

	res, err := s.engine.Import(s.userID, &snap)
	if err != nil {
		return mcpError("%v", err)
	}

	log.Printf("db_import_data: %d streams, %d settings", res.Streams, res.Settings)
	return mcpJSON(res)
}

func (s *server) handleSweepNow(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	results, err := s.sweeper.sweep(ctx)
	if err != nil {
		return mcpError("%v", err)
	}
	return mcpJSON(results)
}

// --- helpers ---

// clean strips markup from free text and decodes the entities the policy
// escapes.
func (s *server) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

func (s *server) cleanOpt(v *string) string {
	if v == nil {
		return ""
	}
	return s.clean(*v)
}

func (s *server) cleanPtr(v *string) *string {
	if v == nil {
		return nil
	}
	c := s.clean(*v)
	return &c
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// parseDue accepts RFC 3339 or a bare date, which is taken as midnight in loc.
func parseDue(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, v, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: due date %q must be RFC 3339 or YYYY-MM-DD", aurelius.ErrInvalidValue, v)
}

func streamError(id int64, err error) (*mcp.CallToolResult, any, error) {
	if errors.Is(err, aurelius.ErrNotFound) {
		return mcpError("stream %d not found", id)
	}
	return mcpError("%v", err)
}

func mcpText(format string, args ...any) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
	}, nil, nil
}

func mcpJSON(data any) (*mcp.CallToolResult, any, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcpError("marshal response: %v", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}, nil, nil
}

func mcpError(format string, args ...any) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Error: "+format, args...)}},
		IsError: true,
	}, nil, nil
}
