package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/aurelius-bot/aurelius"
)

// handlers holds dependencies for all HTTP handler methods.
type handlers struct {
	engine *aurelius.Engine
	policy *bluemonday.Policy
}

// maxBodyBytes bounds request bodies; imports are the largest.
const maxBodyBytes = 8 << 20

// --- Helper methods ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("aurelius-web: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeEngineError maps engine errors to HTTP statuses. Unexpected errors
// are logged and reported without detail.
func writeEngineError(w http.ResponseWriter, r *http.Request, doing string, err error) {
	switch {
	case errors.Is(err, aurelius.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, aurelius.ErrInvalidValue):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("aurelius-web: %s [%s]: %v", doing, requestIDFrom(r), err)
		writeError(w, http.StatusInternalServerError, "failed to "+doing)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

func streamIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid stream ID")
		return 0, false
	}
	return id, true
}

// clean strips markup from free text. Entities the policy escapes are
// decoded again so "Ladies & Babes" is stored as typed.
func (h *handlers) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(h.policy.Sanitize(s)))
}

func (h *handlers) cleanPtr(s *string) {
	if s != nil {
		*s = h.clean(*s)
	}
}

func (h *handlers) cleanStream(st *aurelius.Stream) {
	st.ItemName = h.clean(st.ItemName)
	st.CreatorName = h.clean(st.CreatorName)
	st.CreatorID = h.clean(st.CreatorID)
	st.AgencyName = h.clean(st.AgencyName)
	st.Notes = h.clean(st.Notes)
}

// ownedStream loads a stream and checks it belongs to the caller.
func (h *handlers) ownedStream(w http.ResponseWriter, r *http.Request) (*aurelius.Stream, bool) {
	id, ok := streamIDParam(w, r)
	if !ok {
		return nil, false
	}
	st, err := h.engine.StreamFor(userIDFromRequest(r), id)
	if err != nil {
		writeEngineError(w, r, "load stream", err)
		return nil, false
	}
	return st, true
}

// --- Handlers ---

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) handleStreamList(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromRequest(r)
	status := r.URL.Query().Get("status")

	var streams []aurelius.Stream
	var err error
	if status == "" || status == "all" {
		streams, err = h.engine.AllStreams(uid)
	} else {
		streams, _, err = h.engine.ListStreams(uid, "", status)
	}
	if err != nil {
		writeEngineError(w, r, "list streams", err)
		return
	}
	if streams == nil {
		streams = []aurelius.Stream{}
	}
	writeJSON(w, http.StatusOK, streams)
}

// createStreamRequest accepts either an explicit due_date or due_days.
type createStreamRequest struct {
	aurelius.Stream
	DueDays int `json:"due_days,omitempty"`
}

func (h *handlers) handleStreamCreate(w http.ResponseWriter, r *http.Request) {
	var req createStreamRequest
	if !decodeBody(w, r, &req) {
		return
	}
	st := req.Stream
	h.cleanStream(&st)
	st.UserID = userIDFromRequest(r)

	var created *aurelius.Stream
	var err error
	if req.DueDays != 0 {
		created, err = h.engine.CreateStream(aurelius.NewStream{
			UserID:      st.UserID,
			ItemName:    st.ItemName,
			CreatorName: st.CreatorName,
			CreatorID:   st.CreatorID,
			AgencyName:  st.AgencyName,
			DueDays:     req.DueDays,
			Priority:    string(st.Priority),
			StreamType:  string(st.StreamType),
			Notes:       st.Notes,
		})
	} else {
		created, err = h.engine.AddStream(st)
	}
	if err != nil {
		writeEngineError(w, r, "create stream", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handlers) handleStreamGet(w http.ResponseWriter, r *http.Request) {
	st, ok := h.ownedStream(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) handleStreamUpdate(w http.ResponseWriter, r *http.Request) {
	st, ok := h.ownedStream(w, r)
	if !ok {
		return
	}
	var u aurelius.StreamUpdate
	if !decodeBody(w, r, &u) {
		return
	}
	h.cleanPtr(u.ItemName)
	h.cleanPtr(u.CreatorName)
	h.cleanPtr(u.CreatorID)
	h.cleanPtr(u.AgencyName)
	h.cleanPtr(u.Notes)

	if _, err := h.engine.UpdateStream(st.ID, u); err != nil {
		writeEngineError(w, r, "update stream", err)
		return
	}
	updated, err := h.engine.StreamFor(st.UserID, st.ID)
	if err != nil {
		writeEngineError(w, r, "load stream", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handlers) handleStreamDelete(w http.ResponseWriter, r *http.Request) {
	st, ok := h.ownedStream(w, r)
	if !ok {
		return
	}
	if _, err := h.engine.DeleteStream(st.ID); err != nil {
		writeEngineError(w, r, "delete stream", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handleStreamComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := streamIDParam(w, r)
	if !ok {
		return
	}
	st, err := h.engine.CompleteStream(userIDFromRequest(r), id)
	if err != nil {
		writeEngineError(w, r, "complete stream", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats(userIDFromRequest(r))
	if err != nil {
		writeEngineError(w, r, "load stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *handlers) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	settings, err := h.engine.Settings(userIDFromRequest(r))
	if err != nil {
		writeEngineError(w, r, "load settings", err)
		return
	}
	if settings == nil {
		settings = map[string]json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *handlers) handleSettingsSet(w http.ResponseWriter, r *http.Request) {
	var settings map[string]json.RawMessage
	if !decodeBody(w, r, &settings) {
		return
	}
	if err := h.engine.SetSettings(userIDFromRequest(r), settings); err != nil {
		writeEngineError(w, r, "save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handlers) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.Export(userIDFromRequest(r))
	if err != nil {
		writeEngineError(w, r, "export data", err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="aurelius-export.json"`)
	writeJSON(w, http.StatusOK, snap)
}

func (h *handlers) handleImport(w http.ResponseWriter, r *http.Request) {
	var snap aurelius.Snapshot
	if !decodeBody(w, r, &snap) {
		return
	}
	for i := range snap.Streams {
		h.cleanStream(&snap.Streams[i])
	}
	result, err := h.engine.Import(userIDFromRequest(r), &snap)
	if err != nil {
		writeEngineError(w, r, "import data", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) handleTemplateList(w http.ResponseWriter, r *http.Request) {
	templates, err := h.engine.AgencyTemplates()
	if err != nil {
		writeEngineError(w, r, "list templates", err)
		return
	}
	if templates == nil {
		templates = []aurelius.AgencyTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *handlers) handleTemplateGet(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.engine.AgencyTemplate(r.PathValue("name"))
	if err != nil {
		writeEngineError(w, r, "load template", err)
		return
	}
	if tmpl == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}
