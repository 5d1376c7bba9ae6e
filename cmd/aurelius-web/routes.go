package main

import (
	"net/http"

	"github.com/microcosm-cc/bluemonday"

	"github.com/aurelius-bot/aurelius"
)

// newRouter sets up all routes using Go 1.22+ enhanced routing. Every API
// route requires an authenticated user.
func newRouter(engine *aurelius.Engine, auth *authenticator) http.Handler {
	mux := http.NewServeMux()

	h := &handlers{engine: engine, policy: bluemonday.StrictPolicy()}

	mux.HandleFunc("GET /healthz", h.handleHealth)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/streams", h.handleStreamList)
	api.HandleFunc("POST /api/streams", h.handleStreamCreate)
	api.HandleFunc("GET /api/streams/{id}", h.handleStreamGet)
	api.HandleFunc("PATCH /api/streams/{id}", h.handleStreamUpdate)
	api.HandleFunc("DELETE /api/streams/{id}", h.handleStreamDelete)
	api.HandleFunc("POST /api/streams/{id}/complete", h.handleStreamComplete)
	api.HandleFunc("GET /api/stats", h.handleStats)
	api.HandleFunc("GET /api/settings", h.handleSettingsGet)
	api.HandleFunc("PUT /api/settings", h.handleSettingsSet)
	api.HandleFunc("GET /api/export", h.handleExport)
	api.HandleFunc("POST /api/import", h.handleImport)
	api.HandleFunc("GET /api/templates", h.handleTemplateList)
	api.HandleFunc("GET /api/templates/{name}", h.handleTemplateGet)

	mux.Handle("/api/", auth.middleware(api))
	return mux
}
